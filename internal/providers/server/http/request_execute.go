package http

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// WithRequestID makes every request issued under ctx carry id in the
// X-Request-Id header. Without it each request gets a fresh id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && strings.TrimSpace(id) != "" {
		return id
	}
	return uuid.NewString()
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
}

type response struct {
	status int
	body   []byte
	// rejected marks a complete exchange answered with an error status.
	rejected bool
}

func (g *Gateway) execute(ctx context.Context, spec request) (response, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return response{}, transportError("rate limiter wait aborted", err)
		}
	}

	httpRequest, err := g.newRequest(ctx, spec)
	if err != nil {
		return response{}, err
	}

	httpResponse, err := g.doRequest(ctx, "resource", httpRequest)
	if err != nil {
		return response{}, transportError("remote request failed", err)
	}
	defer httpResponse.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResponse.Body, 8<<20))
	if err != nil {
		return response{status: httpResponse.StatusCode}, transportError("failed to read remote response body", err)
	}

	result := response{status: httpResponse.StatusCode, body: body}
	if httpResponse.StatusCode >= http.StatusBadRequest {
		result.rejected = true
		return result, classifyStatusError(httpResponse.StatusCode, body)
	}
	return result, nil
}

func (g *Gateway) newRequest(ctx context.Context, spec request) (*http.Request, error) {
	target := *g.baseURL
	target.Path = g.baseURL.Path + g.customerPath(spec.path)
	target.RawQuery = spec.query.Encode()

	requestBody, err := encodeRequestBody(spec.body)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if len(requestBody) > 0 {
		bodyReader = bytes.NewReader(requestBody)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, spec.method, target.String(), bodyReader)
	if err != nil {
		return nil, internalError("failed to create remote request", err)
	}

	httpRequest.Header.Set("Accept", defaultMediaType)
	if len(requestBody) > 0 {
		httpRequest.Header.Set("Content-Type", defaultMediaType)
	}
	httpRequest.Header.Set(requestIDHeader, requestIDFromContext(ctx))

	if err := g.applyAuth(ctx, httpRequest); err != nil {
		return nil, err
	}

	return httpRequest, nil
}
