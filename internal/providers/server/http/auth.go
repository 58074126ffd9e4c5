package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/crmarques/zpasync/config"
)

const clientCredentialsGrant = "client_credentials"

func buildAuthConfig(auth config.Auth) (config.Auth, error) {
	auth.TokenURL = strings.TrimSpace(auth.TokenURL)
	auth.ClientID = strings.TrimSpace(auth.ClientID)
	auth.ClientSecret = strings.TrimSpace(auth.ClientSecret)

	if auth.TokenURL == "" || auth.ClientID == "" || auth.ClientSecret == "" {
		return config.Auth{}, validationError("api.auth requires token-url, client-id, client-secret", nil)
	}
	tokenURL, err := url.Parse(auth.TokenURL)
	if err != nil || tokenURL.Scheme == "" || tokenURL.Host == "" {
		return config.Auth{}, validationError("api.auth.token-url is invalid", err)
	}
	return auth, nil
}

func (g *Gateway) applyAuth(ctx context.Context, request *http.Request) error {
	token, err := g.oauthToken(ctx)
	if err != nil {
		return err
	}
	request.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// expiresIn accepts the signin endpoint's lifetime as a number or a quoted
// number.
type expiresIn int64

func (e *expiresIn) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		*e = 0
		return nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("expires_in %q is not an integer", raw)
	}
	*e = expiresIn(value)
	return nil
}

func (g *Gateway) oauthToken(ctx context.Context) (string, error) {
	g.oauthMu.Lock()
	if g.oauthAccessToken != "" && time.Now().Before(g.oauthExpiresAt.Add(-30*time.Second)) {
		token := g.oauthAccessToken
		g.oauthMu.Unlock()
		return token, nil
	}
	g.oauthMu.Unlock()

	formValues := url.Values{}
	formValues.Set("grant_type", clientCredentialsGrant)
	formValues.Set("client_id", g.auth.ClientID)
	formValues.Set("client_secret", g.auth.ClientSecret)

	request, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		g.auth.TokenURL,
		strings.NewReader(formValues.Encode()),
	)
	if err != nil {
		return "", internalError("failed to create oauth2 token request", err)
	}
	request.Header.Set("Accept", defaultMediaType)
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := g.doRequest(ctx, "oauth2-token", request)
	if err != nil {
		return "", transportError("oauth2 token request failed", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return "", transportError("failed to read oauth2 token response", err)
	}

	if response.StatusCode >= http.StatusBadRequest {
		return "", authError(
			fmt.Sprintf("oauth2 token request failed with status %d: %s", response.StatusCode, summarizeBody(body)),
			nil,
		)
	}

	var tokenResponse struct {
		AccessToken string    `json:"access_token"`
		ExpiresIn   expiresIn `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResponse); err != nil {
		return "", authError("oauth2 token response is not valid JSON", err)
	}
	if strings.TrimSpace(tokenResponse.AccessToken) == "" {
		return "", authError("oauth2 token response does not include access_token", nil)
	}

	expiresAt := time.Now().Add(time.Hour)
	if tokenResponse.ExpiresIn > 0 {
		expiresAt = time.Now().Add(time.Duration(tokenResponse.ExpiresIn) * time.Second)
	}

	g.oauthMu.Lock()
	g.oauthAccessToken = tokenResponse.AccessToken
	g.oauthExpiresAt = expiresAt
	g.oauthMu.Unlock()

	return tokenResponse.AccessToken, nil
}
