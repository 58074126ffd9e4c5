package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

func encodeRequestBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, validationError("failed to encode JSON request body", err)
	}
	return encoded, nil
}

// decodeJSONResponse keeps numbers as json.Number so ids and coordinates
// survive the round trip into typed payloads untouched.
func decodeJSONResponse(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, validationError("response body is not valid JSON", err)
	}
	return value, nil
}

func decodeTyped[T any](body []byte) (T, error) {
	var value T
	if err := json.Unmarshal(body, &value); err != nil {
		return value, validationError("response body does not match the expected payload", err)
	}
	return value, nil
}

// convert re-encodes a generic JSON value into T.
func convert[T any](value any) (T, error) {
	var typed T
	encoded, err := json.Marshal(value)
	if err != nil {
		return typed, internalError("failed to re-encode remote payload", err)
	}
	return decodeTyped[T](encoded)
}

func classifyStatusError(statusCode int, body []byte) error {
	message := fmt.Sprintf("remote request failed with status %d: %s", statusCode, summarizeBody(body))

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return authError(message, nil)
	case http.StatusNotFound:
		return notFoundError(message, nil)
	case http.StatusConflict:
		return conflictError(message, nil)
	case http.StatusTooManyRequests:
		return transportError(message, nil)
	}

	if statusCode >= 400 && statusCode < 500 {
		return validationError(message, nil)
	}
	return transportError(message, nil)
}

func summarizeBody(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "<empty>"
	}
	if len(trimmed) > 512 {
		return trimmed[:512] + "..."
	}
	return trimmed
}
