package openai

import (
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/cloo-solutions/linkdigest/internal/retry"
)

// StatusCode extracts the HTTP status from a go-openai error, or 0.
func StatusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// IsTransient retries rate limits, server errors and network failures.
// Authentication failures are final.
func IsTransient(err error) bool {
	switch code := StatusCode(err); {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return false
	case code != 0:
		return retry.IsRetryableStatus(code)
	}
	return retry.IsTransient(err)
}
