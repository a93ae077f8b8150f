package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cloo-solutions/linkdigest/internal/retry"
)

const (
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	maxBodyBytes     = 8 << 20
)

// Fetcher performs GET requests with bounded retry on transient failures.
type Fetcher struct {
	client    *http.Client
	policy    retry.Policy
	userAgent string
}

// NewFetcher creates a Fetcher. A nil client gets a 30s timeout default.
func NewFetcher(client *http.Client, policy retry.Policy) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{
		client:    client,
		policy:    policy,
		userAgent: defaultUserAgent,
	}
}

// Get fetches url and returns the body. Non-2xx responses become
// *retry.StatusError; 429 and 5xx are retried.
func (f *Fetcher) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	return retry.Do(ctx, f.policy, nil, func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("User-Agent", f.userAgent)
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			return nil, &retry.StatusError{StatusCode: resp.StatusCode, URL: url}
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		return body, nil
	})
}
