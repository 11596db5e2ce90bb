// Package rest is the ordinary request/response peer client the
// streaming core ships alongside (spec.md §1): retry on
// {429,500,502,503,504} with exponential backoff at 500ms*2^(attempt-1),
// and ingested-response type coercion on named fields. It contains no
// streaming-specific logic and is specified here only as a boundary
// contract.
package rest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/hashicorp/go-retryablehttp"
)

// retryableStatus is the exact status set spec.md §1 names.
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Client is a thin, retrying HTTP client for the finlight REST API.
type Client struct {
	apiKey  string
	baseURL string
	http    *retryablehttp.Client
}

// NewClient builds a Client with the retry policy from spec.md §1:
// exponential backoff starting at 500ms, doubling per attempt, capped to
// the configured maximum attempts.
func NewClient(apiKey, baseURL string) *Client {
	rc := retryablehttp.NewClient()
	rc.Logger = nil
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryMax = 5
	rc.Backoff = exponentialBackoff
	rc.CheckRetry = checkRetry

	return &Client{apiKey: apiKey, baseURL: baseURL, http: rc}
}

// exponentialBackoff implements 500ms * 2^(attempt-1), ignoring any
// Retry-After header (spec.md §1 does not mention honoring one).
func exponentialBackoff(min, max time.Duration, attemptNum int, resp *http.Response) time.Duration {
	d := min
	for i := 1; i < attemptNum; i++ {
		d *= 2
	}
	if max > 0 && d > max {
		return max
	}
	return d
}

func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	if resp != nil && retryableStatus[resp.StatusCode] {
		return true, nil
	}
	return false, nil
}

// Get issues a GET request against path and decodes the JSON body into
// out, coercing the named ingested-response fields.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request %s: status %d: %s", path, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
