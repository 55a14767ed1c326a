// Package collect implements the four dimension metric collectors: thin
// HTTP clients that turn upstream responses into typed metric bundles.
// All retry and degradation policy lives in the caller-visible
// RetryPolicy and Invoke; the collectors themselves make exactly one
// attempt per call.
package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// RetryPolicy bounds collector retries. Attempts counts total tries, so
// {Attempts: 2} means retry once. The delay is a fixed backoff between
// tries, explicit here rather than buried in sleep calls so tests can
// exercise it directly.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultRetryPolicy retries transient failures once after a short pause.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 2, Backoff: 2 * time.Second}
}

// Invoke runs one collector call under a per-call timeout, retrying
// transient failures per the policy. Permanent failures return
// immediately: retrying "this dimension does not apply" cannot help.
func Invoke[T any](ctx context.Context, policy RetryPolicy, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < policy.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return zero, Transient("invoke", ctx.Err())
			case <-time.After(policy.Backoff):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, timeout)
		v, err := fn(callCtx)
		cancel()
		if err == nil {
			return v, nil
		}
		if IsPermanent(err) {
			return zero, err
		}
		lastErr = err
	}
	return zero, lastErr
}

// getJSON fetches url and decodes the response body into out, mapping
// HTTP status codes onto the failure taxonomy: 429 and 5xx are transient,
// other non-2xx are permanent.
func getJSON(ctx context.Context, client *http.Client, dimension, url string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Permanent(dimension, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Transient(dimension, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return Transient(dimension, fmt.Errorf("upstream %d: %s", resp.StatusCode, body))
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return Permanent(dimension, fmt.Errorf("upstream %d: %s", resp.StatusCode, body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return Transient(dimension, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
