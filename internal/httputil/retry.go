// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the source adapters.
package httputil

import (
	"context"
	"io"
	"net/http"
	"time"
)

const defaultMaxAttempts = 3

// retryable reports whether a response status is worth another attempt:
// rate limiting and server-side failures.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// DoWithRetry executes an HTTP request with a bounded retry loop: at most
// maxAttempts attempts with a fixed delay between them. Transport errors
// and retryable statuses (429, 5xx) trigger a retry; any other response is
// returned as-is. Before each retry the previous response body is drained
// and closed. A context cancelled during the wait returns ctx.Err().
//
// When maxAttempts is 0 the default (3) is used. After the last attempt
// the final response or transport error is returned so the caller can
// inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxAttempts int, delay time.Duration) (*http.Response, error) {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	for attempt := 1; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err == nil && !retryable(resp.StatusCode) {
			return resp, nil
		}

		if attempt >= maxAttempts {
			return resp, err
		}

		if resp != nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}
