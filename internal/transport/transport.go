// Package transport provides HTTP round trippers for talking to the GitHub API.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	logger "github.com/sirupsen/logrus"
)

// DefaultMaxAttempts bounds the number of requests sent for a single round trip
const DefaultMaxAttempts = 3

// RateLimitedTransport retries requests that GitHub rejected for exceeding a rate limit, after waiting as long as the
// response asks
type RateLimitedTransport struct {
	base        http.RoundTripper
	maxAttempts int
	maxWait     time.Duration
	wait        func(ctx context.Context, d time.Duration) error
}

// Option configures a RateLimitedTransport
type Option func(*RateLimitedTransport)

// WithMaxAttempts sets the number of requests sent before a rate limited response is returned to the caller
func WithMaxAttempts(n int) Option {
	return func(t *RateLimitedTransport) {
		if n > 0 {
			t.maxAttempts = n
		}
	}
}

// WithMaxWait caps the time spent waiting for a single rate limit to reset. Longer waits are not attempted
func WithMaxWait(d time.Duration) Option {
	return func(t *RateLimitedTransport) {
		t.maxWait = d
	}
}

// WithWaitFunc replaces the function used to sleep between attempts
func WithWaitFunc(wait func(ctx context.Context, d time.Duration) error) Option {
	return func(t *RateLimitedTransport) {
		t.wait = wait
	}
}

func WithRateLimiting(base http.RoundTripper, opts ...Option) *RateLimitedTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	t := &RateLimitedTransport{
		base:        base,
		maxAttempts: DefaultMaxAttempts,
		maxWait:     time.Minute,
		wait:        sleep,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *RateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Preserve the original request body for retries
	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		err = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to close request body: %w", err)
		}
	}

	for attempt := 1; ; attempt++ {
		// Restore the request body for each attempt
		if bodyBytes != nil {
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}

		resp, err := t.base.RoundTrip(req)
		if err != nil {
			return resp, err
		}

		if attempt >= t.maxAttempts {
			return resp, nil
		}
		waitDuration, limited := rateLimitWait(resp, time.Now())
		if !limited || waitDuration > t.maxWait {
			return resp, nil
		}

		// Close the response body to free resources
		err = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to close response body: %w", err)
		}

		logger.WithFields(logger.Fields{
			"status":  resp.StatusCode,
			"attempt": attempt,
		}).Warnf("Rate limited, waiting %s", waitDuration)
		if err := t.wait(req.Context(), waitDuration); err != nil {
			return nil, err
		}
	}
}

// rateLimitWait reports whether resp is a rate limit rejection and, if so, how long to wait before retrying
func rateLimitWait(resp *http.Response, now time.Time) (time.Duration, bool) {
	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusForbidden:
	default:
		return 0, false
	}

	if retryAfterStr := resp.Header.Get("retry-after"); retryAfterStr != "" {
		// Try parsing as seconds, then as an HTTP date
		if seconds, err := strconv.Atoi(retryAfterStr); err == nil {
			return time.Duration(seconds) * time.Second, true
		} else if retryTime, err := http.ParseTime(retryAfterStr); err == nil {
			return max(retryTime.Sub(now), 0), true
		}
		return 0, false
	}

	// Primary rate limits report exhaustion through the x-ratelimit headers instead
	if resp.Header.Get("x-ratelimit-remaining") == "0" {
		reset, err := strconv.ParseInt(resp.Header.Get("x-ratelimit-reset"), 10, 64)
		if err != nil {
			return 0, false
		}
		return max(time.Unix(reset, 0).Sub(now), 0), true
	}

	// A 403 without rate limit headers is a permission error
	return 0, false
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
