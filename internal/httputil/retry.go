// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the model and research clients.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 10 * time.Second

const defaultMaxRetries = 5

// ErrRateLimited is returned when every attempt was answered with HTTP 429.
var ErrRateLimited = errors.New("rate limited")

// Notify is called before each backoff sleep.
type Notify func(attempt int, wait time.Duration)

// DoWithRetry executes an HTTP request and retries on HTTP 429 (Too Many
// Requests) with exponential backoff. The delay starts at RetryBaseDelay
// (10 s) and doubles each attempt: 10 s, 20 s, 40 s, 80 s, 160 s.
//
// When maxRetries is 0 the default (5) is used. On each 429 the response
// body is drained and closed before sleeping. Transport errors and non-429
// statuses are returned immediately. If the context is cancelled during a
// backoff wait the context error is returned. After exhausting retries the
// error wraps ErrRateLimited.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int, notify Notify) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = RetryBaseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = RetryBaseDelay << maxRetries
	b.Reset()

	attempt := 0
	op := func() (*http.Response, error) {
		attempt++
		r := req.Clone(ctx)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, backoff.Permanent(fmt.Errorf("rewinding request body: %w", err))
			}
			r.Body = body
		}
		resp, err := client.Do(r)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("%w: HTTP 429 on attempt %d", ErrRateLimited, attempt)
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(maxRetries + 1)),
	}
	if notify != nil {
		opts = append(opts, backoff.WithNotify(func(_ error, wait time.Duration) {
			notify(attempt, wait)
		}))
	}

	resp, err := backoff.Retry(ctx, op, opts...)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
