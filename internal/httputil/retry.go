// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"
)

// DefaultDelay is the fixed pause between attempts when a Policy leaves
// Delay unset. Tests override this to avoid real sleeps.
var DefaultDelay = 2 * time.Second

const defaultMaxRetries = 3

// Policy bounds a retry loop. Retries use a constant delay with no
// jitter and no growth between attempts.
type Policy struct {
	MaxRetries int
	Delay      time.Duration
}

func (p Policy) normalize() Policy {
	if p.MaxRetries <= 0 {
		p.MaxRetries = defaultMaxRetries
	}
	if p.Delay <= 0 {
		p.Delay = DefaultDelay
	}
	return p
}

// Transient reports whether an HTTP status is worth retrying.
func Transient(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Timeout reports whether err is a transport timeout. Context
// cancellation is not a timeout: it ends the loop.
func Timeout(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// DoWithRetry executes an HTTP request and retries on transient statuses
// (429, 502, 503, 504) and transport timeouts. Each retry waits
// policy.Delay. On a transient status the response body is drained and
// closed before sleeping. After exhausting retries the last response is
// returned so the caller can inspect it; the last timeout error is
// returned when no response was ever received.
//
// If the context is cancelled during a wait the function returns ctx.Err().
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, policy Policy) (*http.Response, error) {
	policy = policy.normalize()

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			if !Timeout(err) || attempt >= policy.MaxRetries {
				return nil, err
			}
		} else {
			if !Transient(resp.StatusCode) || attempt >= policy.MaxRetries {
				return resp, nil
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		if err := sleep(ctx, policy.Delay); err != nil {
			return nil, err
		}

		if req.GetBody != nil {
			body, gerr := req.GetBody()
			if gerr != nil {
				return nil, gerr
			}
			req.Body = body
		}
	}
}

// Retry calls fn until it succeeds, returns a non-retryable error, or the
// attempts run out. retryable decides which errors are worth another
// attempt; nil means every error is.
func Retry(ctx context.Context, policy Policy, retryable func(error) bool, fn func() error) error {
	policy = policy.normalize()

	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}
		if attempt >= policy.MaxRetries {
			return err
		}
		if serr := sleep(ctx, policy.Delay); serr != nil {
			return serr
		}
	}
}

// Sleep pauses for d or until ctx is done. Stages use it for politeness
// delays between requests.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	return sleep(ctx, d)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
