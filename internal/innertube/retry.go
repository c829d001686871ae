package innertube

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

type retryPolicy struct {
	maxRetries  int
	initialWait time.Duration
	maxWait     time.Duration
}

var defaultRetryPolicy = retryPolicy{
	maxRetries:  2,
	initialWait: 500 * time.Millisecond,
	maxWait:     5 * time.Second,
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return http.StatusText(e.code)
}

// do runs fn with exponential backoff on transport errors and on 429/5xx.
// The last retryable response is returned as-is so callers see its status.
func (p retryPolicy) do(ctx context.Context, fn func() (*http.Response, error)) (*http.Response, error) {
	wait := p.initialWait
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := fn()
		switch {
		case err == nil && !retryableStatus(resp.StatusCode):
			return resp, nil
		case err == nil && attempt == p.maxRetries:
			return resp, nil
		case err == nil:
			resp.Body.Close()
			lastErr = &statusError{code: resp.StatusCode}
		case !retryableErr(err):
			return nil, err
		default:
			lastErr = err
		}

		if attempt == p.maxRetries {
			break
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		wait *= 2
		if wait > p.maxWait {
			wait = p.maxWait
		}
	}
	return nil, lastErr
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func retryableErr(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
