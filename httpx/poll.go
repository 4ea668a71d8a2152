package httpx

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// PollOptions bounds a Poll loop.
type PollOptions struct {
	Tries int
	Delay time.Duration
}

// Poll calls op until keepPolling reports false for its response, starting
// attempts at least Delay apart. An error from op ends polling immediately.
// If every one of Tries attempts asks to keep polling, Poll returns
// ErrPollRunOutOfTries.
func Poll[T any](ctx context.Context, opts PollOptions, op func(context.Context) (T, error), keepPolling func(T) bool) (T, error) {
	var zero T
	if opts.Tries < 1 {
		return zero, ErrPollRunOutOfTries
	}

	limiter := rate.NewLimiter(rate.Every(opts.Delay), 1)
	for attempt := 0; attempt < opts.Tries; attempt++ {
		if err := waitTurn(ctx, limiter); err != nil {
			return zero, err
		}
		resp, err := op(ctx)
		if err != nil {
			return resp, err
		}
		if keepPolling == nil || !keepPolling(resp) {
			return resp, nil
		}
	}
	return zero, ErrPollRunOutOfTries
}

// waitTurn blocks until the limiter grants an attempt. Unlike Limiter.Wait it
// does not fail early when the delay outlives ctx's deadline; it waits for ctx
// and reports ctx.Err().
func waitTurn(ctx context.Context, limiter *rate.Limiter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r := limiter.Reserve()
	delay := r.Delay()
	if delay == 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}
