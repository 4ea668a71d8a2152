package safecall

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
)

// Operation performs one network round trip. It must observe ctx while it
// waits on the network.
type Operation[T any] func(ctx context.Context) (T, error)

// PanicError carries a panic recovered from an Operation.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("safecall: operation panicked: %v", e.Value)
}

// Unwrap exposes the panic value when it was an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Do invokes op and classifies its outcome.
//
// A returned response becomes Success or ServerError depending on its
// IsSuccess predicate. An error or a panic, raised by op or by the predicate,
// becomes Failure. Cancellation is not a failure: when the error wraps
// context.Canceled, Do returns a nil Result and the operation's error
// unchanged. When ctx was canceled but the error is unrelated, the error is
// wrapped together with ctx.Err() so errors.Is(err, context.Canceled) holds.
func Do[T Response](ctx context.Context, op Operation[T]) (res Result[T], err error) {
	defer func() {
		if v := recover(); v != nil {
			res, err = Failure[T]{Cause: &PanicError{Value: v, Stack: debug.Stack()}}, nil
		}
	}()

	resp, opErr := op(ctx)
	if opErr != nil {
		if errors.Is(opErr, context.Canceled) {
			return nil, opErr
		}
		if canceled(ctx) {
			return nil, fmt.Errorf("%w: %w", ctx.Err(), opErr)
		}
		return Failure[T]{Cause: opErr}, nil
	}
	if resp.IsSuccess() {
		return Success[T]{Response: resp}, nil
	}
	return ServerError[T]{Response: resp}, nil
}

func canceled(ctx context.Context) bool {
	return ctx != nil && errors.Is(ctx.Err(), context.Canceled)
}
