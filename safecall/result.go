package safecall

import "fmt"

// Response is the minimal view of a network response the adapter needs.
// *resty.Response satisfies it.
type Response interface {
	IsSuccess() bool
}

// Kind identifies the variant held by a Result.
type Kind int

const (
	KindSuccess Kind = iota + 1
	KindServerError
	KindFailure
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindServerError:
		return "server_error"
	case KindFailure:
		return "failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Result is the outcome of one call. It is implemented only by Success,
// ServerError and Failure.
type Result[T any] interface {
	Kind() Kind
	sealed()
}

// Success holds a completed response whose success predicate is true.
type Success[T any] struct {
	Response T
}

// ServerError holds a completed response whose success predicate is false.
// The response still carries whatever body and metadata the server returned.
type ServerError[T any] struct {
	Response T
}

// Failure holds the cause of a call that did not produce a response.
type Failure[T any] struct {
	Cause error
}

func (Success[T]) Kind() Kind     { return KindSuccess }
func (ServerError[T]) Kind() Kind { return KindServerError }
func (Failure[T]) Kind() Kind     { return KindFailure }

func (Success[T]) sealed()     {}
func (ServerError[T]) sealed() {}
func (Failure[T]) sealed()     {}

// Error makes a Failure usable wherever an error is expected.
func (f Failure[T]) Error() string {
	if f.Cause == nil {
		return "safecall: failure"
	}
	return f.Cause.Error()
}

func (f Failure[T]) Unwrap() error { return f.Cause }

// Match folds r into a single value by calling the function for its variant.
func Match[T, R any](r Result[T], onSuccess func(T) R, onServerError func(T) R, onFailure func(error) R) R {
	switch v := r.(type) {
	case Success[T]:
		return onSuccess(v.Response)
	case ServerError[T]:
		return onServerError(v.Response)
	case Failure[T]:
		return onFailure(v.Cause)
	default:
		panic(fmt.Sprintf("safecall: unknown result %T", r))
	}
}
