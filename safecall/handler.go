package safecall

// Handler routes a Result to per-variant callbacks. Nil callbacks are skipped.
//
// When IsAuthError reports true for a completed response, OnAuthError receives
// it instead of OnSuccess or OnServerError.
type Handler[T any] struct {
	IsAuthError   func(T) bool
	OnAuthError   func(T)
	OnSuccess     func(T)
	OnServerError func(T)
	OnFailure     func(error)
}

// Handle dispatches r.
func (h Handler[T]) Handle(r Result[T]) {
	switch v := r.(type) {
	case Success[T]:
		if h.handledAsAuthError(v.Response) {
			return
		}
		if h.OnSuccess != nil {
			h.OnSuccess(v.Response)
		}
	case ServerError[T]:
		if h.handledAsAuthError(v.Response) {
			return
		}
		if h.OnServerError != nil {
			h.OnServerError(v.Response)
		}
	case Failure[T]:
		if h.OnFailure != nil {
			h.OnFailure(v.Cause)
		}
	}
}

func (h Handler[T]) handledAsAuthError(resp T) bool {
	if h.IsAuthError == nil || !h.IsAuthError(resp) {
		return false
	}
	if h.OnAuthError != nil {
		h.OnAuthError(resp)
	}
	return true
}
