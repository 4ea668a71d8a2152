// Package safecall runs a single network call and reports its outcome as one of
// three explicit variants: Success, ServerError or Failure.
//
// Callers match on the returned Result instead of branching on errors and
// status codes around every call:
//
//	res, err := safecall.Do(ctx, client.Operation(httpx.MethodGet, "/users/1", nil))
//	if err != nil {
//		return err // the caller's context was canceled
//	}
//	switch r := res.(type) {
//	case safecall.Success[*resty.Response]:
//		...
//	case safecall.ServerError[*resty.Response]:
//		...
//	case safecall.Failure[*resty.Response]:
//		...
//	}
//
// Do never returns an error for a failed request. The only non-nil error it
// returns is a cancellation of the caller's context, which keeps propagating
// instead of being folded into a Failure.
package safecall
