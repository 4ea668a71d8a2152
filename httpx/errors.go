package httpx

import (
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"
)

// ErrPollRunOutOfTries is returned by Poll when every attempt asked to keep polling.
var ErrPollRunOutOfTries = errors.New("httpx: poll ran out of tries")

// ResourceError reports a resource that answered with a non-successful status.
type ResourceError struct {
	URL  string
	Code int
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("network resource requested at %s yielded a %d error code", e.URL, e.Code)
}

// NewResourceError builds a ResourceError from a completed response.
func NewResourceError(resp *resty.Response) *ResourceError {
	if resp == nil {
		return &ResourceError{}
	}
	e := &ResourceError{Code: resp.StatusCode()}
	if resp.Request != nil {
		e.URL = resp.Request.URL
	}
	return e
}

// DecodeBody unmarshals the JSON body of resp into v.
func DecodeBody(resp *resty.Response, v any) error {
	if resp == nil {
		return errors.New("httpx: nil response")
	}
	body := resp.Body()
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpx: decode body: %w", err)
	}
	return nil
}
