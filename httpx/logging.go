package httpx

import (
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// LogLevel selects how much of each exchange the client logs.
type LogLevel int

const (
	LogNone LogLevel = iota
	LogBasic
	LogHeaders
	LogBody
)

// ParseLogLevel maps "none", "basic", "headers" and "body" to a LogLevel.
func ParseLogLevel(s string) (LogLevel, bool) {
	switch s {
	case "none":
		return LogNone, true
	case "basic", "":
		return LogBasic, true
	case "headers":
		return LogHeaders, true
	case "body":
		return LogBody, true
	default:
		return LogNone, false
	}
}

func installLogging(rc *resty.Client, log zerolog.Logger, level LogLevel) {
	rc.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		ev := log.Debug().
			Str("method", r.Method).
			Str("url", r.URL).
			Str("request_id", r.Header.Get(HeaderRequestID))
		if level >= LogHeaders {
			ev = ev.Interface("headers", redactHeaders(r.Header))
		}
		if level >= LogBody && r.Body != nil {
			ev = ev.Interface("body", r.Body)
		}
		ev.Msg("http request")
		return nil
	})

	rc.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		ev := log.Info()
		if !resp.IsSuccess() {
			ev = log.Warn()
		}
		if req := resp.Request; req != nil {
			ev = ev.Str("method", req.Method).
				Str("url", req.URL).
				Str("request_id", req.Header.Get(HeaderRequestID))
		}
		ev = ev.Int("status", resp.StatusCode()).
			Dur("elapsed", resp.Time()).
			Int64("size", resp.Size())
		if level >= LogHeaders {
			ev = ev.Interface("headers", redactHeaders(resp.Header()))
		}
		if level >= LogBody {
			ev = ev.Str("body", resp.String())
		}
		ev.Msg("http response")
		return nil
	})

	rc.OnError(func(r *resty.Request, err error) {
		ev := log.Error().Err(err)
		if r != nil {
			ev = ev.Str("method", r.Method).Str("url", r.URL)
		}
		ev.Msg("http call failed")
	})
}

const redacted = "[REDACTED]"

var sensitiveHeaders = []string{"Authorization", "Proxy-Authorization", "Cookie", "Set-Cookie"}

// redactHeaders returns a copy of h with credential headers masked.
func redactHeaders(h http.Header) http.Header {
	out := h.Clone()
	for _, name := range sensitiveHeaders {
		if len(out.Values(name)) > 0 {
			out.Set(name, redacted)
		}
	}
	return out
}
