package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type ClientOptions struct {
	BaseURL     string
	Timeout     time.Duration
	Headers     map[string]string
	RestyConfig func(RestClient)
	HeaderHook  HeaderHook
	Logger      *zerolog.Logger
	LogLevel    LogLevel
	Collapse    bool
	RequestIDs  bool
}

type ClientOption func(*ClientOptions)

// HeaderHook adds or overrides headers right before a request is sent.
type HeaderHook func(ctx context.Context, h http.Header)

func defaultClientOptions() ClientOptions {
	return ClientOptions{
		Timeout: 10 * time.Second,
		Headers: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
		LogLevel:   LogBasic,
		RequestIDs: true,
	}
}

func WithBaseURL(url string) ClientOption {
	return func(o *ClientOptions) {
		if url != "" {
			o.BaseURL = url
		}
	}
}

func WithClientTimeout(d time.Duration) ClientOption {
	return func(o *ClientOptions) {
		if d > 0 {
			o.Timeout = d
		}
	}
}

// WithHeaders merges headers into the defaults sent with every request.
func WithHeaders(headers map[string]string) ClientOption {
	return func(o *ClientOptions) {
		if len(headers) == 0 {
			return
		}
		merged := make(map[string]string, len(o.Headers)+len(headers))
		for k, v := range o.Headers {
			merged[k] = v
		}
		for k, v := range headers {
			merged[k] = v
		}
		o.Headers = merged
	}
}

func WithRestyConfig(fn func(RestClient)) ClientOption {
	return func(o *ClientOptions) {
		o.RestyConfig = fn
	}
}

// WithHeaderHook installs a hook that runs for every outgoing request.
func WithHeaderHook(hook HeaderHook) ClientOption {
	return func(o *ClientOptions) {
		o.HeaderHook = hook
	}
}

// WithLogger logs requests and responses at the given level. A nil logger disables logging.
func WithLogger(logger *zerolog.Logger, level LogLevel) ClientOption {
	return func(o *ClientOptions) {
		o.Logger = logger
		o.LogLevel = level
	}
}

// WithCollapsing makes concurrent GETs for the same URL share one round trip.
func WithCollapsing(enabled bool) ClientOption {
	return func(o *ClientOptions) {
		o.Collapse = enabled
	}
}

// WithRequestIDs controls the X-Request-ID header added to requests that lack one.
func WithRequestIDs(enabled bool) ClientOption {
	return func(o *ClientOptions) {
		o.RequestIDs = enabled
	}
}
