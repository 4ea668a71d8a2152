package httpx

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/adeilh/go-netcall/safecall"
)

const HeaderRequestID = "X-Request-ID"

// RestClient exposes a minimal subset of resty.Client for customization without importing resty.
type RestClient interface {
	SetHeader(key, value string) RestClient
	SetHeaders(headers map[string]string) RestClient
	SetTimeout(d time.Duration) RestClient
}

type restyAdapter struct{ c *resty.Client }

func (r restyAdapter) SetHeader(key, value string) RestClient {
	r.c.SetHeader(key, value)
	return r
}

func (r restyAdapter) SetHeaders(headers map[string]string) RestClient {
	r.c.SetHeaders(headers)
	return r
}

func (r restyAdapter) SetTimeout(d time.Duration) RestClient {
	r.c.SetTimeout(d)
	return r
}

// Client issues JSON requests against a base URL. A non-successful status is
// not an error: it comes back as a response, and Call classifies it.
type Client struct {
	resty      *resty.Client
	collapser  *collapser
	headerHook HeaderHook
}

func NewClient(opts ...ClientOption) *Client {
	cfg := defaultClientOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	rc := resty.New()
	if cfg.BaseURL != "" {
		rc.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/"))
	}
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}
	if len(cfg.Headers) > 0 {
		rc.SetHeaders(cfg.Headers)
	}
	if cfg.RestyConfig != nil {
		cfg.RestyConfig(restyAdapter{rc})
	}
	if cfg.RequestIDs {
		rc.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			if r.Header.Get(HeaderRequestID) == "" {
				r.Header.Set(HeaderRequestID, uuid.NewString())
			}
			return nil
		})
	}
	if cfg.Logger != nil && cfg.LogLevel > LogNone {
		installLogging(rc, *cfg.Logger, cfg.LogLevel)
	}

	c := &Client{resty: rc, headerHook: cfg.HeaderHook}
	if cfg.Collapse {
		c.collapser = &collapser{}
	}
	return c
}

// BaseURL returns the base URL requests are resolved against.
func (c *Client) BaseURL() string { return c.resty.BaseURL }

type RequestOption func(*resty.Request)

// WithRequestHeaders sets headers on the underlying Resty request.
func WithRequestHeaders(headers map[string]string) RequestOption {
	return func(r *resty.Request) {
		if len(headers) == 0 {
			return
		}
		r.SetHeaders(headers)
	}
}

// WithQuery sets query parameters on the request.
func WithQuery(params map[string]string) RequestOption {
	return func(r *resty.Request) {
		if len(params) == 0 {
			return
		}
		r.SetQueryParams(params)
	}
}

// WithBearer injects an Authorization header using the provided bearer token.
func WithBearer(token string) RequestOption {
	return func(r *resty.Request) {
		token = strings.TrimSpace(token)
		if token != "" {
			r.SetHeader("Authorization", "Bearer "+token)
		}
	}
}

func (c *Client) Get(ctx context.Context, path string, result any, opts ...RequestOption) (*resty.Response, error) {
	return c.do(ctx, MethodGet, path, nil, result, opts...)
}

func (c *Client) Post(ctx context.Context, path string, body any, result any, opts ...RequestOption) (*resty.Response, error) {
	return c.do(ctx, MethodPost, path, body, result, opts...)
}

func (c *Client) Put(ctx context.Context, path string, body any, result any, opts ...RequestOption) (*resty.Response, error) {
	return c.do(ctx, MethodPut, path, body, result, opts...)
}

func (c *Client) Patch(ctx context.Context, path string, body any, result any, opts ...RequestOption) (*resty.Response, error) {
	return c.do(ctx, MethodPatch, path, body, result, opts...)
}

func (c *Client) Delete(ctx context.Context, path string, result any, opts ...RequestOption) (*resty.Response, error) {
	return c.do(ctx, MethodDelete, path, nil, result, opts...)
}

// Operation binds a request into a safecall.Operation. When result is non-nil
// a successful JSON body is decoded into it; a decode fault fails the call.
func (c *Client) Operation(method, path string, body any, result any, opts ...RequestOption) safecall.Operation[*resty.Response] {
	return func(ctx context.Context) (*resty.Response, error) {
		return c.do(ctx, method, path, body, result, opts...)
	}
}

// Call executes a request through safecall.Do.
func (c *Client) Call(ctx context.Context, method, path string, body any, result any, opts ...RequestOption) (safecall.Result[*resty.Response], error) {
	return safecall.Do(ctx, c.Operation(method, path, body, result, opts...))
}

// SafeGet is Call for GET requests.
func (c *Client) SafeGet(ctx context.Context, path string, result any, opts ...RequestOption) (safecall.Result[*resty.Response], error) {
	return c.Call(ctx, MethodGet, path, nil, result, opts...)
}

func (c *Client) do(ctx context.Context, method, path string, body any, result any, opts ...RequestOption) (*resty.Response, error) {
	method = strings.ToUpper(method)
	req := c.resty.R().SetContext(ctx)
	for _, opt := range opts {
		if opt != nil {
			opt(req)
		}
	}
	if c.headerHook != nil {
		c.headerHook(ctx, req.Header)
	}
	if body != nil {
		req.SetBody(body)
	}

	var (
		resp *resty.Response
		err  error
	)
	if c.collapser != nil && method == MethodGet {
		resp, err = c.collapser.do(ctx, collapseKey(method, path, req), func(flightCtx context.Context) (*resty.Response, error) {
			return req.SetContext(flightCtx).Execute(method, path)
		})
	} else {
		resp, err = req.Execute(method, path)
	}
	if err != nil {
		return resp, err
	}

	if result != nil && resp.IsSuccess() && len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), result); err != nil {
			return resp, fmt.Errorf("httpx: decode %s %s: %w", method, path, err)
		}
	}
	return resp, nil
}
