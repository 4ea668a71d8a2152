package httpx

import (
	"context"
	"slices"
	"strings"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"
)

// collapser lets concurrent GETs for the same URL share a single round trip.
// The shared request runs detached from any one caller's cancellation; each
// caller still stops waiting when its own context is done.
type collapser struct {
	group singleflight.Group
}

func (c *collapser) do(ctx context.Context, key string, fn func(context.Context) (*resty.Response, error)) (*resty.Response, error) {
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return fn(flightCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		resp, _ := res.Val.(*resty.Response)
		return resp, res.Err
	}
}

// collapseKey identifies a request by method, path, query and every header
// set on the request itself. Request IDs are unique per call and left out.
func collapseKey(method, path string, req *resty.Request) string {
	var b strings.Builder
	b.WriteString(method)
	b.WriteByte(' ')
	b.WriteString(path)
	if q := req.QueryParam.Encode(); q != "" {
		b.WriteByte('?')
		b.WriteString(q)
	}

	names := make([]string, 0, len(req.Header))
	for name := range req.Header {
		if name != HeaderRequestID {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	for _, name := range names {
		b.WriteByte('\n')
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(strings.Join(req.Header.Values(name), ","))
	}
	return b.String()
}
