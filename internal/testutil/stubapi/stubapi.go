// Package stubapi serves canned HTTP routes for tests. It wraps an echo
// instance behind httptest so callers don't import either directly.
package stubapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Context aliases echo.Context so route handlers stay within stubapi imports.
type Context = echo.Context

// HandlerFunc aliases echo.HandlerFunc.
type HandlerFunc = echo.HandlerFunc

// Route represents a single HTTP route definition.
type Route struct {
	Method  string
	Path    string
	Handler HandlerFunc
}

// Server is a running stub API.
type Server struct {
	e    *echo.Echo
	ts   *httptest.Server
	hits atomic.Int64
}

// New starts a Server with the given routes.
func New(routes ...Route) *Server {
	s := &Server{e: echo.New()}
	s.e.HideBanner = true
	s.e.HidePort = true
	s.e.HTTPErrorHandler = errorHandler
	s.e.Use(middleware.Recover())
	s.e.Use(func(next HandlerFunc) HandlerFunc {
		return func(c Context) error {
			s.hits.Add(1)
			return next(c)
		}
	})
	for _, r := range routes {
		if r.Handler == nil || r.Path == "" || r.Method == "" {
			continue
		}
		s.e.Add(strings.ToUpper(r.Method), r.Path, r.Handler)
	}
	s.ts = httptest.NewServer(s.e)
	return s
}

// URL returns the server's base URL.
func (s *Server) URL() string {
	if s == nil || s.ts == nil {
		return ""
	}
	return s.ts.URL
}

// Hits reports how many requests reached the server.
func (s *Server) Hits() int64 { return s.hits.Load() }

// Close shuts the server down.
func (s *Server) Close() {
	if s != nil && s.ts != nil {
		s.ts.Close()
	}
}

// JSON answers with status and a JSON body.
func JSON(status int, body any) HandlerFunc {
	return func(c Context) error {
		return c.JSON(status, body)
	}
}

// Text answers with status and a plain text body.
func Text(status int, body string) HandlerFunc {
	return func(c Context) error {
		return c.String(status, body)
	}
}

// Slow waits d, or until the client goes away, before delegating to next.
func Slow(d time.Duration, next HandlerFunc) HandlerFunc {
	return func(c Context) error {
		select {
		case <-time.After(d):
			return next(c)
		case <-c.Request().Context().Done():
			return nil
		}
	}
}

// Hang blocks until the client goes away.
func Hang() HandlerFunc {
	return func(c Context) error {
		<-c.Request().Context().Done()
		return nil
	}
}

// Sequence answers with the handlers in order, repeating the last one.
func Sequence(handlers ...HandlerFunc) HandlerFunc {
	var n atomic.Int64
	return func(c Context) error {
		i := int(n.Add(1) - 1)
		if i >= len(handlers) {
			i = len(handlers) - 1
		}
		return handlers[i](c)
	}
}

func errorHandler(err error, c Context) {
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if str, ok := he.Message.(string); ok {
			msg = str
		}
	}
	if !c.Response().Committed {
		_ = c.JSON(code, map[string]any{"error": msg})
	}
}
