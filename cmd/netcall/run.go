package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"

	"github.com/adeilh/go-netcall/cache"
	"github.com/adeilh/go-netcall/cache/memory"
	"github.com/adeilh/go-netcall/cache/postgres"
	"github.com/adeilh/go-netcall/cache/redis"
	"github.com/adeilh/go-netcall/httpx"
	"github.com/adeilh/go-netcall/internal/config"
	"github.com/adeilh/go-netcall/internal/logger"
	"github.com/adeilh/go-netcall/offline"
	"github.com/adeilh/go-netcall/safecall"
)

const (
	exitOK          = 0
	exitServerError = 1
	exitFailure     = 2
	exitUsage       = 3
	exitCanceled    = 130
)

const usage = "usage: netcall [METHOD] PATH [BODY]"

type request struct {
	method string
	path   string
	body   any
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	req, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		fmt.Fprintln(stderr, usage)
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	log := logger.New("netcall", cfg.LogLevel, stderr)
	client := httpx.NewClient(
		httpx.WithBaseURL(cfg.BaseURL),
		httpx.WithClientTimeout(cfg.Timeout),
		httpx.WithLogger(log.Zero(), cfg.HTTPLogLevel()),
		httpx.WithCollapsing(cfg.Collapse),
	)

	if cfg.Cache.Backend != config.BackendNone && req.method == httpx.MethodGet {
		store, closeStore, err := openStore(ctx, cfg)
		if err != nil {
			log.Error().Err(err).Str("backend", cfg.Cache.Backend).Msg("cache unavailable")
			return exitFailure
		}
		defer closeStore()
		return runCached(ctx, client, store, cfg, req.path, stdout, stderr, log)
	}

	res, err := client.Call(ctx, req.method, req.path, req.body, nil)
	if err != nil {
		log.Warn().Err(err).Msg("canceled")
		return exitCanceled
	}
	return report(res, stdout, stderr, log)
}

func parseArgs(args []string) (request, error) {
	switch len(args) {
	case 1:
		return request{method: httpx.MethodGet, path: args[0]}, nil
	case 2, 3:
		req := request{method: strings.ToUpper(args[0]), path: args[1]}
		if len(args) == 3 {
			body := []byte(args[2])
			if !json.Valid(body) {
				return request{}, errors.New("netcall: body must be valid JSON")
			}
			req.body = body
		}
		return req, nil
	default:
		return request{}, errors.New("netcall: expected a path")
	}
}

func report(res safecall.Result[*resty.Response], stdout, stderr io.Writer, log *logger.Logger) int {
	return safecall.Match(res,
		func(resp *resty.Response) int {
			_, _ = stdout.Write(resp.Body())
			return exitOK
		},
		func(resp *resty.Response) int {
			fmt.Fprintf(stderr, "%s\n%s\n", resp.Status(), resp.Body())
			return exitServerError
		},
		func(err error) int {
			log.Error().Err(err).Msg("request failed")
			return exitFailure
		},
	)
}

func runCached(ctx context.Context, client *httpx.Client, store cache.Store, cfg *config.Config, path string, stdout, stderr io.Writer, log *logger.Logger) int {
	repo := offline.NewRepository[json.RawMessage](client, store)
	strategy := offline.NewTimeResolveStrategy[json.RawMessage](client.BaseURL()+path, cfg.Cache.Refresh).
		WithTTL(cfg.Cache.TTL)

	data, err := repo.Get(ctx, path, strategy)
	var rerr *httpx.ResourceError
	switch {
	case err == nil:
		_, _ = stdout.Write(data)
		return exitOK
	case errors.Is(err, context.Canceled):
		log.Warn().Err(err).Msg("canceled")
		return exitCanceled
	case errors.As(err, &rerr):
		fmt.Fprintln(stderr, rerr)
		return exitServerError
	default:
		log.Error().Err(err).Msg("request failed")
		return exitFailure
	}
}

func openStore(ctx context.Context, cfg *config.Config) (cache.Store, func(), error) {
	switch cfg.Cache.Backend {
	case config.BackendRedis:
		s := redis.NewStore(redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := s.Ping(ctx); err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.BackendPostgres:
		s, err := postgres.Connect(ctx, postgres.WithDSN(cfg.Postgres.DSN))
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return memory.NewStore(), func() {}, nil
	}
}
