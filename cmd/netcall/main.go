// Command netcall issues one HTTP request against NETCALL_BASE_URL and reports
// whether it succeeded, was rejected by the server, or failed locally.
//
// Usage:
//
//	netcall [METHOD] PATH [BODY]
//
// Exit codes: 0 success, 1 server error, 2 local failure, 3 usage or
// configuration error, 130 canceled.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
