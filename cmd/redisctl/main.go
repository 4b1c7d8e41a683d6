// Package main is the entry point for the redisctl CLI.
//
// redisctl manages Redis Cloud subscriptions and Redis Enterprise clusters
// from one binary: named connection profiles, typed command trees for both
// control planes, a raw API escape hatch, async task orchestration, and
// support-package tooling.
//
// For detailed usage information, run:
//
//	redisctl --help
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joshrotenberg/redisctl/cmd/redisctl/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := commands.Execute(ctx)
	stop()
	os.Exit(code)
}
