// Command wpbd converts a directory of Wiktionary entry pages into a
// Lingvo DSL or XDXF dictionary file for the PocketBook converter.
//
// Settings come from an optional YAML file (--config), WPBD_* environment
// variables and flags, in increasing priority.
//
// Exit codes: 0 = success, 1 = error, 2 = every input file failed.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/omfmartin/pocket-book-dictionary/internal/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func execute(ctx context.Context, args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		slog.Default().Error("wpbd failed", slog.String("error", err.Error()))
	}
	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, domain.ErrSystemicFailure):
		return 2
	default:
		return 1
	}
}
