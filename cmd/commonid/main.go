package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"

	"github.com/roach88/commonid/internal/cli"
	"github.com/roach88/commonid/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx)
	stop()
	os.Exit(code)
}

func run(ctx context.Context) int {
	defer func() { _ = logger.Logger.Sync() }()

	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			// Flag and argument errors never reach the formatter.
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}
