// Package main implements the main entry point for a CHIP-8 interpreter
package main

import (
	"context"
	"errors"
	"os"

	"github.com/retroenv/retrochip8/internal/cli"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/pipeline"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Flags)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			config.PrintBanner(logger, opts.Flags, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Error("Invalid arguments", log.Err(err))
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Flags)
	config.PrintBanner(logger, opts.Flags, version, commit, date)

	if err := pipeline.New(logger).Execute(ctx, opts); err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Execution cancelled")
			return
		}
		logger.Error("Running program failed", log.Err(err))
		os.Exit(1)
	}
}
