// Package config handles application configuration and setup.
package config

import (
	"fmt"
	"strings"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with the level selected by the program flags.
// Instruction traces are logged at debug level, so tracing enables it.
func CreateLogger(flags options.Flags) *log.Logger {
	cfg := log.DefaultConfig()
	switch {
	case flags.Debug, flags.Trace:
		cfg.Level = log.DebugLevel
	case flags.Quiet:
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// PrintBanner logs the program version unless quiet mode is enabled.
func PrintBanner(logger *log.Logger, flags options.Flags, version, commit, date string) {
	if flags.Quiet {
		return
	}

	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}

	logger.Info("retrochip8", log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}
