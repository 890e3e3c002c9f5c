// Package detector handles frontend detection.
package detector

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

// Detector handles frontend selection from options and the attached console.
type Detector struct {
	logger     *log.Logger
	isTerminal func(fd int) bool
	stdin      *os.File
	stdout     *os.File
}

// New creates a new frontend detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger:     logger,
		isTerminal: term.IsTerminal,
		stdin:      os.Stdin,
		stdout:     os.Stdout,
	}
}

// Detect determines the frontend from options or the console auto-detection.
// It first checks if a frontend is explicitly specified in options, otherwise
// the terminal frontend is used when both stdin and stdout are attached to a
// terminal and the headless frontend in all other cases.
func (d *Detector) Detect(opts options.Program) (string, error) {
	if opts.Frontend != "" {
		frontend := strings.ToLower(opts.Frontend)
		if !slices.Contains(options.Frontends, frontend) {
			return "", fmt.Errorf("unsupported frontend '%s'. Valid options: %s",
				opts.Frontend, strings.Join(options.Frontends, ", "))
		}
		return frontend, nil
	}

	frontend := options.FrontendHeadless
	if d.isTerminal(int(d.stdin.Fd())) && d.isTerminal(int(d.stdout.Fd())) {
		frontend = options.FrontendTerminal
	}

	d.logger.Debug("Auto-detected frontend",
		log.String("frontend", frontend))
	return frontend, nil
}
