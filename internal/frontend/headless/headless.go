// Package headless implements a frontend without any output device. It is
// used for automated runs and tracing, the final display frame can be
// written to a text file.
package headless

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/retroenv/retrochip8/internal/arch/chip8"
	"github.com/retroenv/retrogolib/log"
)

// Text characters used for set and unset pixels in the frame output.
const (
	pixelOn  = '#'
	pixelOff = '.'
)

// Frontend keeps the last drawn frame.
type Frontend struct {
	logger    *log.Logger
	framePath string

	frame  chip8.Frame
	frames int
}

// New returns a headless frontend. If framePath is set, the last frame is
// written to that file on Close.
func New(logger *log.Logger, framePath string) *Frontend {
	return &Frontend{
		logger:    logger,
		framePath: framePath,
	}
}

// Init does nothing, there is no device to prepare.
func (f *Frontend) Init(context.Context) error {
	return nil
}

// Draw stores the frame.
func (f *Frontend) Draw(frame chip8.Frame) error {
	f.frame = frame
	f.frames++
	return nil
}

// Timers ignores the timer values.
func (f *Frontend) Timers(byte, byte) {}

// Close writes the final frame to the frame file if one is configured.
func (f *Frontend) Close() error {
	f.logger.Debug("Headless frontend closed", log.Int("frames", f.frames))
	if f.framePath == "" {
		return nil
	}

	file, err := os.Create(f.framePath)
	if err != nil {
		return fmt.Errorf("creating frame file %s: %w", f.framePath, err)
	}
	if err := WriteFrame(file, f.frame); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing frame file: %w", err)
	}
	return nil
}

// WriteFrame writes the frame as text, one line per display row.
func WriteFrame(w io.Writer, frame chip8.Frame) error {
	var sb strings.Builder
	sb.Grow(chip8.DisplayHeight * (chip8.DisplayWidth + 1))

	for y := range chip8.DisplayHeight {
		for x := range chip8.DisplayWidth {
			if frame.Pixel(x, y) {
				sb.WriteByte(pixelOn)
			} else {
				sb.WriteByte(pixelOff)
			}
		}
		sb.WriteByte('\n')
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}
