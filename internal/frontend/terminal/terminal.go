// Package terminal implements a frontend that renders the display with ANSI
// escape sequences and reads keys from a terminal in raw mode.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/term/termios"
	"github.com/retroenv/retrochip8/internal/arch/chip8"
	"github.com/retroenv/retrochip8/internal/input"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ANSI escape sequences.
const (
	clearScreen = "\x1b[2J"
	cursorHome  = "\x1b[H"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
	resetStyle  = "\x1b[0m"
)

const (
	pixelOn  = "█"
	pixelOff = " "
)

// statusRow is the terminal row of the timer status line, below the display.
const statusRow = chip8.DisplayHeight + 1

// Frontend renders to a terminal.
type Frontend struct {
	logger *log.Logger
	keypad *input.Keypad
	in     *os.File
	out    io.Writer
	outFd  int

	original unix.Termios
	raw      bool
	wide     bool // render every pixel as two characters to keep the aspect ratio
}

// New returns a terminal frontend that reads keys from stdin into the keypad
// and renders to stdout.
func New(logger *log.Logger, keypad *input.Keypad) *Frontend {
	return &Frontend{
		logger: logger,
		keypad: keypad,
		in:     os.Stdin,
		out:    os.Stdout,
		outFd:  int(os.Stdout.Fd()),
	}
}

// Init switches the terminal into raw mode, clears it and starts reading keys.
func (f *Frontend) Init(ctx context.Context) error {
	if err := f.enableRawMode(); err != nil {
		return err
	}

	width, height, err := term.GetSize(f.outFd)
	if err == nil {
		f.wide = width >= 2*chip8.DisplayWidth
		if width < chip8.DisplayWidth || height < statusRow {
			f.logger.Warn("Terminal is smaller than the display",
				log.Int("width", width), log.Int("height", height))
		}
	}

	if _, err := io.WriteString(f.out, clearScreen+hideCursor); err != nil {
		return fmt.Errorf("clearing terminal: %w", err)
	}

	go f.readKeys(ctx, f.in)
	return nil
}

// enableRawMode disables line buffering and echo of the input terminal.
// Signal generation stays enabled so that Ctrl+C still interrupts.
func (f *Frontend) enableRawMode() error {
	if err := termios.Tcgetattr(f.in.Fd(), &f.original); err != nil {
		return fmt.Errorf("reading terminal attributes: %w", err)
	}

	raw := f.original
	raw.Lflag &^= unix.ICANON | unix.ECHO
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	if err := termios.Tcsetattr(f.in.Fd(), termios.TCSANOW, &raw); err != nil {
		return fmt.Errorf("enabling raw mode: %w", err)
	}
	f.raw = true
	return nil
}

func (f *Frontend) disableRawMode() error {
	if !f.raw {
		return nil
	}
	f.raw = false
	if err := termios.Tcsetattr(f.in.Fd(), termios.TCSANOW, &f.original); err != nil {
		return fmt.Errorf("restoring terminal attributes: %w", err)
	}
	return nil
}

// readKeys taps the keypad for every mapped character read from the reader.
// Terminals do not report key releases, the keypad releases tapped keys.
func (f *Frontend) readKeys(ctx context.Context, reader io.Reader) {
	buf := bufio.NewReader(reader)
	for ctx.Err() == nil {
		r, _, err := buf.ReadRune()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				f.logger.Error("Reading key failed", log.Err(err))
			}
			return
		}

		if key, ok := input.KeyForRune(r); ok {
			f.keypad.Tap(key)
		}
	}
}

// Draw renders the complete frame.
func (f *Frontend) Draw(frame chip8.Frame) error {
	if _, err := io.WriteString(f.out, render(frame, f.wide)); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

// Timers renders the timer status line below the display.
func (f *Frontend) Timers(delay, sound byte) {
	_, _ = io.WriteString(f.out, status(delay, sound))
}

// Close restores the terminal.
func (f *Frontend) Close() error {
	_, _ = io.WriteString(f.out, resetStyle+showCursor+"\n")
	return f.disableRawMode()
}

// render returns the escape sequence that draws the frame at the top left
// corner of the terminal.
func render(frame chip8.Frame, wide bool) string {
	on, off := pixelOn, pixelOff
	if wide {
		on, off = on+on, off+off
	}

	var sb strings.Builder
	sb.Grow(len(cursorHome) + chip8.DisplayHeight*(chip8.DisplayWidth*len(on)+2))
	sb.WriteString(cursorHome)

	for y := range chip8.DisplayHeight {
		for x := range chip8.DisplayWidth {
			if frame.Pixel(x, y) {
				sb.WriteString(on)
			} else {
				sb.WriteString(off)
			}
		}
		sb.WriteString("\r\n")
	}
	return sb.String()
}

// status returns the escape sequence that draws the timer status line.
func status(delay, sound byte) string {
	return fmt.Sprintf("\x1b[%d;1H\x1b[2KDT %3d  ST %3d", statusRow, delay, sound)
}
