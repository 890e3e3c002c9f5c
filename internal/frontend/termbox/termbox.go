// Package termbox implements a frontend based on termbox-go that renders
// the display as terminal cells.
package termbox

import (
	"context"
	"fmt"

	"github.com/nsf/termbox-go"
	"github.com/retroenv/retrochip8/internal/arch/chip8"
	"github.com/retroenv/retrochip8/internal/input"
	"github.com/retroenv/retrogolib/log"
)

// cellWidth is the number of terminal cells used per pixel to keep the aspect ratio.
const cellWidth = 2

// Frontend renders into a termbox screen.
type Frontend struct {
	logger *log.Logger
	keypad *input.Keypad
	quit   context.CancelFunc

	initialized bool
	delay       byte
	sound       byte
}

// New returns a termbox frontend that writes keys into the keypad. Escape
// and Ctrl+C call quit, termbox disables the terminal signal generation.
func New(logger *log.Logger, keypad *input.Keypad, quit context.CancelFunc) *Frontend {
	return &Frontend{
		logger: logger,
		keypad: keypad,
		quit:   quit,
	}
}

// Init initializes termbox and starts polling input events.
func (f *Frontend) Init(ctx context.Context) error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("initializing termbox: %w", err)
	}
	f.initialized = true
	termbox.SetInputMode(termbox.InputEsc)

	if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		return fmt.Errorf("clearing screen: %w", err)
	}

	go f.pollEvents(ctx)
	return nil
}

func (f *Frontend) pollEvents(ctx context.Context) {
	for ctx.Err() == nil {
		if !f.handleEvent(termbox.PollEvent()) {
			return
		}
	}
}

// handleEvent processes a single input event and returns whether polling
// should continue.
func (f *Frontend) handleEvent(event termbox.Event) bool {
	switch event.Type {
	case termbox.EventKey:
		if event.Key == termbox.KeyEsc || event.Key == termbox.KeyCtrlC {
			f.quit()
			return false
		}
		if key, ok := input.KeyForRune(event.Ch); ok {
			f.keypad.Tap(key)
		}

	case termbox.EventError:
		f.logger.Error("Polling termbox event failed", log.Err(event.Err))
		return false

	case termbox.EventInterrupt:
		return false
	}
	return true
}

// Draw renders the complete frame.
func (f *Frontend) Draw(frame chip8.Frame) error {
	if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		return fmt.Errorf("clearing screen: %w", err)
	}

	for y := range chip8.DisplayHeight {
		for x := range chip8.DisplayWidth {
			if !frame.Pixel(x, y) {
				continue
			}
			for i := range cellWidth {
				termbox.SetCell(x*cellWidth+i, y, ' ', termbox.ColorWhite, termbox.ColorWhite)
			}
		}
	}

	f.drawStatus()
	if err := termbox.Flush(); err != nil {
		return fmt.Errorf("flushing screen: %w", err)
	}
	return nil
}

// Timers renders the timer status line below the display.
func (f *Frontend) Timers(delay, sound byte) {
	f.delay, f.sound = delay, sound
	f.drawStatus()
	if err := termbox.Flush(); err != nil {
		f.logger.Error("Flushing screen failed", log.Err(err))
	}
}

func (f *Frontend) drawStatus() {
	line := statusLine(f.delay, f.sound)
	for i, r := range []rune(line) {
		termbox.SetCell(i, chip8.DisplayHeight+1, r, termbox.ColorDefault, termbox.ColorDefault)
	}
}

// Close stops the event polling and restores the terminal.
func (f *Frontend) Close() error {
	if !f.initialized {
		return nil
	}
	termbox.Interrupt()
	termbox.Close()
	f.initialized = false
	return nil
}

func statusLine(delay, sound byte) string {
	return fmt.Sprintf("DT %3d  ST %3d  [Esc quits]", delay, sound)
}
