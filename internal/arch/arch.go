// Package arch contains the contracts between the interpreter core and the host.
// It acts as a bridge between the runner and the frontend specific code.
package arch

import (
	"context"

	"github.com/retroenv/retrochip8/internal/arch/chip8"
)

// Frontend presents the machine output to the user and feeds key input
// into a Keyboard that it was created with.
type Frontend interface {
	// Init prepares the output device and starts processing input events.
	// Input processing stops when the context is canceled.
	Init(ctx context.Context) error
	// Draw renders a complete display frame. It is only called when the
	// display content changed.
	Draw(frame chip8.Frame) error
	// Timers reports changed delay and sound timer values.
	Timers(delay, sound byte)
	// Close releases the output device and restores its previous state.
	Close() error
}

// Keyboard provides the current state of the 16 key hex keypad.
type Keyboard interface {
	Keys() [chip8.KeyCount]bool
}
