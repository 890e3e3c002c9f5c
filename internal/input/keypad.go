// Package input provides the hex keypad state that frontends write and the
// runner reads once per cycle.
package input

import (
	"sync"
	"time"

	"github.com/retroenv/retrochip8/internal/arch/chip8"
)

// DefaultHold is the time a tapped key stays pressed. Terminals only report
// key presses, a press is therefore kept for a few cycles to be visible to
// programs that poll the keypad.
const DefaultHold = 150 * time.Millisecond

// Keypad is the concurrency safe state of the 16 keys.
// Keys can either be tapped, in which case they are released automatically
// after the hold duration, or explicitly set and released.
type Keypad struct {
	mu      sync.Mutex
	hold    time.Duration
	now     func() time.Time
	held    [chip8.KeyCount]bool
	expires [chip8.KeyCount]time.Time
}

// NewKeypad returns a keypad that keeps tapped keys pressed for the given duration.
func NewKeypad(hold time.Duration) *Keypad {
	return &Keypad{
		hold: hold,
		now:  time.Now,
	}
}

// Tap presses the key and releases it after the hold duration.
// Tapping a pressed key extends the hold duration.
func (k *Keypad) Tap(key byte) {
	if int(key) >= chip8.KeyCount {
		return
	}

	k.mu.Lock()
	k.expires[key] = k.now().Add(k.hold)
	k.mu.Unlock()
}

// Set presses or releases the key until the next call for the same key.
func (k *Keypad) Set(key byte, pressed bool) {
	if int(key) >= chip8.KeyCount {
		return
	}

	k.mu.Lock()
	k.held[key] = pressed
	if !pressed {
		k.expires[key] = time.Time{}
	}
	k.mu.Unlock()
}

// Keys returns the current pressed state of all keys.
func (k *Keypad) Keys() [chip8.KeyCount]bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	var keys [chip8.KeyCount]bool
	for i := range keys {
		keys[i] = k.held[i] || now.Before(k.expires[i])
	}
	return keys
}
