package runner

import (
	"context"
	"testing"
	"time"

	"github.com/retroenv/retrochip8/internal/arch/chip8"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// mockFrontend records all frames and timer updates. It is only accessed
// from the runner goroutine or after the runner stopped.
type mockFrontend struct {
	frames []chip8.Frame
	timers [][2]byte
}

func (m *mockFrontend) Init(context.Context) error {
	return nil
}

func (m *mockFrontend) Draw(frame chip8.Frame) error {
	m.frames = append(m.frames, frame)
	return nil
}

func (m *mockFrontend) Timers(delay, sound byte) {
	m.timers = append(m.timers, [2]byte{delay, sound})
}

func (m *mockFrontend) Close() error {
	return nil
}

// mockKeyboard returns a fixed key state.
type mockKeyboard struct {
	keys [chip8.KeyCount]bool
}

func (m *mockKeyboard) Keys() [chip8.KeyCount]bool {
	return m.keys
}

// newTestRunner returns a runner with the given instruction words loaded at ProgramStart.
func newTestRunner(t *testing.T, cfg Config, program ...uint16) (*Runner, *mockFrontend, *mockKeyboard) {
	t.Helper()

	image := make([]byte, 0, len(program)*2)
	for _, word := range program {
		image = append(image, byte(word>>8), byte(word))
	}

	vm := chip8.New(options.Interpreter{})
	assert.NoError(t, vm.LoadProgram(image))

	if cfg.Interval == 0 {
		cfg.Interval = time.Millisecond
	}

	frontend := &mockFrontend{}
	keyboard := &mockKeyboard{}
	r := New(log.NewTestLogger(t), vm, image, frontend, keyboard, cfg)
	return r, frontend, keyboard
}

// startRunner runs the runner in the background and returns a function
// that stops it and returns the result of Run.
func startRunner(t *testing.T, r *Runner) func() error {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() {
		result <- r.Run(ctx)
	}()

	return func() error {
		cancel()
		return <-result
	}
}

// waitPaused polls the runner until it is paused or the timeout expires.
func waitPaused(t *testing.T, r *Runner) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		paused, err := r.Paused(context.Background())
		assert.NoError(t, err)
		if paused {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("runner did not pause")
}
