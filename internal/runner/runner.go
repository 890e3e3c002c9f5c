// Package runner drives the interpreter at a fixed cadence and connects it to
// the frontend and the debugger.
package runner

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/retroenv/retrochip8/internal/arch"
	"github.com/retroenv/retrochip8/internal/arch/chip8"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

var (
	// ErrNotPaused is returned for requests that are only valid while paused.
	ErrNotPaused = errors.New("runner is not paused")
	// ErrStopped is returned for requests that arrive after the runner stopped.
	ErrStopped = errors.New("runner is stopped")
)

// Config contains the runner settings.
type Config struct {
	Interval time.Duration // duration of a single cycle
	Cycles   int           // stop after this many executed instructions, 0 for no limit
	Paused   bool          // start paused
}

// maxStepOverCycles limits the instructions executed by a step over a
// subroutine call that does not return.
const maxStepOverCycles = 1 << 16

// command is a request that is executed on the runner goroutine between two cycles.
type command struct {
	fn   func() error
	done chan error
}

// Runner is the single owner of the interpreter. All access to the
// interpreter state happens on the goroutine that executes Run, requests
// from other goroutines are queued as commands.
type Runner struct {
	logger   *log.Logger
	vm       *chip8.Chip8
	image    []byte
	frontend arch.Frontend
	keyboard arch.Keyboard
	cfg      Config

	commands chan command
	stopped  chan struct{}

	paused         bool
	skipBreakpoint bool // resume execution at a breakpoint address
	breakpoints    set.Set[uint16]
	executed       int
	err            error // first execution error, ends the run

	delayTimer byte
	soundTimer byte
}

// New returns a runner for the interpreter that has the image loaded.
// The image is kept for resetting the interpreter.
func New(logger *log.Logger, vm *chip8.Chip8, image []byte, frontend arch.Frontend,
	keyboard arch.Keyboard, cfg Config) *Runner {

	return &Runner{
		logger:      logger,
		vm:          vm,
		image:       image,
		frontend:    frontend,
		keyboard:    keyboard,
		cfg:         cfg,
		commands:    make(chan command),
		stopped:     make(chan struct{}),
		paused:      cfg.Paused,
		breakpoints: set.New[uint16](),
	}
}

// Run executes the interpreter until the context is canceled, the cycle
// limit is reached or an instruction fails. It returns the context error
// on cancellation and the execution error on failure.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.stopped)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	if err := r.draw(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("running program: %w", ctx.Err())

		case cmd := <-r.commands:
			cmd.done <- cmd.fn()

		case <-ticker.C:
			if r.paused {
				continue
			}
			if _, err := r.cycle(); err != nil {
				r.err = err
			}
		}

		if r.err != nil {
			return r.err
		}
		if r.limitReached() {
			r.logger.Debug("Cycle limit reached", log.Int("cycles", r.executed))
			return nil
		}
	}
}

// cycle executes the next instruction unless a breakpoint is set for its
// address. It returns whether an instruction was executed.
func (r *Runner) cycle() (bool, error) {
	pc := r.vm.ProgramCounter()
	if !r.skipBreakpoint && r.breakpoints.Contains(pc) {
		r.paused = true
		r.logger.Info("Breakpoint reached", log.Hex("address", pc))
		return false, nil
	}
	r.skipBreakpoint = false

	r.vm.SetKeys(r.keyboard.Keys())
	if err := r.vm.Step(); err != nil {
		return false, fmt.Errorf("executing instruction: %w", err)
	}
	r.executed++

	if err := r.draw(); err != nil {
		return true, err
	}
	r.updateTimers()
	return true, nil
}

// draw hands a copy of the display to the frontend if the content changed.
func (r *Runner) draw() error {
	display := r.vm.Display()
	if !display.NeedsRedraw() {
		return nil
	}

	frame := r.vm.Frame()
	display.ClearRedraw()
	if err := r.frontend.Draw(frame); err != nil {
		return fmt.Errorf("drawing frame: %w", err)
	}
	return nil
}

func (r *Runner) updateTimers() {
	delay, sound := r.vm.DelayTimer(), r.vm.SoundTimer()
	if delay == r.delayTimer && sound == r.soundTimer {
		return
	}
	r.delayTimer, r.soundTimer = delay, sound
	r.frontend.Timers(delay, sound)
}

func (r *Runner) limitReached() bool {
	return r.cfg.Cycles > 0 && r.executed >= r.cfg.Cycles
}

// Executed returns the number of executed instructions. It must only be
// called after Run returned.
func (r *Runner) Executed() int {
	return r.executed
}

// exec queues the function to be executed on the runner goroutine and
// waits for its result.
func (r *Runner) exec(ctx context.Context, fn func() error) error {
	cmd := command{
		fn:   fn,
		done: make(chan error, 1),
	}

	select {
	case r.commands <- cmd:
	case <-r.stopped:
		return ErrStopped
	case <-ctx.Done():
		return fmt.Errorf("queueing command: %w", ctx.Err())
	}

	select {
	case err := <-cmd.done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("waiting for command: %w", ctx.Err())
	}
}

// State returns a snapshot of the interpreter state.
func (r *Runner) State(ctx context.Context) (chip8.State, error) {
	var state chip8.State
	err := r.exec(ctx, func() error {
		state = r.vm.State()
		return nil
	})
	return state, err
}

// Pause stops the execution after the current cycle.
func (r *Runner) Pause(ctx context.Context) error {
	return r.exec(ctx, func() error {
		if !r.paused {
			r.paused = true
			r.logger.Info("Execution paused", log.Hex("address", r.vm.ProgramCounter()))
		}
		return nil
	})
}

// Resume continues the execution. A breakpoint at the current address
// does not pause the execution again.
func (r *Runner) Resume(ctx context.Context) error {
	return r.exec(ctx, func() error {
		if r.paused {
			r.paused = false
			r.skipBreakpoint = true
			r.logger.Info("Execution resumed", log.Hex("address", r.vm.ProgramCounter()))
		}
		return nil
	})
}

// Paused returns whether the execution is paused.
func (r *Runner) Paused(ctx context.Context) (bool, error) {
	var paused bool
	err := r.exec(ctx, func() error {
		paused = r.paused
		return nil
	})
	return paused, err
}

// Step executes up to count instructions while paused. Stepping stops early
// when a breakpoint is reached after the first instruction. An execution
// error is returned and also ends the run.
func (r *Runner) Step(ctx context.Context, count int) (chip8.State, error) {
	var state chip8.State
	err := r.exec(ctx, func() error {
		if !r.paused {
			return ErrNotPaused
		}

		if err := r.stepCycles(count, nil); err != nil {
			return err
		}
		state = r.vm.State()
		return nil
	})
	return state, err
}

// StepOver executes the next instruction while paused. If it is a call, the
// execution continues until the subroutine returned to the instruction
// following the call, a breakpoint is reached or maxStepOverCycles
// instructions were executed.
func (r *Runner) StepOver(ctx context.Context) (chip8.State, error) {
	var state chip8.State
	err := r.exec(ctx, func() error {
		if !r.paused {
			return ErrNotPaused
		}

		pc := r.vm.ProgramCounter()
		count := 1
		decoded, err := r.vm.Disassemble(pc, 1)
		if err == nil && decoded[0].Flow == chip8.FlowCall {
			count = maxStepOverCycles
		}

		returnAddress := pc + 2
		returned := func() bool {
			return r.vm.ProgramCounter() == returnAddress
		}
		if err := r.stepCycles(count, returned); err != nil {
			return err
		}
		state = r.vm.State()
		return nil
	})
	return state, err
}

// stepCycles executes up to count cycles and pauses afterwards. It stops
// early at a breakpoint, at the cycle limit or when done returns true.
// A breakpoint at the current address is skipped.
func (r *Runner) stepCycles(count int, done func() bool) error {
	for i := range count {
		r.skipBreakpoint = i == 0
		executed, err := r.cycle()
		if err != nil {
			r.err = err
			return err
		}
		if !executed || r.limitReached() || (done != nil && done()) {
			break
		}
	}
	r.paused = true
	return nil
}

// ReadMemory returns a copy of the memory range.
func (r *Runner) ReadMemory(ctx context.Context, address uint16, length int) ([]byte, error) {
	var data []byte
	err := r.exec(ctx, func() error {
		var err error
		data, err = r.vm.ReadMemory(address, length)
		return err
	})
	return data, err
}

// Disassemble decodes count instructions starting at address.
func (r *Runner) Disassemble(ctx context.Context, address uint16, count int) ([]chip8.Decoded, error) {
	var decoded []chip8.Decoded
	err := r.exec(ctx, func() error {
		var err error
		decoded, err = r.vm.Disassemble(address, count)
		return err
	})
	return decoded, err
}

// SetBreakpoint adds a breakpoint and returns all breakpoints sorted by address.
func (r *Runner) SetBreakpoint(ctx context.Context, address uint16) ([]uint16, error) {
	var breakpoints []uint16
	err := r.exec(ctx, func() error {
		if address > chip8.MaxAddress {
			return fmt.Errorf("%w: breakpoint at $%04X", chip8.ErrOutOfBounds, address)
		}
		r.breakpoints.Add(address)
		breakpoints = r.sortedBreakpoints()
		return nil
	})
	return breakpoints, err
}

// ClearBreakpoint removes a breakpoint and returns all remaining breakpoints sorted by address.
func (r *Runner) ClearBreakpoint(ctx context.Context, address uint16) ([]uint16, error) {
	var breakpoints []uint16
	err := r.exec(ctx, func() error {
		delete(r.breakpoints, address)
		breakpoints = r.sortedBreakpoints()
		return nil
	})
	return breakpoints, err
}

func (r *Runner) sortedBreakpoints() []uint16 {
	breakpoints := make([]uint16, 0, len(r.breakpoints))
	for address := range r.breakpoints {
		breakpoints = append(breakpoints, address)
	}
	slices.Sort(breakpoints)
	return breakpoints
}

// Reset restores the power-on state of the interpreter and reloads the program image.
func (r *Runner) Reset(ctx context.Context) (chip8.State, error) {
	var state chip8.State
	err := r.exec(ctx, func() error {
		r.vm.Reset()
		if err := r.vm.LoadProgram(r.image); err != nil {
			return fmt.Errorf("loading program: %w", err)
		}
		r.skipBreakpoint = false

		if err := r.frontend.Draw(r.vm.Frame()); err != nil {
			return fmt.Errorf("drawing frame: %w", err)
		}
		r.updateTimers()
		r.logger.Info("Interpreter reset")
		state = r.vm.State()
		return nil
	})
	return state, err
}
