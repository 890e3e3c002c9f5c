// Package pipeline orchestrates the interpreter workflow stages.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/retroenv/retrochip8/internal/arch"
	"github.com/retroenv/retrochip8/internal/arch/chip8"
	"github.com/retroenv/retrochip8/internal/debugger"
	"github.com/retroenv/retrochip8/internal/detector"
	"github.com/retroenv/retrochip8/internal/frontend/headless"
	"github.com/retroenv/retrochip8/internal/frontend/termbox"
	"github.com/retroenv/retrochip8/internal/frontend/terminal"
	"github.com/retroenv/retrochip8/internal/frontend/web"
	"github.com/retroenv/retrochip8/internal/input"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/log"
)

// Pipeline orchestrates the complete interpreter workflow.
type Pipeline struct {
	logger   *log.Logger
	detector *detector.Detector
	loader   *loader.Loader
}

// New creates a new interpreter pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger:   logger,
		detector: detector.New(logger),
		loader:   loader.New(),
	}
}

// Execute runs the complete pipeline: frontend detection, ROM loading and
// running the program until it is interrupted or fails.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program) error {
	frontendName, err := p.detector.Detect(opts)
	if err != nil {
		return fmt.Errorf("detecting frontend: %w", err)
	}

	image, err := p.loader.Load(opts)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}

	return p.ExecuteWithImage(ctx, opts, frontendName, image)
}

// ExecuteWithImage runs the pipeline with a pre-loaded program image.
// This is useful for testing and programmatic usage where the image is already in memory.
func (p *Pipeline) ExecuteWithImage(ctx context.Context, opts options.Program, frontendName string, image []byte) error {
	vm, err := p.createInterpreter(opts, image)
	if err != nil {
		return fmt.Errorf("creating interpreter: %w", err)
	}

	if opts.Dump != "" {
		if err := p.dumpMemory(vm, opts.Dump); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	keypad := input.NewKeypad(input.DefaultHold)
	frontend, err := p.createFrontend(frontendName, opts, keypad, cancel)
	if err != nil {
		return fmt.Errorf("creating frontend: %w", err)
	}
	if err := frontend.Init(ctx); err != nil {
		return fmt.Errorf("initializing %s frontend: %w", frontendName, err)
	}
	defer func() {
		if err := frontend.Close(); err != nil {
			p.logger.Error("Closing frontend failed", log.Err(err))
		}
	}()

	r := runner.New(p.logger, vm, image, frontend, keypad, runner.Config{
		Interval: opts.Interval(),
		Cycles:   opts.Cycles,
		Paused:   opts.Pause,
	})

	if opts.Debugger != "" {
		server := debugger.New(p.logger, r)
		if err := server.Listen(ctx, opts.Debugger); err != nil {
			return fmt.Errorf("starting debugger: %w", err)
		}
		defer func() {
			if err := server.Close(); err != nil {
				p.logger.Error("Closing debugger failed", log.Err(err))
			}
		}()
	}

	p.printInfo(opts, frontendName, image)

	if err := r.Run(ctx); err != nil {
		return err
	}
	p.logger.Info("Program finished", log.Int("instructions", r.Executed()))
	return nil
}

// createInterpreter creates the interpreter with the configured quirks and loads the image.
func (p *Pipeline) createInterpreter(opts options.Program, image []byte) (*chip8.Chip8, error) {
	vm := chip8.New(options.NewInterpreter(opts))

	if opts.Trace {
		vm.InjectDependencies(chip8.Dependencies{Tracer: newLogTracer(p.logger)})
	}

	if err := vm.LoadProgram(image); err != nil {
		return nil, fmt.Errorf("loading program: %w", err)
	}
	return vm, nil
}

// createFrontend creates the frontend with the given name. Frontends that
// handle the quit key call quit.
func (p *Pipeline) createFrontend(name string, opts options.Program, keypad *input.Keypad,
	quit context.CancelFunc) (arch.Frontend, error) {

	switch name {
	case options.FrontendTerminal:
		return terminal.New(p.logger, keypad), nil
	case options.FrontendTermbox:
		return termbox.New(p.logger, keypad, quit), nil
	case options.FrontendWeb:
		return web.New(p.logger, keypad, opts.Listen), nil
	case options.FrontendHeadless:
		return headless.New(p.logger, opts.Frame), nil
	default:
		return nil, fmt.Errorf("unsupported frontend '%s'", name)
	}
}

// dumpMemory writes the memory hex dump of the freshly loaded interpreter.
func (p *Pipeline) dumpMemory(vm *chip8.Chip8, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating memory dump file %s: %w", path, err)
	}
	if err := vm.DumpMemory(file); err != nil {
		_ = file.Close()
		return fmt.Errorf("writing memory dump: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing memory dump file: %w", err)
	}

	p.logger.Debug("Memory dump written", log.String("file", path))
	return nil
}

// printInfo prints information about the ROM being run.
func (p *Pipeline) printInfo(opts options.Program, frontendName string, image []byte) {
	if opts.Quiet {
		return
	}

	p.logger.Info("Running CHIP-8 ROM",
		log.String("file", opts.Input),
		log.Int("size", len(image)),
		log.String("frontend", frontendName),
		log.Int("hz", opts.Hz),
	)
}
