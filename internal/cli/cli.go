// Package cli handles command line interface logic
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/options"
)

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (options.Program, error) {
	return parseArgs(os.Args[0], os.Args[1:])
}

func parseArgs(name string, arguments []string) (options.Program, error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	// parse errors are reported once through the returned usage error
	flags.SetOutput(io.Discard)
	var opts options.Program
	readOptionFlags(flags, &opts)
	readQuirkFlags(flags, &opts.QuirkFlags)

	if err := flags.Parse(arguments); err != nil {
		usageErr := &UsageError{flags: flags}
		if !errors.Is(err, flag.ErrHelp) {
			usageErr.msg = err.Error()
		}
		return opts, usageErr
	}

	args := flags.Args()
	if len(args) == 0 && opts.Input == "" {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}

	if err := validateOptions(opts); err != nil {
		return opts, err
	}

	if len(args) > 0 {
		opts.Input = args[0]
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage information and all flag defaults.
func (e *UsageError) ShowUsage() {
	if e.msg != "" {
		fmt.Printf("%s\n\n", e.msg)
	}
	fmt.Printf("usage: retrochip8 [options] <ROM file to run>\n\n")
	if e.flags != nil {
		e.flags.SetOutput(os.Stdout)
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	return nil
}

// validateOptions checks the value ranges of numeric options
func validateOptions(opts options.Program) error {
	if opts.Hz <= 0 {
		return fmt.Errorf("invalid frequency %d: must be greater than 0", opts.Hz)
	}
	if opts.Cycles < 0 {
		return fmt.Errorf("invalid cycle limit %d: must not be negative", opts.Cycles)
	}
	if opts.Pause && opts.Debugger == "" {
		return &UsageError{msg: "starting paused requires the debugger to be enabled"}
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input ROM file")
	flags.StringVar(&opts.Frontend, "f", "", "frontend to use (terminal/termbox/web/headless), auto-detected if not set")
	flags.IntVar(&opts.Hz, "hz", options.DefaultHz, "instructions executed per second, timers decrement once per instruction")
	flags.IntVar(&opts.Cycles, "cycles", 0, "stop after executing this many instructions, 0 runs until interrupted")
	flags.StringVar(&opts.Listen, "listen", options.DefaultListen, "listen address of the web frontend")
	flags.StringVar(&opts.Debugger, "debugger", "", "listen address of the JSON-RPC debugger, disabled if empty")
	flags.BoolVar(&opts.Pause, "pause", false, "start paused, requires the debugger")
	flags.StringVar(&opts.Dump, "dump", "", "write a hex dump of the memory after loading the ROM to this file")
	flags.StringVar(&opts.Frame, "frame", "", "headless frontend: write the final display frame as text to this file")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}

func readQuirkFlags(flags *flag.FlagSet, opts *options.QuirkFlags) {
	flags.BoolVar(&opts.ShiftUsesVY, "shift-vy", false, "shift instructions 8XY6/8XYE shift VY into VX")
	flags.BoolVar(&opts.LoadStoreKeepsI, "keep-i", false, "register dump/load FX55/FX65 do not increment I")
	flags.BoolVar(&opts.ClipSprites, "clip", false, "clip sprites at the screen edges instead of wrapping them")
	flags.BoolVar(&opts.LogicResetsVF, "vf-reset", false, "logic instructions 8XY1/8XY2/8XY3 reset VF")
}
