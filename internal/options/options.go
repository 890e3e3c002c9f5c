// Package options contains the program options.
package options

import (
	"time"
)

// Frontend names that can be selected with the -f flag.
const (
	FrontendHeadless = "headless"
	FrontendTerminal = "terminal"
	FrontendTermbox  = "termbox"
	FrontendWeb      = "web"
)

// Frontends lists all supported frontend names.
var Frontends = []string{FrontendTerminal, FrontendTermbox, FrontendWeb, FrontendHeadless}

// Parameters contains file path and address options.
type Parameters struct {
	Input    string `flag:"i" usage:"input ROM file"`
	Dump     string `flag:"dump" usage:"write a hex dump of the memory after loading the ROM"`
	Frame    string `flag:"frame" usage:"headless: write the final display frame as text to this file"`
	Listen   string `flag:"listen" usage:"web frontend listen address" default:":3000"`
	Debugger string `flag:"debugger" usage:"JSON-RPC debugger listen address (disabled if empty)"`
}

// Flags contains behavior options.
type Flags struct {
	Frontend string `flag:"f" usage:"frontend: terminal, termbox, web, headless (default: auto-detect)"`
	Hz       int    `flag:"hz" usage:"steps per second" default:"60"`
	Cycles   int    `flag:"cycles" usage:"stop after this many steps, 0 runs until interrupted"`
	Pause    bool   `flag:"pause" usage:"start paused, resume through the debugger"`
	Trace    bool   `flag:"trace" usage:"log every executed instruction"`
	Debug    bool   `flag:"debug" usage:"enable debug logging"`
	Quiet    bool   `flag:"q" usage:"quiet mode"`
}

// QuirkFlags contains the interpreter compatibility options.
type QuirkFlags struct {
	ShiftUsesVY     bool `flag:"shift-vy" usage:"8XY6/8XYE shift VY into VX"`
	LoadStoreKeepsI bool `flag:"keep-i" usage:"FX55/FX65 do not increment I"`
	ClipSprites     bool `flag:"clip" usage:"clip sprites at the screen edge instead of wrapping"`
	LogicResetsVF   bool `flag:"vf-reset" usage:"8XY1/8XY2/8XY3 reset VF"`
}

// Program options of the interpreter.
type Program struct {
	Parameters
	Flags
	QuirkFlags
}

// Interval returns the duration of a single step for the configured frequency.
func (p Program) Interval() time.Duration {
	if p.Hz <= 0 {
		return time.Second / DefaultHz
	}
	return time.Second / time.Duration(p.Hz)
}

// Defaults of the program options.
const (
	DefaultHz     = 60 // conventional CHIP-8 step frequency
	DefaultListen = ":3000"
)

// Interpreter defines options to control the interpreter semantics.
type Interpreter struct {
	ShiftUsesVY     bool // shift instructions use VY as source
	LoadStoreKeepsI bool // register dump/load leave I unchanged
	ClipSprites     bool // clip sprite pixels that cross the screen edge
	LogicResetsVF   bool // OR/AND/XOR reset VF to 0
}

// NewInterpreter returns the interpreter options matching the program quirk flags.
func NewInterpreter(opts Program) Interpreter {
	return Interpreter{
		ShiftUsesVY:     opts.ShiftUsesVY,
		LoadStoreKeepsI: opts.LoadStoreKeepsI,
		ClipSprites:     opts.ClipSprites,
		LogicResetsVF:   opts.LogicResetsVF,
	}
}
