package chip8

import (
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Flow classifies how an instruction changes the program counter.
type Flow string

// Program counter flow kinds. Instructions that only advance to the next
// instruction have FlowNone.
const (
	FlowNone   Flow = ""
	FlowJump   Flow = "jump"
	FlowCall   Flow = "call"
	FlowReturn Flow = "return"
	FlowSkip   Flow = "skip"
)

// Instruction represents a CHIP-8 instruction wrapper around the retrogolib
// CHIP-8 instruction definitions.
type Instruction struct {
	ins *chip8.Instruction
}

// IsCall returns true if the instruction is a call instruction.
func (i Instruction) IsCall() bool {
	return i.ins == chip8.CallInst
}

// IsNil returns true if the instruction is nil.
func (i Instruction) IsNil() bool {
	return i.ins == nil
}

// Name returns the instruction name.
func (i Instruction) Name() string {
	if i.ins == nil {
		return ""
	}
	return i.ins.Name
}

// IsJump returns true if the instruction is a jump instruction.
func (i Instruction) IsJump() bool {
	return i.ins == chip8.JpInst
}

// IsReturn returns true if the instruction is a return instruction.
func (i Instruction) IsReturn() bool {
	return i.ins == chip8.RetInst
}

// IsSkip returns true if the instruction is a conditional skip instruction.
func (i Instruction) IsSkip() bool {
	if i.ins == nil {
		return false
	}
	return chip8.SkipInstructions.Contains(i.ins.Name)
}

// Flow returns the program counter flow of the instruction.
func (i Instruction) Flow() Flow {
	switch {
	case i.IsJump():
		return FlowJump
	case i.IsCall():
		return FlowCall
	case i.IsReturn():
		return FlowReturn
	case i.IsSkip():
		return FlowSkip
	default:
		return FlowNone
	}
}
