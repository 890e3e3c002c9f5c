package chip8

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned for a fetch or memory access beyond the 4KB address space.
	ErrOutOfBounds = errors.New("memory access out of bounds")
	// ErrUnknownOpcode is returned for an instruction word that matches no operation.
	ErrUnknownOpcode = errors.New("unknown opcode")
	// ErrStackOverflow is returned for a call with all stack frames in use.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow is returned for a return with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")
	// ErrImageTooLarge is returned when a program image does not fit into program memory.
	ErrImageTooLarge = errors.New("program image too large")
)

// ExecutionError describes a fatal error that occurred while executing the
// instruction at Address. The interpreter state is left as it was when the
// error was detected, recovery is up to the host.
type ExecutionError struct {
	Address uint16
	Opcode  uint16 // only valid if the fetch succeeded
	Err     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("executing $%04X at $%04X: %s", e.Opcode, e.Address, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
