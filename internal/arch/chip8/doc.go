// Package chip8 implements the CHIP-8 interpreter engine.
//
// # CHIP-8 Architecture Overview
//
// CHIP-8 is an interpreted programming language developed in the 1970s for simple games
// on early microcomputers. This package executes CHIP-8 program images instruction by
// instruction and exposes the resulting display buffer, timers and register state to a host.
//
// # Memory Layout
//
// CHIP-8 systems have 4KB of memory (0x000-MaxAddress):
//   - 0x000-0x04F: Built-in hex digit font, 16 glyphs of 5 bytes each
//   - 0x050-0x1FF: Reserved interpreter area
//   - ProgramStart-MaxAddress: User program and data area
//
// The display buffer (64x32 pixels), the call stack and the keypad are kept
// outside of the 4KB main memory address space.
//
// # Instruction Set
//
//   - All instructions are 2 bytes (16 bits), stored big endian
//   - 16 general-purpose 8-bit registers (V0-VF), VF doubles as flag register
//   - Special-purpose registers: I (16-bit), PC, SP
//   - Two 8-bit timers that count down once per executed step
//
// # Execution
//
// The host drives the interpreter by calling Step once per tick:
//  1. Fetch the 16-bit instruction word at PC
//  2. Decode it into an operation and its operands
//  3. Execute it against memory, registers and peripherals
//  4. Decrement the delay and sound timers
//
// The interpreter never sleeps, blocks or spawns goroutines. Pacing, key input
// translation and rendering belong to the host.
//
// # Usage Example
//
//	vm := chip8.New(options.Interpreter{})
//	if err := vm.LoadProgram(image); err != nil {
//		return fmt.Errorf("loading program: %w", err)
//	}
//	for {
//		if err := vm.Step(); err != nil {
//			return err
//		}
//		if vm.Display().NeedsRedraw() {
//			render(vm.Frame())
//			vm.Display().ClearRedraw()
//		}
//	}
//
// # Compatibility Quirks
//
// Some instructions behave differently across historical interpreters. The defaults
// follow the common modern semantics, options.Interpreter switches individual behaviors:
//   - ShiftUsesVY: 8XY6/8XYE shift VY into VX instead of shifting VX in place
//   - LoadStoreKeepsI: FX55/FX65 leave I unchanged
//   - ClipSprites: sprites are clipped at the screen edge instead of wrapping around
//   - LogicResetsVF: 8XY1/8XY2/8XY3 reset VF to 0
package chip8
