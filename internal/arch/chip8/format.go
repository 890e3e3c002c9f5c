package chip8

import (
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// formatOperands formats the operands of an instruction in assembly notation.
func formatOperands(name string, opcode uint16) string {
	switch name {
	case chip8.ClsInst.Name, chip8.RetInst.Name:
		return "" // No parameters
	case chip8.JpInst.Name:
		return formatJumpInstruction(opcode)
	case chip8.CallInst.Name:
		return fmt.Sprintf("$%03X", nnn(opcode))
	case chip8.SeInst.Name, chip8.SneInst.Name:
		return formatCompareInstruction(opcode)
	case chip8.LdInst.Name:
		return formatLoadInstruction(opcode)
	case chip8.AddInst.Name:
		return formatAddInstruction(opcode)
	case chip8.OrInst.Name, chip8.AndInst.Name, chip8.XorInst.Name, chip8.SubInst.Name, chip8.SubnInst.Name,
		chip8.ShrInst.Name, chip8.ShlInst.Name:
		return fmt.Sprintf("V%X, V%X", x(opcode), y(opcode))
	case chip8.RndInst.Name:
		return fmt.Sprintf("V%X, $%02X", x(opcode), nn(opcode))
	case chip8.DrwInst.Name:
		return fmt.Sprintf("V%X, V%X, $%X", x(opcode), y(opcode), n(opcode))
	case chip8.SkpInst.Name, chip8.SknpInst.Name:
		return fmt.Sprintf("V%X", x(opcode))
	}
	return ""
}

// formatData formats an opcode that is not a valid instruction as data word.
func formatData(opcode uint16) string {
	return fmt.Sprintf(".word $%04X", opcode)
}

// formatJumpInstruction formats jump instructions (JP addr, JP V0+addr).
func formatJumpInstruction(opcode uint16) string {
	switch opcode & 0xF000 {
	case 0x1000:
		return fmt.Sprintf("$%03X", nnn(opcode))
	case 0xB000:
		return fmt.Sprintf("V0, $%03X", nnn(opcode))
	}
	return ""
}

// formatCompareInstruction formats comparison instructions (SE, SNE).
func formatCompareInstruction(opcode uint16) string {
	switch opcode & 0xF000 {
	case 0x3000, 0x4000:
		return fmt.Sprintf("V%X, $%02X", x(opcode), nn(opcode))
	case 0x5000, 0x9000:
		return fmt.Sprintf("V%X, V%X", x(opcode), y(opcode))
	}
	return ""
}

// formatLoadInstruction formats all variants of the LD instruction.
func formatLoadInstruction(opcode uint16) string {
	vx := x(opcode)
	switch opcode & 0xF000 {
	case 0x6000:
		return fmt.Sprintf("V%X, $%02X", vx, nn(opcode))
	case 0x8000:
		return fmt.Sprintf("V%X, V%X", vx, y(opcode))
	case 0xA000:
		return fmt.Sprintf("I, $%03X", nnn(opcode))
	case 0xF000:
		return formatMiscLoadInstruction(opcode)
	}
	return ""
}

// formatMiscLoadInstruction formats the LD variants of the 0xF family.
func formatMiscLoadInstruction(opcode uint16) string {
	vx := x(opcode)
	switch nn(opcode) {
	case 0x07:
		return fmt.Sprintf("V%X, DT", vx)
	case 0x0A:
		return fmt.Sprintf("V%X, K", vx)
	case 0x15:
		return fmt.Sprintf("DT, V%X", vx)
	case 0x18:
		return fmt.Sprintf("ST, V%X", vx)
	case 0x29:
		return fmt.Sprintf("F, V%X", vx)
	case 0x33:
		return fmt.Sprintf("B, V%X", vx)
	case 0x55:
		return fmt.Sprintf("[I], V%X", vx)
	case 0x65:
		return fmt.Sprintf("V%X, [I]", vx)
	}
	return ""
}

// formatAddInstruction formats add instructions (ADD Vx, byte/Vy, ADD I, Vx).
func formatAddInstruction(opcode uint16) string {
	vx := x(opcode)
	switch opcode & 0xF000 {
	case 0x7000:
		return fmt.Sprintf("V%X, $%02X", vx, nn(opcode))
	case 0x8000:
		return fmt.Sprintf("V%X, V%X", vx, y(opcode))
	case 0xF000:
		return fmt.Sprintf("I, V%X", vx)
	}
	return ""
}
