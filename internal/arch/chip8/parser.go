package chip8

import (
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// lookupInstruction finds the instruction definition that matches the opcode
// in the retrogolib CHIP-8 opcode table. It returns a nil instruction wrapper
// for words that are no valid instruction.
func lookupInstruction(opcode uint16) Instruction {
	opcodes := chip8.Opcodes[int(highNibble(opcode))]
	for _, op := range opcodes {
		if op.Info.Mask&opcode == op.Info.Value {
			return Instruction{ins: op.Instruction}
		}
	}
	return Instruction{}
}

// Decoded is a decoded instruction with its formatted operands.
type Decoded struct {
	Address  uint16 `json:"address"`
	Opcode   uint16 `json:"opcode"`
	Mnemonic string `json:"mnemonic"`
	Operands string `json:"operands"`
	Flow     Flow   `json:"flow,omitempty"`
}

// String returns the instruction in assembly notation.
func (d Decoded) String() string {
	if d.Mnemonic == "" {
		return formatData(d.Opcode)
	}
	if d.Operands == "" {
		return d.Mnemonic
	}
	return d.Mnemonic + " " + d.Operands
}

// Decode decodes the opcode located at the given address without executing it.
func Decode(address, opcode uint16) Decoded {
	decoded := Decoded{
		Address: address,
		Opcode:  opcode,
	}
	instruction := lookupInstruction(opcode)
	if instruction.IsNil() {
		return decoded
	}

	decoded.Mnemonic = instruction.Name()
	decoded.Operands = formatOperands(decoded.Mnemonic, opcode)
	decoded.Flow = instruction.Flow()
	return decoded
}

// Disassemble decodes count instructions starting at address from memory.
// Decoding stops early at the end of memory.
func (c *Chip8) Disassemble(address uint16, count int) ([]Decoded, error) {
	if err := checkRange(address, opcodeSize); err != nil {
		return nil, err
	}

	result := make([]Decoded, 0, count)
	for range count {
		if int(address)+opcodeSize > MemorySize {
			break
		}
		opcode, _ := decodeOpcode(c.memory[address : address+opcodeSize])
		result = append(result, Decode(address, opcode))
		address += opcodeSize
	}
	return result, nil
}
