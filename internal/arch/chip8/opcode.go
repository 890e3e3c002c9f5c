package chip8

// decodeOpcode combines two instruction bytes into a big endian 16-bit opcode.
func decodeOpcode(data []byte) (uint16, bool) {
	if len(data) < opcodeSize {
		return 0, false
	}
	return uint16(data[0])<<8 | uint16(data[1]), true
}

// highNibble extracts the opcode family from a CHIP-8 opcode.
func highNibble(opcode uint16) uint16 {
	return (opcode & 0xF000) >> 12
}

// x extracts the X register nibble from a CHIP-8 opcode.
func x(opcode uint16) uint16 {
	return (opcode & 0x0F00) >> 8
}

// y extracts the Y register nibble from a CHIP-8 opcode.
func y(opcode uint16) uint16 {
	return (opcode & 0x00F0) >> 4
}

// n extracts the lowest nibble, used as sprite height and sub-opcode.
func n(opcode uint16) uint16 {
	return opcode & 0x000F
}

// nn extracts the low byte immediate value.
func nn(opcode uint16) byte {
	return byte(opcode & 0x00FF)
}

// nnn extracts the 12-bit address.
func nnn(opcode uint16) uint16 {
	return opcode & 0x0FFF
}
