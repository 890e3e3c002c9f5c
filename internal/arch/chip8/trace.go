package chip8

// TraceRecord describes a single executed instruction. Records are a pure
// side channel and have no effect on the machine state.
type TraceRecord struct {
	Address  uint16
	Opcode   uint16
	Mnemonic string
	Operands string
}

// NewTraceRecord returns the trace record for the opcode executed at address.
func NewTraceRecord(address, opcode uint16) TraceRecord {
	decoded := Decode(address, opcode)
	return TraceRecord{
		Address:  address,
		Opcode:   opcode,
		Mnemonic: decoded.Mnemonic,
		Operands: decoded.Operands,
	}
}
