package pipeline

import (
	"github.com/retroenv/retrochip8/internal/arch/chip8"
	"github.com/retroenv/retrogolib/log"
)

var _ chip8.Tracer = (*logTracer)(nil)

// logTracer logs every executed instruction at debug level.
type logTracer struct {
	logger *log.Logger
}

func newLogTracer(logger *log.Logger) *logTracer {
	return &logTracer{logger: logger}
}

// Trace logs the trace record.
func (t *logTracer) Trace(record chip8.TraceRecord) {
	instruction := record.Mnemonic
	switch {
	case instruction == "":
		instruction = chip8.Decode(record.Address, record.Opcode).String()
	case record.Operands != "":
		instruction += " " + record.Operands
	}

	t.logger.Debug("Executed",
		log.Hex("address", record.Address),
		log.Hex("opcode", record.Opcode),
		log.String("instruction", instruction),
	)
}
