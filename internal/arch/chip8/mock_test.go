package chip8

import (
	"testing"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/assert"
)

// mockTracer records all trace records it receives.
type mockTracer struct {
	records []TraceRecord
}

func (m *mockTracer) Trace(record TraceRecord) {
	m.records = append(m.records, record)
}

// fixedRandom returns a random source that always returns the given value.
func fixedRandom(value byte) RandomSource {
	return func() byte {
		return value
	}
}

// newTestChip8 returns an interpreter with the given instruction words loaded at ProgramStart.
func newTestChip8(t *testing.T, opts options.Interpreter, program ...uint16) *Chip8 {
	t.Helper()

	c := New(opts)
	image := make([]byte, 0, len(program)*opcodeSize)
	for _, word := range program {
		image = append(image, byte(word>>8), byte(word))
	}
	assert.NoError(t, c.LoadProgram(image))
	return c
}

// stepN executes count steps and fails the test on the first error.
func stepN(t *testing.T, c *Chip8, count int) {
	t.Helper()

	for range count {
		assert.NoError(t, c.Step())
	}
}
