package chip8

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/retroenv/retrochip8/internal/options"
	chip8cpu "github.com/retroenv/retrogolib/arch/cpu/chip8"
	"github.com/retroenv/retrogolib/assert"
)

func TestNew(t *testing.T) {
	c := New(options.Interpreter{})

	assert.Equal(t, uint16(ProgramStart), c.pc)
	assert.Equal(t, uint16(0), c.i)
	assert.Equal(t, 0, c.sp)
	assert.Equal(t, [RegisterCount]byte{}, c.v)
	assert.False(t, c.Display().NeedsRedraw())

	if diff := cmp.Diff(fontSet[:], c.memory[FontAddress:FontAddress+len(fontSet)]); diff != "" {
		t.Errorf("font: (-want, +got)\n%s", diff)
	}
	for address := len(fontSet); address < MemorySize; address++ {
		if c.memory[address] != 0 {
			t.Fatalf("memory at $%04X not zeroed", address)
		}
	}
}

func TestChip8_LoadProgram(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"empty", 0, false},
		{"small", 4, false},
		{"exact maximum", MaxProgramSize, false},
		{"one byte too large", MaxProgramSize + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(options.Interpreter{})
			image := make([]byte, tt.size)
			for i := range image {
				image[i] = byte(i) | 1
			}

			err := c.LoadProgram(image)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrImageTooLarge))
				assert.Equal(t, byte(0), c.memory[ProgramStart])
				return
			}

			assert.NoError(t, err)
			if diff := cmp.Diff(image, c.memory[ProgramStart:ProgramStart+tt.size]); diff != "" {
				t.Errorf("program: (-want, +got)\n%s", diff)
			}
		})
	}
}

func TestChip8_Reset(t *testing.T) {
	c := newTestChip8(t, options.Interpreter{}, 0x6005, 0xA123, 0x2300)
	stepN(t, c, 3)
	c.SetKey(3, true)
	c.delayTimer = 9

	c.Reset()

	assert.Equal(t, uint16(ProgramStart), c.pc)
	assert.Equal(t, uint16(0), c.i)
	assert.Equal(t, 0, c.sp)
	assert.Equal(t, byte(0), c.v[0])
	assert.Equal(t, byte(0), c.delayTimer)
	assert.False(t, c.Key(3))
	assert.Equal(t, byte(0), c.memory[ProgramStart])
	assert.Equal(t, fontSet[0], c.memory[FontAddress])
}

func TestChip8_Fetch(t *testing.T) {
	c := New(options.Interpreter{})

	for _, pair := range [][2]byte{{0x00, 0x00}, {0x12, 0x34}, {0xFF, 0x01}, {0xA2, 0xFF}} {
		c.memory[c.pc] = pair[0]
		c.memory[c.pc+1] = pair[1]

		opcode, err := c.fetch()
		assert.NoError(t, err)
		assert.Equal(t, uint16(pair[0])*256+uint16(pair[1]), opcode)
	}
}

func TestChip8_FetchOutOfBounds(t *testing.T) {
	c := New(options.Interpreter{})
	c.pc = MaxAddress

	err := c.Step()
	assert.True(t, errors.Is(err, ErrOutOfBounds))

	var execErr *ExecutionError
	assert.True(t, errors.As(err, &execErr))
	assert.Equal(t, uint16(MaxAddress), execErr.Address)

	c.pc = MaxAddress - 1
	c.memory[MaxAddress-1] = 0x60
	c.memory[MaxAddress] = 0x01
	assert.NoError(t, c.Step())
	assert.Equal(t, byte(1), c.v[0])
}

func TestChip8_AddProgram(t *testing.T) {
	c := newTestChip8(t, options.Interpreter{}, 0x6005, 0x6103, 0x8014)

	stepN(t, c, 3)

	assert.Equal(t, byte(8), c.v[0])
	assert.Equal(t, byte(0), c.v[flagRegister])
	assert.Equal(t, uint16(ProgramStart+6), c.pc)
}

func TestChip8_CallReturn(t *testing.T) {
	c := newTestChip8(t, options.Interpreter{}, 0x2300)
	c.memory[0x300] = 0x00
	c.memory[0x301] = 0xEE

	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x300), c.pc)
	assert.Equal(t, 1, c.sp)

	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x202), c.pc)
	assert.Equal(t, 0, c.sp)
}

func TestChip8_StackOverflow(t *testing.T) {
	c := newTestChip8(t, options.Interpreter{}, 0x2200) // calls itself

	stepN(t, c, StackSize)
	assert.Equal(t, StackSize, c.sp)

	err := c.Step()
	assert.True(t, errors.Is(err, ErrStackOverflow))
	assert.Equal(t, StackSize, c.sp)
}

func TestChip8_StackUnderflow(t *testing.T) {
	c := newTestChip8(t, options.Interpreter{}, 0x00EE)

	err := c.Step()
	assert.True(t, errors.Is(err, ErrStackUnderflow))
	assert.Equal(t, uint16(ProgramStart), c.pc)
}

func TestChip8_TimerDecrement(t *testing.T) {
	c := newTestChip8(t, options.Interpreter{}, 0x1200) // jp to itself
	c.delayTimer = 5
	c.soundTimer = 3

	stepN(t, c, 5)
	assert.Equal(t, byte(0), c.DelayTimer())
	assert.Equal(t, byte(0), c.SoundTimer())

	stepN(t, c, 1)
	assert.Equal(t, byte(0), c.DelayTimer())
	assert.Equal(t, byte(0), c.SoundTimer())
}

func TestChip8_TimerSetThenRead(t *testing.T) {
	c := newTestChip8(t, options.Interpreter{},
		0x6A0A, // ld VA, $0A
		0xFA15, // ld DT, VA
		0xFA18, // ld ST, VA
		0xFB07, // ld VB, DT
	)

	stepN(t, c, 4)

	// the delay timer was set in step 2 and decremented at the end of steps 2 and 3
	assert.Equal(t, byte(8), c.v[0xB])
	assert.Equal(t, byte(7), c.DelayTimer())
	assert.Equal(t, byte(8), c.SoundTimer())
}

func TestChip8_TimersNotUpdatedOnError(t *testing.T) {
	c := newTestChip8(t, options.Interpreter{}, 0xFFFF)
	c.delayTimer = 2

	assert.Error(t, c.Step())
	assert.Equal(t, byte(2), c.DelayTimer())
}

func TestChip8_Trace(t *testing.T) {
	tracer := &mockTracer{}
	c := newTestChip8(t, options.Interpreter{}, 0x6005, 0xD125, 0xFFFF)
	c.InjectDependencies(Dependencies{Tracer: tracer})

	stepN(t, c, 2)
	assert.Error(t, c.Step())

	assert.Len(t, tracer.records, 2)
	assert.Equal(t, TraceRecord{Address: 0x200, Opcode: 0x6005, Mnemonic: chip8cpu.LdInst.Name, Operands: "V0, $05"}, tracer.records[0])
	assert.Equal(t, TraceRecord{Address: 0x202, Opcode: 0xD125, Mnemonic: chip8cpu.DrwInst.Name, Operands: "V1, V2, $5"}, tracer.records[1])
}

func TestChip8_ReadMemory(t *testing.T) {
	c := New(options.Interpreter{})

	data, err := c.ReadMemory(FontAddress, glyphSize)
	assert.NoError(t, err)
	if diff := cmp.Diff(fontSet[:glyphSize], data); diff != "" {
		t.Errorf("glyph 0: (-want, +got)\n%s", diff)
	}

	_, err = c.ReadMemory(MaxAddress, 2)
	assert.True(t, errors.Is(err, ErrOutOfBounds))

	data, err = c.ReadMemory(MaxAddress, 1)
	assert.NoError(t, err)
	assert.Len(t, data, 1)
}

func TestChip8_State(t *testing.T) {
	c := newTestChip8(t, options.Interpreter{}, 0x6A42, 0x2300)
	stepN(t, c, 2)

	state := c.State()
	assert.Equal(t, uint16(0x300), state.PC)
	assert.Equal(t, 1, state.SP)
	assert.Equal(t, byte(0x42), state.V[0xA])
	if diff := cmp.Diff([]uint16{0x202}, state.Stack); diff != "" {
		t.Errorf("stack: (-want, +got)\n%s", diff)
	}
}
