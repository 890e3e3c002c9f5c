package chip8

import (
	"fmt"

	"github.com/retroenv/retrochip8/internal/options"
)

// CHIP-8 memory layout constants.
//
// CHIP-8 memory map (4KB total):
//
//	0x000-0x1FF: Interpreter and font data (512 bytes)
//	0x200-0xFFF: User program space (3584 bytes)
const (
	// MemorySize is the size of the addressable memory in bytes.
	MemorySize = 0x1000

	// ProgramStart is the memory address where CHIP-8 programs are loaded and begin execution.
	ProgramStart = 0x200

	// MaxAddress is the highest valid address in CHIP-8 memory space.
	MaxAddress = MemorySize - 1

	// MaxProgramSize is the largest program image that fits into memory.
	MaxProgramSize = MemorySize - ProgramStart

	// FontAddress is the memory address of the first built-in glyph.
	FontAddress = 0x000
)

// Register file and peripheral constants.
const (
	RegisterCount = 16
	StackSize     = 16
	KeyCount      = 16

	flagRegister = 0xF
	opcodeSize   = 2 // size of an instruction in bytes
)

// RandomSource returns a random byte for the RND instruction.
type RandomSource func() byte

// Tracer receives a record for every executed instruction.
type Tracer interface {
	Trace(record TraceRecord)
}

// Dependencies contains the optional collaborators of the interpreter.
type Dependencies struct {
	Random RandomSource
	Tracer Tracer
}

// Chip8 is the complete interpreter state container. It is not safe for
// concurrent use, the host has to serialize calls to Step and all accessors.
type Chip8 struct {
	opts options.Interpreter

	memory [MemorySize]byte

	v     [RegisterCount]byte // general purpose registers V0-VF
	i     uint16              // address register
	pc    uint16              // program counter
	stack [StackSize]uint16
	sp    int // number of pushed frames

	delayTimer byte
	soundTimer byte

	display Display
	keys    [KeyCount]bool

	random RandomSource
	tracer Tracer
}

// New returns a new initialized interpreter.
func New(opts options.Interpreter) *Chip8 {
	c := &Chip8{
		opts:   opts,
		random: defaultRandom,
	}
	c.Reset()
	return c
}

// InjectDependencies sets the optional collaborators. Nil fields keep the current value.
func (c *Chip8) InjectDependencies(deps Dependencies) {
	if deps.Random != nil {
		c.random = deps.Random
	}
	if deps.Tracer != nil {
		c.tracer = deps.Tracer
	}
}

// Reset restores the power-on state: memory zeroed with the font loaded,
// registers, stack, timers, keys and display cleared, PC set to ProgramStart.
func (c *Chip8) Reset() {
	c.memory = [MemorySize]byte{}
	c.v = [RegisterCount]byte{}
	c.i = 0
	c.pc = ProgramStart
	c.stack = [StackSize]uint16{}
	c.sp = 0
	c.delayTimer = 0
	c.soundTimer = 0
	c.display = Display{}
	c.keys = [KeyCount]bool{}
	c.loadFont()
}

func (c *Chip8) loadFont() {
	copy(c.memory[FontAddress:], fontSet[:])
}

// LoadProgram copies the program image into memory starting at ProgramStart.
func (c *Chip8) LoadProgram(image []byte) error {
	if len(image) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, maximum is %d", ErrImageTooLarge, len(image), MaxProgramSize)
	}
	copy(c.memory[ProgramStart:], image)
	return nil
}

// Display returns the display buffer.
func (c *Chip8) Display() *Display {
	return &c.display
}

// Frame returns an immutable copy of the display buffer.
func (c *Chip8) Frame() Frame {
	return c.display.Frame()
}

// SetKey sets the pressed state of a key, keys outside 0x0-0xF are ignored.
func (c *Chip8) SetKey(key byte, pressed bool) {
	if int(key) < KeyCount {
		c.keys[key] = pressed
	}
}

// SetKeys replaces the complete key state.
func (c *Chip8) SetKeys(keys [KeyCount]bool) {
	c.keys = keys
}

// Key returns whether the given key is pressed.
func (c *Chip8) Key(key byte) bool {
	return c.keys[key&0x0F]
}

// DelayTimer returns the current delay timer value.
func (c *Chip8) DelayTimer() byte {
	return c.delayTimer
}

// SoundTimer returns the current sound timer value.
func (c *Chip8) SoundTimer() byte {
	return c.soundTimer
}

// ProgramCounter returns the address of the next instruction to execute.
func (c *Chip8) ProgramCounter() uint16 {
	return c.pc
}

// ReadMemory returns a copy of length bytes starting at address.
func (c *Chip8) ReadMemory(address uint16, length int) ([]byte, error) {
	if length < 0 || int(address)+length > MemorySize {
		return nil, fmt.Errorf("%w: reading %d bytes at $%04X", ErrOutOfBounds, length, address)
	}
	data := make([]byte, length)
	copy(data, c.memory[address:])
	return data, nil
}

// checkRange verifies that length bytes starting at address are addressable.
func checkRange(address uint16, length int) error {
	if int(address)+length > MemorySize {
		return fmt.Errorf("%w: accessing %d bytes at $%04X", ErrOutOfBounds, length, address)
	}
	return nil
}

func (c *Chip8) updateTimers() {
	if c.delayTimer > 0 {
		c.delayTimer--
	}
	if c.soundTimer > 0 {
		c.soundTimer--
	}
}
