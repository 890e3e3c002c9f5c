package chip8

// State is a snapshot of the register file, stack and timers.
type State struct {
	PC         uint16              `json:"pc"`
	I          uint16              `json:"i"`
	SP         int                 `json:"sp"`
	V          [RegisterCount]byte `json:"v"`
	Stack      []uint16            `json:"stack"`
	DelayTimer byte                `json:"delayTimer"`
	SoundTimer byte                `json:"soundTimer"`
	Keys       [KeyCount]bool      `json:"keys"`
}

// State returns a snapshot of the current interpreter state. Stack only
// contains the currently pushed frames.
func (c *Chip8) State() State {
	stack := make([]uint16, c.sp)
	copy(stack, c.stack[:c.sp])

	return State{
		PC:         c.pc,
		I:          c.i,
		SP:         c.sp,
		V:          c.v,
		Stack:      stack,
		DelayTimer: c.delayTimer,
		SoundTimer: c.soundTimer,
		Keys:       c.keys,
	}
}
