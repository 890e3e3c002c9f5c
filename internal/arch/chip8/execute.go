package chip8

// Step executes exactly one instruction cycle: fetch, decode, execute and
// timer update. A returned error is always an *ExecutionError and fatal for
// the loaded program, the timers are not updated in that case.
func (c *Chip8) Step() error {
	address := c.pc

	opcode, err := c.fetch()
	if err != nil {
		return &ExecutionError{Address: address, Err: err}
	}

	if err := c.execute(opcode); err != nil {
		return &ExecutionError{Address: address, Opcode: opcode, Err: err}
	}

	if c.tracer != nil {
		c.tracer.Trace(NewTraceRecord(address, opcode))
	}

	c.updateTimers()
	return nil
}

// fetch reads the big endian instruction word at the program counter.
func (c *Chip8) fetch() (uint16, error) {
	if int(c.pc)+1 > MaxAddress {
		return 0, checkRange(c.pc, opcodeSize)
	}
	opcode, _ := decodeOpcode(c.memory[c.pc : c.pc+opcodeSize])
	return opcode, nil
}

// execute dispatches the opcode by its family nibble.
func (c *Chip8) execute(opcode uint16) error {
	vx := &c.v[x(opcode)]
	vy := c.v[y(opcode)]

	switch highNibble(opcode) {
	case 0x0:
		return c.executeSystem(opcode)

	case 0x1: // jp addr
		c.pc = nnn(opcode)

	case 0x2: // call addr
		return c.call(nnn(opcode))

	case 0x3: // se Vx, byte
		c.skipIf(*vx == nn(opcode))

	case 0x4: // sne Vx, byte
		c.skipIf(*vx != nn(opcode))

	case 0x5: // se Vx, Vy
		if n(opcode) != 0 {
			return ErrUnknownOpcode
		}
		c.skipIf(*vx == vy)

	case 0x6: // ld Vx, byte
		*vx = nn(opcode)
		c.next()

	case 0x7: // add Vx, byte
		*vx += nn(opcode)
		c.next()

	case 0x8:
		return c.executeALU(opcode)

	case 0x9: // sne Vx, Vy
		if n(opcode) != 0 {
			return ErrUnknownOpcode
		}
		c.skipIf(*vx != vy)

	case 0xA: // ld I, addr
		c.i = nnn(opcode)
		c.next()

	case 0xB: // jp V0, addr
		c.pc = uint16(c.v[0]) + nnn(opcode)

	case 0xC: // rnd Vx, byte
		*vx = c.random() & nn(opcode)
		c.next()

	case 0xD:
		return c.draw(opcode)

	case 0xE:
		return c.executeKey(opcode)

	case 0xF:
		return c.executeMisc(opcode)
	}
	return nil
}

// next advances the program counter to the following instruction.
func (c *Chip8) next() {
	c.pc += opcodeSize
}

// skipIf skips the following instruction if the condition is true.
func (c *Chip8) skipIf(condition bool) {
	if condition {
		c.pc += 2 * opcodeSize
		return
	}
	c.pc += opcodeSize
}

// executeSystem handles the 0x0 family: cls and ret. Machine code
// routines (0NNN) are not supported.
func (c *Chip8) executeSystem(opcode uint16) error {
	switch opcode {
	case 0x00E0: // cls
		c.display.Clear()
		c.next()

	case 0x00EE: // ret
		if c.sp == 0 {
			return ErrStackUnderflow
		}
		c.sp--
		c.pc = c.stack[c.sp]
		c.next()

	default:
		return ErrUnknownOpcode
	}
	return nil
}

func (c *Chip8) call(address uint16) error {
	if c.sp == StackSize {
		return ErrStackOverflow
	}
	c.stack[c.sp] = c.pc
	c.sp++
	c.pc = address
	return nil
}

// executeALU handles the 0x8 family. The flag register is always written
// after the result so that VF holds the flag even if it is the target.
func (c *Chip8) executeALU(opcode uint16) error {
	vx := &c.v[x(opcode)]
	vy := c.v[y(opcode)]
	var flag byte

	switch n(opcode) {
	case 0x0: // ld Vx, Vy
		*vx = vy
		c.next()
		return nil

	case 0x1: // or
		*vx |= vy
		c.resetFlagAfterLogic()
		c.next()
		return nil

	case 0x2: // and
		*vx &= vy
		c.resetFlagAfterLogic()
		c.next()
		return nil

	case 0x3: // xor
		*vx ^= vy
		c.resetFlagAfterLogic()
		c.next()
		return nil

	case 0x4: // add Vx, Vy
		sum := uint16(*vx) + uint16(vy)
		*vx = byte(sum)
		if sum > 0xFF {
			flag = 1
		}

	case 0x5: // sub
		if *vx >= vy {
			flag = 1
		}
		*vx -= vy

	case 0x6: // shr
		source := c.shiftSource(*vx, vy)
		flag = source & 0x01
		*vx = source >> 1

	case 0x7: // subn
		if vy >= *vx {
			flag = 1
		}
		*vx = vy - *vx

	case 0xE: // shl
		source := c.shiftSource(*vx, vy)
		flag = source >> 7
		*vx = source << 1

	default:
		return ErrUnknownOpcode
	}

	c.v[flagRegister] = flag
	c.next()
	return nil
}

func (c *Chip8) shiftSource(vx, vy byte) byte {
	if c.opts.ShiftUsesVY {
		return vy
	}
	return vx
}

func (c *Chip8) resetFlagAfterLogic() {
	if c.opts.LogicResetsVF {
		c.v[flagRegister] = 0
	}
}

// draw handles DXYN, drawing an N rows high sprite from memory at I.
func (c *Chip8) draw(opcode uint16) error {
	height := int(n(opcode))
	if err := checkRange(c.i, height); err != nil {
		return err
	}
	sprite := c.memory[c.i : int(c.i)+height]

	c.v[flagRegister] = 0
	if c.display.drawSprite(sprite, c.v[x(opcode)], c.v[y(opcode)], c.opts.ClipSprites) {
		c.v[flagRegister] = 1
	}
	c.next()
	return nil
}

// executeKey handles the 0xE family: skp and sknp.
func (c *Chip8) executeKey(opcode uint16) error {
	pressed := c.Key(c.v[x(opcode)])

	switch nn(opcode) {
	case 0x9E: // skp Vx
		c.skipIf(pressed)
	case 0xA1: // sknp Vx
		c.skipIf(!pressed)
	default:
		return ErrUnknownOpcode
	}
	return nil
}

// executeMisc handles the 0xF family: timers, I register, BCD and register dump/load.
func (c *Chip8) executeMisc(opcode uint16) error {
	index := x(opcode)
	vx := &c.v[index]

	switch nn(opcode) {
	case 0x07: // ld Vx, DT
		*vx = c.delayTimer

	case 0x0A: // ld Vx, K
		key, ok := c.firstPressedKey()
		if !ok {
			return nil // repeat this instruction until a key is pressed
		}
		*vx = key

	case 0x15: // ld DT, Vx
		c.delayTimer = *vx

	case 0x18: // ld ST, Vx
		c.soundTimer = *vx

	case 0x1E: // add I, Vx
		c.i += uint16(*vx)

	case 0x29: // ld F, Vx
		c.i = FontAddress + uint16(*vx)*glyphSize

	case 0x33: // ld B, Vx
		if err := checkRange(c.i, 3); err != nil {
			return err
		}
		c.memory[c.i] = *vx / 100
		c.memory[c.i+1] = (*vx / 10) % 10
		c.memory[c.i+2] = *vx % 10

	case 0x55: // ld [I], Vx
		count := int(index) + 1
		if err := checkRange(c.i, count); err != nil {
			return err
		}
		copy(c.memory[c.i:], c.v[:count])
		c.advanceIndex(count)

	case 0x65: // ld Vx, [I]
		count := int(index) + 1
		if err := checkRange(c.i, count); err != nil {
			return err
		}
		copy(c.v[:count], c.memory[c.i:])
		c.advanceIndex(count)

	default:
		return ErrUnknownOpcode
	}

	c.next()
	return nil
}

func (c *Chip8) advanceIndex(count int) {
	if !c.opts.LoadStoreKeepsI {
		c.i += uint16(count)
	}
}

func (c *Chip8) firstPressedKey() (byte, bool) {
	for key, pressed := range c.keys {
		if pressed {
			return byte(key), true
		}
	}
	return 0, false
}
