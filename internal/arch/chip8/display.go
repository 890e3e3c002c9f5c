package chip8

// Display dimensions in pixels.
const (
	DisplayWidth  = 64
	DisplayHeight = 32
	DisplaySize   = DisplayWidth * DisplayHeight
)

// spriteWidth is the fixed width of a sprite row in pixels.
const spriteWidth = 8

// Display is the monochrome 64x32 display buffer, stored row-major as one
// byte per cell with the cell index x + y*DisplayWidth.
type Display struct {
	cells  [DisplaySize]byte
	redraw bool
}

// Frame is an immutable copy of the display buffer.
type Frame [DisplaySize]byte

// Pixel returns whether the pixel at the given coordinates is set.
func (f Frame) Pixel(x, y int) bool {
	return f[x+y*DisplayWidth] != 0
}

// Pixel returns whether the pixel at the given coordinates is set.
// Coordinates wrap around the display edges.
func (d *Display) Pixel(x, y int) bool {
	x = wrap(x, DisplayWidth)
	y = wrap(y, DisplayHeight)
	return d.cells[x+y*DisplayWidth] != 0
}

// wrap maps the coordinate into [0, size), negative values included.
func wrap(value, size int) int {
	return (value%size + size) % size
}

// Cells returns a copy of all display cells.
func (d *Display) Cells() []byte {
	cells := make([]byte, DisplaySize)
	copy(cells, d.cells[:])
	return cells
}

// Frame returns an immutable copy of the display buffer.
func (d *Display) Frame() Frame {
	return d.cells
}

// NeedsRedraw returns whether the buffer changed since the last ClearRedraw.
func (d *Display) NeedsRedraw() bool {
	return d.redraw
}

// ClearRedraw resets the redraw flag, the consumer calls it after it rendered the buffer.
func (d *Display) ClearRedraw() {
	d.redraw = false
}

// Clear resets all cells and requests a redraw.
func (d *Display) Clear() {
	d.cells = [DisplaySize]byte{}
	d.redraw = true
}

// drawSprite XORs the sprite rows onto the display with its top left corner at
// the given origin. The origin is wrapped into the display. Pixels that cross
// the right or bottom edge wrap around, unless clip is set in which case they
// are dropped. It returns whether any set pixel was toggled off.
func (d *Display) drawSprite(sprite []byte, originX, originY byte, clip bool) bool {
	ox := int(originX) % DisplayWidth
	oy := int(originY) % DisplayHeight
	collision := false

	for row, data := range sprite {
		py := oy + row
		if py >= DisplayHeight {
			if clip {
				break
			}
			py %= DisplayHeight
		}

		for col := range spriteWidth {
			if data&(0x80>>col) == 0 {
				continue
			}

			px := ox + col
			if px >= DisplayWidth {
				if clip {
					break
				}
				px %= DisplayWidth
			}

			index := px + py*DisplayWidth
			if d.cells[index] != 0 {
				collision = true
			}
			d.cells[index] ^= 1
		}
	}

	d.redraw = true
	return collision
}
