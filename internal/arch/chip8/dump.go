package chip8

import (
	"bufio"
	"fmt"
	"io"
)

// dumpBytesPerLine is the number of bytes written per line of a memory dump.
const dumpBytesPerLine = 16

// DumpMemory writes the complete memory as lowercase hex bytes, 16 bytes per
// line separated by spaces. Lines are separated by a newline, the last line
// is not terminated.
func (c *Chip8) DumpMemory(w io.Writer) error {
	buf := bufio.NewWriter(w)

	for i, b := range c.memory {
		switch {
		case i == 0:
		case i%dumpBytesPerLine == 0:
			if err := buf.WriteByte('\n'); err != nil {
				return fmt.Errorf("writing line break: %w", err)
			}
		default:
			if err := buf.WriteByte(' '); err != nil {
				return fmt.Errorf("writing separator: %w", err)
			}
		}

		if _, err := fmt.Fprintf(buf, "%02x", b); err != nil {
			return fmt.Errorf("writing byte at $%04X: %w", i, err)
		}
	}

	if err := buf.Flush(); err != nil {
		return fmt.Errorf("flushing memory dump: %w", err)
	}
	return nil
}
