// Package loader handles ROM file loading operations.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/arch/chip8"
	"github.com/retroenv/retrochip8/internal/options"
)

// ErrEmptyImage is returned for ROM files without any content.
var ErrEmptyImage = errors.New("empty program image")

// Loader handles loading ROM files from disk.
type Loader struct{}

// New creates a new ROM loader.
func New() *Loader {
	return &Loader{}
}

// Load reads the ROM file that is set as input in the options.
// CHIP-8 ROMs are raw images without a header, the whole file content
// is returned after validating that it fits into the program memory.
func (l *Loader) Load(opts options.Program) ([]byte, error) {
	file, err := os.Open(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", opts.Input, err)
	}
	defer func() { _ = file.Close() }()

	image, err := l.LoadFrom(file)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", opts.Input, err)
	}
	return image, nil
}

// LoadFrom reads a ROM image from the reader and validates its size.
func (l *Loader) LoadFrom(reader io.Reader) ([]byte, error) {
	// read one byte more than allowed to detect oversized images
	image, err := io.ReadAll(io.LimitReader(reader, chip8.MaxProgramSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading program image: %w", err)
	}

	switch {
	case len(image) == 0:
		return nil, ErrEmptyImage
	case len(image) > chip8.MaxProgramSize:
		return nil, fmt.Errorf("%w: more than %d bytes", chip8.ErrImageTooLarge, chip8.MaxProgramSize)
	}
	return image, nil
}
