// Package loader handles program image loading operations.
package loader

import (
	"fmt"
	"os"

	"github.com/retroenv/chip8vm/internal/memory"
)

// Loader handles loading program images from disk.
type Loader struct{}

// New creates a new program image loader.
func New() *Loader {
	return &Loader{}
}

// Load reads a raw program image. Images have no header, the size is the
// only property that can be validated before execution.
func (l *Loader) Load(path string) ([]byte, error) {
	image, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	if len(image) > memory.MaxProgramSize {
		return nil, fmt.Errorf("file %s: %w: %d bytes, maximum is %d",
			path, memory.ErrProgramTooLarge, len(image), memory.MaxProgramSize)
	}
	return image, nil
}
