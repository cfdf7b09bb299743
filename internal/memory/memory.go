// Package memory implements the 4KB CHIP-8 address space including the
// built-in hexadecimal font.
package memory

import (
	"errors"
	"fmt"
)

// CHIP-8 memory layout constants.
//
//	0x000-0x04F: font glyphs 0-F, 5 bytes each
//	0x050-0x1FF: unused interpreter area
//	0x200-0xFFF: program space
const (
	// Size is the total size of the address space in bytes.
	Size = 0x1000

	// AddressMask limits addresses to 12 bits.
	AddressMask = Size - 1

	// ProgramStart is the address where program images are loaded.
	ProgramStart = 0x200

	// MaxProgramSize is the largest program image that fits after ProgramStart.
	MaxProgramSize = Size - ProgramStart

	// FontStart is the address of the first font glyph.
	FontStart = 0x000

	// GlyphSize is the number of bytes of one font glyph.
	GlyphSize = 5
)

// ErrProgramTooLarge is returned when a program image does not fit into memory.
var ErrProgramTooLarge = errors.New("program too large")

// font contains the sprites for the hexadecimal digits 0-F.
var font = [16 * GlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// FontSize is the size of the font table in bytes.
const FontSize = len(font)

// Memory is the CHIP-8 address space.
type Memory struct {
	data [Size]byte
}

// New returns a memory with the font loaded and everything else zeroed.
func New() *Memory {
	m := &Memory{}
	m.Reset()
	return m
}

// Reset zeroes the memory and reloads the font.
func (m *Memory) Reset() {
	m.data = [Size]byte{}
	copy(m.data[FontStart:], font[:])
}

// Load copies a program image into memory starting at ProgramStart.
func (m *Memory) Load(image []byte) error {
	if len(image) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, maximum is %d", ErrProgramTooLarge, len(image), MaxProgramSize)
	}
	copy(m.data[ProgramStart:], image)
	return nil
}

// Byte reads a byte. The address is masked to 12 bits.
func (m *Memory) Byte(address uint16) byte {
	return m.data[address&AddressMask]
}

// SetByte writes a byte. The address is masked to 12 bits.
func (m *Memory) SetByte(address uint16, value byte) {
	m.data[address&AddressMask] = value
}

// ReadWord reads a big-endian 16-bit word, the byte at address forms the high byte.
func (m *Memory) ReadWord(address uint16) uint16 {
	high := uint16(m.Byte(address))
	low := uint16(m.Byte(address + 1))
	return high<<8 | low
}

// Slice returns a copy of length bytes starting at address, wrapping at the end
// of the address space.
func (m *Memory) Slice(address uint16, length int) []byte {
	b := make([]byte, length)
	for i := range b {
		b[i] = m.Byte(address + uint16(i))
	}
	return b
}

// GlyphAddress returns the address of the font sprite for the low nibble of digit.
func GlyphAddress(digit byte) uint16 {
	return FontStart + uint16(digit&0x0F)*GlyphSize
}
