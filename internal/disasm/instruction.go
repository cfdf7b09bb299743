// Package disasm translates CHIP-8 instruction words into assembly mnemonics.
// It is used for instruction tracing, for diagnostics of faulting
// instructions and to produce listings of program images.
package disasm

import (
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Lookup returns the instruction that the opcode word encodes.
func Lookup(word uint16) (*chip8.Instruction, bool) {
	firstNibble := (word & 0xF000) >> 12
	for _, op := range chip8.Opcodes[int(firstNibble)] {
		if op.Info.Mask&word == op.Info.Value {
			return op.Instruction, op.Instruction != nil
		}
	}
	return nil, false
}

// Format returns the assembly representation of an opcode word, for example
// "drw V0, V1, $5". Words that do not encode a known instruction are
// returned as a data directive.
func Format(word uint16) string {
	ins, ok := Lookup(word)
	if !ok {
		return fmt.Sprintf(".word $%04X", word)
	}
	if params := formatParams(ins, word); params != "" {
		return fmt.Sprintf("%s %s", ins.Name, params)
	}
	return ins.Name
}

// formatParams returns the formatted parameter string for an instruction.
func formatParams(ins *chip8.Instruction, word uint16) string {
	switch ins {
	case chip8.Cls, chip8.Ret:
		return ""
	case chip8.Jp:
		return formatJump(word)
	case chip8.Call:
		return fmt.Sprintf("$%03X", word&0x0FFF)
	case chip8.Se, chip8.Sne:
		return formatCompare(word)
	case chip8.Ld:
		return formatLoad(word)
	case chip8.Add:
		return formatAdd(word)
	case chip8.Or, chip8.And, chip8.Xor, chip8.Sub, chip8.Subn:
		return fmt.Sprintf("V%X, V%X", registerX(word), registerY(word))
	case chip8.Shr, chip8.Shl, chip8.Skp, chip8.Sknp:
		return fmt.Sprintf("V%X", registerX(word))
	case chip8.Rnd:
		return fmt.Sprintf("V%X, $%02X", registerX(word), word&0x00FF)
	case chip8.Drw:
		return fmt.Sprintf("V%X, V%X, $%X", registerX(word), registerY(word), word&0x000F)
	}
	return ""
}

// formatJump formats jump instructions (JP addr, JP V0+addr).
func formatJump(word uint16) string {
	if word&0xF000 == 0xB000 {
		return fmt.Sprintf("V0, $%03X", word&0x0FFF)
	}
	return fmt.Sprintf("$%03X", word&0x0FFF)
}

// formatCompare formats SE and SNE against a byte or a register.
func formatCompare(word uint16) string {
	x := registerX(word)
	switch word & 0xF000 {
	case 0x3000, 0x4000:
		return fmt.Sprintf("V%X, $%02X", x, word&0x00FF)
	default:
		return fmt.Sprintf("V%X, V%X", x, registerY(word))
	}
}

// formatLoad formats all LD variants.
func formatLoad(word uint16) string {
	x := registerX(word)
	switch word & 0xF000 {
	case 0x6000:
		return fmt.Sprintf("V%X, $%02X", x, word&0x00FF)
	case 0x8000:
		return fmt.Sprintf("V%X, V%X", x, registerY(word))
	case 0xA000:
		return fmt.Sprintf("I, $%03X", word&0x0FFF)
	}

	switch word & 0x00FF {
	case 0x07:
		return fmt.Sprintf("V%X, DT", x)
	case 0x0A:
		return fmt.Sprintf("V%X, K", x)
	case 0x15:
		return fmt.Sprintf("DT, V%X", x)
	case 0x18:
		return fmt.Sprintf("ST, V%X", x)
	case 0x29:
		return fmt.Sprintf("F, V%X", x)
	case 0x33:
		return fmt.Sprintf("B, V%X", x)
	case 0x55:
		return fmt.Sprintf("[I], V%X", x)
	case 0x65:
		return fmt.Sprintf("V%X, [I]", x)
	}
	return ""
}

// formatAdd formats ADD Vx, byte / ADD Vx, Vy / ADD I, Vx.
func formatAdd(word uint16) string {
	x := registerX(word)
	switch word & 0xF000 {
	case 0x7000:
		return fmt.Sprintf("V%X, $%02X", x, word&0x00FF)
	case 0x8000:
		return fmt.Sprintf("V%X, V%X", x, registerY(word))
	default:
		return fmt.Sprintf("I, V%X", x)
	}
}

func registerX(word uint16) uint16 {
	return (word & 0x0F00) >> 8
}

func registerY(word uint16) uint16 {
	return (word & 0x00F0) >> 4
}
