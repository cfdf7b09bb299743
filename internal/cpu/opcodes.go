package cpu

import (
	"context"
	"fmt"

	"github.com/retroenv/chip8vm/internal/keypad"
	"github.com/retroenv/chip8vm/internal/memory"
)

// instruction is a decoded instruction word.
type instruction struct {
	address uint16 // address the word was fetched from
	word    uint16

	x   byte   // second nibble, register index
	y   byte   // third nibble, register index
	n   byte   // fourth nibble
	nn  byte   // low byte
	nnn uint16 // low 12 bits, address
}

func decode(address, word uint16) instruction {
	return instruction{
		address: address,
		word:    word,
		x:       byte(word>>8) & 0x0F,
		y:       byte(word>>4) & 0x0F,
		n:       byte(word) & 0x0F,
		nn:      byte(word),
		nnn:     word & 0x0FFF,
	}
}

func (ins instruction) unknown() error {
	return &DecodeError{Address: ins.address, Opcode: ins.word}
}

// handler executes an instruction of an opcode family. The program counter
// already points to the next instruction.
type handler func(c *CPU, ctx context.Context, ins instruction) error

// families maps the leading nibble of an instruction word to its handler.
var families = [16]handler{
	0x0: (*CPU).system,
	0x1: (*CPU).jump,
	0x2: (*CPU).call,
	0x3: (*CPU).skipEqualByte,
	0x4: (*CPU).skipNotEqualByte,
	0x5: (*CPU).skipEqualRegister,
	0x6: (*CPU).loadByte,
	0x7: (*CPU).addByte,
	0x8: (*CPU).arithmetic,
	0x9: (*CPU).skipNotEqualRegister,
	0xA: (*CPU).loadIndex,
	0xB: (*CPU).jumpIndexed,
	0xC: (*CPU).randomByte,
	0xD: (*CPU).draw,
	0xE: (*CPU).skipKey,
	0xF: (*CPU).misc,
}

func (c *CPU) execute(ctx context.Context, ins instruction) error {
	return families[ins.word>>12](c, ctx, ins)
}

func (c *CPU) skip() {
	c.pc += 2
}

// 00E0 cls, 00EE ret.
func (c *CPU) system(_ context.Context, ins instruction) error {
	switch ins.word {
	case 0x00E0:
		c.screen.Clear()
		return nil

	case 0x00EE:
		address, err := c.stack.pop()
		if err != nil {
			return fmt.Errorf("return at address $%03X: %w", ins.address, err)
		}
		c.pc = address
		return nil

	default:
		return ins.unknown()
	}
}

// 1NNN jp NNN.
func (c *CPU) jump(_ context.Context, ins instruction) error {
	c.pc = ins.nnn
	return nil
}

// 2NNN call NNN.
func (c *CPU) call(_ context.Context, ins instruction) error {
	if err := c.stack.push(c.pc); err != nil {
		return fmt.Errorf("call at address $%03X: %w", ins.address, err)
	}
	c.pc = ins.nnn
	return nil
}

// 3XNN se VX, NN.
func (c *CPU) skipEqualByte(_ context.Context, ins instruction) error {
	if c.v[ins.x] == ins.nn {
		c.skip()
	}
	return nil
}

// 4XNN sne VX, NN.
func (c *CPU) skipNotEqualByte(_ context.Context, ins instruction) error {
	if c.v[ins.x] != ins.nn {
		c.skip()
	}
	return nil
}

// 5XY0 se VX, VY.
func (c *CPU) skipEqualRegister(_ context.Context, ins instruction) error {
	if ins.n != 0 {
		return ins.unknown()
	}
	if c.v[ins.x] == c.v[ins.y] {
		c.skip()
	}
	return nil
}

// 9XY0 sne VX, VY.
func (c *CPU) skipNotEqualRegister(_ context.Context, ins instruction) error {
	if ins.n != 0 {
		return ins.unknown()
	}
	if c.v[ins.x] != c.v[ins.y] {
		c.skip()
	}
	return nil
}

// 6XNN ld VX, NN.
func (c *CPU) loadByte(_ context.Context, ins instruction) error {
	c.v[ins.x] = ins.nn
	return nil
}

// 7XNN add VX, NN. VF is not affected.
func (c *CPU) addByte(_ context.Context, ins instruction) error {
	c.v[ins.x] += ins.nn
	return nil
}

// 8XYN register to register operations. The flag is written after the
// result so that VF ends up holding the flag when it is the destination.
func (c *CPU) arithmetic(_ context.Context, ins instruction) error {
	vx, vy := c.v[ins.x], c.v[ins.y]

	switch ins.n {
	case 0x0:
		c.v[ins.x] = vy

	case 0x1:
		c.v[ins.x] = vx | vy
		c.resetFlagQuirk()

	case 0x2:
		c.v[ins.x] = vx & vy
		c.resetFlagQuirk()

	case 0x3:
		c.v[ins.x] = vx ^ vy
		c.resetFlagQuirk()

	case 0x4:
		sum := uint16(vx) + uint16(vy)
		c.v[ins.x] = byte(sum)
		c.setFlag(sum > 0xFF)

	case 0x5:
		c.v[ins.x] = vx - vy
		c.setFlag(vx >= vy)

	case 0x6:
		src := c.shiftSource(vx, vy)
		c.v[ins.x] = src >> 1
		c.setFlag(src&0x01 != 0)

	case 0x7:
		c.v[ins.x] = vy - vx
		c.setFlag(vy >= vx)

	case 0xE:
		src := c.shiftSource(vx, vy)
		c.v[ins.x] = src << 1
		c.setFlag(src&0x80 != 0)

	default:
		return ins.unknown()
	}
	return nil
}

func (c *CPU) setFlag(set bool) {
	if set {
		c.v[flagRegister] = 1
	} else {
		c.v[flagRegister] = 0
	}
}

func (c *CPU) resetFlagQuirk() {
	if c.quirks.LogicResetsVF {
		c.v[flagRegister] = 0
	}
}

func (c *CPU) shiftSource(vx, vy byte) byte {
	if c.quirks.ShiftUsesVY {
		return vy
	}
	return vx
}

// ANNN ld I, NNN.
func (c *CPU) loadIndex(_ context.Context, ins instruction) error {
	c.i = ins.nnn
	return nil
}

// BNNN jp V0, NNN.
func (c *CPU) jumpIndexed(_ context.Context, ins instruction) error {
	offset := c.v[0]
	if c.quirks.JumpUsesVX {
		offset = c.v[ins.x]
	}
	c.pc = (ins.nnn + uint16(offset)) & memory.AddressMask
	return nil
}

// CXNN rnd VX, NN.
func (c *CPU) randomByte(_ context.Context, ins instruction) error {
	c.v[ins.x] = byte(c.random.UintN(256)) & ins.nn
	return nil
}

// DXYN drw VX, VY, N.
func (c *CPU) draw(_ context.Context, ins instruction) error {
	sprite := c.memory.Slice(c.i, int(ins.n))
	collided := c.screen.Draw(c.v[ins.x], c.v[ins.y], sprite)
	c.setFlag(collided)
	return nil
}

// EX9E skp VX, EXA1 sknp VX.
func (c *CPU) skipKey(_ context.Context, ins instruction) error {
	key := keypad.Key(c.v[ins.x] & 0x0F)

	switch ins.nn {
	case 0x9E:
		if c.keys.Poll(key) {
			c.skip()
		}
	case 0xA1:
		if !c.keys.Poll(key) {
			c.skip()
		}
	default:
		return ins.unknown()
	}
	return nil
}

// FXNN timer, keypad and memory operations.
func (c *CPU) misc(ctx context.Context, ins instruction) error {
	switch ins.nn {
	case 0x07:
		c.v[ins.x] = c.delayTimer

	case 0x0A:
		key, err := c.keys.AwaitAny(ctx)
		if err != nil {
			return err
		}
		c.v[ins.x] = byte(key)

	case 0x15:
		c.delayTimer = c.v[ins.x]

	case 0x18:
		c.soundTimer = c.v[ins.x]

	case 0x1E:
		c.i += uint16(c.v[ins.x])

	case 0x29:
		c.i = memory.GlyphAddress(c.v[ins.x])

	case 0x33:
		value := c.v[ins.x]
		c.memory.SetByte(c.i, value/100)
		c.memory.SetByte(c.i+1, value/10%10)
		c.memory.SetByte(c.i+2, value%10)

	case 0x55:
		for reg := range ins.x + 1 {
			c.memory.SetByte(c.i+uint16(reg), c.v[reg])
		}
		c.advanceIndexQuirk(ins.x)

	case 0x65:
		for reg := range ins.x + 1 {
			c.v[reg] = c.memory.Byte(c.i + uint16(reg))
		}
		c.advanceIndexQuirk(ins.x)

	default:
		return ins.unknown()
	}
	return nil
}

func (c *CPU) advanceIndexQuirk(x byte) {
	if c.quirks.LoadStoreIncrementsI {
		c.i += uint16(x) + 1
	}
}
