// Package cpu implements the CHIP-8 execution engine.
//
// The CPU owns the memory, the registers, the call stack and the timers. It
// draws on a screen and reads a keypad that are passed in by the caller.
// One call to Step executes exactly one instruction and then decrements
// the timers, a cycle is the atomic unit of progress: a failing cycle
// leaves the machine state untouched.
package cpu

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/retroenv/chip8vm/internal/disasm"
	"github.com/retroenv/chip8vm/internal/keypad"
	"github.com/retroenv/chip8vm/internal/memory"
	"github.com/retroenv/retrogolib/log"
)

// NumRegisters is the number of general purpose registers V0-VF.
const NumRegisters = 16

// flagRegister is the index of VF that receives carry, borrow, shift and collision flags.
const flagRegister = 0xF

// Screen is the framebuffer that the CPU draws on.
type Screen interface {
	// Clear unsets every pixel.
	Clear()
	// Draw XORs a sprite at the given position and returns whether a set pixel was unset.
	Draw(x, y byte, sprite []byte) bool
}

// Keys is the keypad that the CPU reads.
type Keys interface {
	// Poll returns whether the key is down without blocking.
	Poll(key keypad.Key) bool
	// AwaitAny blocks until any key is pressed.
	AwaitAny(ctx context.Context) (keypad.Key, error)
}

// CPU is the CHIP-8 execution engine.
type CPU struct {
	logger *log.Logger
	screen Screen
	keys   Keys

	memory *memory.Memory
	stack  stack

	v  [NumRegisters]byte // general purpose registers
	i  uint16             // index register
	pc uint16             // program counter

	delayTimer byte
	soundTimer byte

	halted error // fatal error that stopped the CPU

	quirks Quirks
	random *rand.Rand
	trace  bool
}

// State is a copy of the CPU registers.
type State struct {
	V          [NumRegisters]byte
	I          uint16
	PC         uint16
	Stack      []uint16 // return addresses, the last entry is the top
	DelayTimer byte
	SoundTimer byte
}

// New returns a CPU in reset state.
func New(logger *log.Logger, screen Screen, keys Keys, options ...Option) *CPU {
	c := &CPU{
		logger: logger,
		screen: screen,
		keys:   keys,
		memory: memory.New(),
	}
	for _, option := range options {
		option(c)
	}
	if c.random == nil {
		c.random = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	c.Reset()
	return c
}

// Reset restores the memory, registers, stack, timers and the screen to
// their initial state and clears a halt condition.
func (c *CPU) Reset() {
	c.memory.Reset()
	c.stack.reset()
	c.v = [NumRegisters]byte{}
	c.i = 0
	c.pc = memory.ProgramStart
	c.delayTimer = 0
	c.soundTimer = 0
	c.halted = nil
	c.screen.Clear()

	c.logger.Debug("CPU reset")
}

// LoadProgram copies a program image into memory at the program start address.
func (c *CPU) LoadProgram(image []byte) error {
	if err := c.memory.Load(image); err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	c.logger.Debug("Program loaded",
		log.Int("size", len(image)),
		log.Hex("address", uint16(memory.ProgramStart)))
	return nil
}

// Step executes one instruction and decrements the timers afterwards.
//
// The only instruction that blocks is the wait for a key press, the timers
// do not advance while it waits. If the context gets cancelled during the
// wait, the cycle is aborted without any effect and the context error is
// returned. Any other error is fatal, the CPU halts and keeps returning the
// error until it is reset.
func (c *CPU) Step(ctx context.Context) error {
	if c.halted != nil {
		return c.halted
	}

	pc := c.pc
	word := c.memory.ReadWord(pc)
	c.pc += 2

	if c.trace {
		c.logger.Debug("Executing instruction",
			log.Hex("address", pc),
			log.Hex("opcode", word),
			log.String("code", disasm.Format(word)))
	}

	if err := c.execute(ctx, decode(pc, word)); err != nil {
		c.pc = pc
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		c.halted = err
		return err
	}

	c.decrementTimers()
	return nil
}

// Halted returns the fatal error that stopped the CPU or nil.
func (c *CPU) Halted() error {
	return c.halted
}

// State returns a copy of the registers.
func (c *CPU) State() State {
	return State{
		V:          c.v,
		I:          c.i,
		PC:         c.pc,
		Stack:      c.stack.values(),
		DelayTimer: c.delayTimer,
		SoundTimer: c.soundTimer,
	}
}

// ReadMemory returns the byte at the given address.
func (c *CPU) ReadMemory(address uint16) byte {
	return c.memory.Byte(address)
}

func (c *CPU) decrementTimers() {
	if c.delayTimer > 0 {
		c.delayTimer--
	}
	if c.soundTimer > 0 {
		c.soundTimer--
	}
}
