package cpu

import (
	"context"
	"errors"
	"testing"

	"github.com/retroenv/chip8vm/internal/display"
	"github.com/retroenv/chip8vm/internal/keypad"
	"github.com/retroenv/chip8vm/internal/memory"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestNew(t *testing.T) {
	c, screen := newTestCPU(t, nil)

	state := c.State()
	assert.Equal(t, uint16(memory.ProgramStart), state.PC)
	assert.Equal(t, uint16(0), state.I)
	assert.Equal(t, [NumRegisters]byte{}, state.V)
	assert.Len(t, state.Stack, 0)
	assert.Equal(t, byte(0), state.DelayTimer)
	assert.Equal(t, byte(0), state.SoundTimer)
	assert.NoError(t, c.Halted())
	assert.True(t, screen.Snapshot().Empty())
	assert.Equal(t, byte(0xF0), c.ReadMemory(0x000))
}

func TestReset(t *testing.T) {
	c, screen := newTestCPU(t, nil,
		0x6005, // ld V0, $05
		0xF015, // ld DT, V0
		0xA000, // ld I, $000
		0xD005, // drw V0, V0, $5
		0x2200, // call $200
	)
	steps(t, c, 5)
	assert.False(t, screen.Snapshot().Empty())

	c.Reset()
	state := c.State()
	assert.Equal(t, uint16(memory.ProgramStart), state.PC)
	assert.Equal(t, byte(0), state.V[0])
	assert.Equal(t, uint16(0), state.I)
	assert.Len(t, state.Stack, 0)
	assert.Equal(t, byte(0), state.DelayTimer)
	assert.Equal(t, byte(0), c.ReadMemory(memory.ProgramStart))
	assert.Equal(t, byte(0xF0), c.ReadMemory(0x000))
	assert.True(t, screen.Snapshot().Empty())

	// idempotent
	c.Reset()
	assert.Equal(t, uint16(memory.ProgramStart), c.State().PC)
}

func TestLoadProgram(t *testing.T) {
	c, _ := newTestCPU(t, nil)

	image := []byte{0x00, 0xE0, 0x12, 0x00, 0xAB}
	assert.NoError(t, c.LoadProgram(image))
	for i, b := range image {
		assert.Equal(t, b, c.ReadMemory(uint16(memory.ProgramStart+i)))
	}
	assert.Equal(t, byte(0), c.ReadMemory(uint16(memory.ProgramStart+len(image))))

	err := c.LoadProgram(make([]byte, memory.MaxProgramSize+1))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, memory.ErrProgramTooLarge))
}

func TestClearAndJumpToSelf(t *testing.T) {
	c, screen := newTestCPU(t, nil,
		0x00E0, // cls
		0x1200, // jp $200
	)
	screen.Draw(0, 0, []byte{0xFF, 0xFF})

	steps(t, c, 1)
	assert.True(t, screen.Snapshot().Empty())

	for range 1000 {
		steps(t, c, 1)
		assert.True(t, screen.Snapshot().Empty())
	}
	assert.NoError(t, c.Halted())
}

func TestAddProgram(t *testing.T) {
	c, _ := newTestCPU(t, nil,
		0x6005, // ld V0, $05
		0x610A, // ld V1, $0A
		0x8014, // add V0, V1
	)

	steps(t, c, 1)
	assert.Equal(t, uint16(0x202), c.State().PC)
	steps(t, c, 1)
	assert.Equal(t, uint16(0x204), c.State().PC)
	steps(t, c, 1)

	state := c.State()
	assert.Equal(t, byte(15), state.V[0])
	assert.Equal(t, byte(0), state.V[0xF])
	assert.Equal(t, uint16(0x206), state.PC)
}

func TestDelayTimer(t *testing.T) {
	c, _ := newTestCPU(t, nil,
		0x6005, // ld V0, $05
		0xF015, // ld DT, V0
		0x1204, // jp $204
	)

	steps(t, c, 2)
	assert.Equal(t, byte(4), c.State().DelayTimer)

	for expected := 3; expected >= 0; expected-- {
		steps(t, c, 1)
		assert.Equal(t, byte(expected), c.State().DelayTimer)
	}
	for range 300 {
		steps(t, c, 1)
		assert.Equal(t, byte(0), c.State().DelayTimer)
	}
}

func TestTimersAreIndependent(t *testing.T) {
	c, _ := newTestCPU(t, nil,
		0x6002, // ld V0, $02
		0x6104, // ld V1, $04
		0xF015, // ld DT, V0
		0xF118, // ld ST, V1
		0x1208, // jp $208
	)

	steps(t, c, 4)
	state := c.State()
	assert.Equal(t, byte(0), state.DelayTimer)
	assert.Equal(t, byte(3), state.SoundTimer)

	steps(t, c, 5)
	state = c.State()
	assert.Equal(t, byte(0), state.DelayTimer)
	assert.Equal(t, byte(0), state.SoundTimer)
}

func TestStackDepth(t *testing.T) {
	words := make([]uint16, StackSize+1)
	for i := range words {
		// every instruction calls the next one
		words[i] = 0x2000 | uint16(memory.ProgramStart+2*(i+1))
	}
	c, _ := newTestCPU(t, nil, words...)

	steps(t, c, StackSize)
	assert.Len(t, c.State().Stack, StackSize)

	err := c.Step(context.Background())
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrStackOverflow))

	state := c.State()
	assert.Equal(t, uint16(memory.ProgramStart+2*StackSize), state.PC)
	assert.Len(t, state.Stack, StackSize)
}

func TestReturnWithEmptyStack(t *testing.T) {
	c, _ := newTestCPU(t, nil, 0x00EE)

	err := c.Step(context.Background())
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrStackUnderflow))
	assert.Equal(t, uint16(memory.ProgramStart), c.State().PC)
}

func TestCallAndReturn(t *testing.T) {
	c, _ := newTestCPU(t, nil,
		0x2206, // call $206
		0x6101, // ld V1, $01
		0x1204, // jp $204
		0x6007, // ld V0, $07
		0x00EE, // ret
	)

	steps(t, c, 1)
	state := c.State()
	assert.Equal(t, uint16(0x206), state.PC)
	assert.Len(t, state.Stack, 1)
	assert.Equal(t, uint16(0x202), state.Stack[0])

	steps(t, c, 3)
	state = c.State()
	assert.Equal(t, byte(7), state.V[0])
	assert.Equal(t, byte(1), state.V[1])
	assert.Equal(t, uint16(0x204), state.PC)
	assert.Len(t, state.Stack, 0)
}

func TestDecodeError(t *testing.T) {
	c, _ := newTestCPU(t, nil,
		0x6042, // ld V0, $42
		0x6033, // ld V0, $33
		0xE000, // invalid
	)
	c.delayTimer = 10

	steps(t, c, 2)
	before := c.State()

	err := c.Step(context.Background())
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownOpcode))
	assert.ErrorContains(t, err, "$E000")
	assert.ErrorContains(t, err, "$204")

	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, uint16(0x204), decodeErr.Address)
	assert.Equal(t, uint16(0xE000), decodeErr.Opcode)

	after := c.State()
	assert.Equal(t, before.PC, after.PC)
	assert.Equal(t, before.V, after.V)
	assert.Equal(t, before.DelayTimer, after.DelayTimer)

	// the CPU stays halted
	assert.True(t, errors.Is(c.Step(context.Background()), ErrUnknownOpcode))
	assert.Equal(t, before.PC, c.State().PC)
	assert.True(t, errors.Is(c.Halted(), ErrUnknownOpcode))

	c.Reset()
	assert.NoError(t, c.Halted())
}

func TestUnknownOpcodes(t *testing.T) {
	words := []uint16{
		0x0000, 0x0123, 0x00E1, 0x5121, 0x9128,
		0x8008, 0x800F, 0xE09F, 0xE0A2, 0xF000, 0xF0FF,
	}

	for _, word := range words {
		c, _ := newTestCPU(t, nil, word)
		err := c.Step(context.Background())
		assert.True(t, errors.Is(err, ErrUnknownOpcode), "word %04X", word)
	}
}

func TestWaitForKeyFreezesTimers(t *testing.T) {
	keys := newFakeKeys()
	c, _ := newTestCPU(t, keys,
		0x6005, // ld V0, $05
		0xF015, // ld DT, V0
		0xF30A, // ld V3, K
	)
	steps(t, c, 2)
	assert.Equal(t, byte(4), c.State().DelayTimer)

	calls := 0
	keys.await = func(context.Context) (keypad.Key, error) {
		calls++
		// the timers must not be touched while the instruction waits
		assert.Equal(t, byte(4), c.State().DelayTimer)
		return 0xB, nil
	}

	steps(t, c, 1)
	state := c.State()
	assert.Equal(t, 1, calls)
	assert.Equal(t, byte(0xB), state.V[3])
	assert.Equal(t, byte(3), state.DelayTimer)
	assert.Equal(t, uint16(0x206), state.PC)
}

func TestWaitForKeyWithKeypad(t *testing.T) {
	device := keypad.NewScript('m', '\r', 'e')
	c, _ := newTestCPU(t, keypad.New(device), 0xF50A)

	steps(t, c, 1)
	assert.Equal(t, byte(0x6), c.State().V[5])
}

func TestWaitForKeyEndOfInput(t *testing.T) {
	device := keypad.NewScript('1')
	device.Close()
	c, _ := newTestCPU(t, keypad.New(device), 0xF00A, 0xF10A)

	steps(t, c, 1)
	assert.Equal(t, byte(0x1), c.State().V[0])

	err := c.Step(context.Background())
	assert.True(t, errors.Is(err, keypad.ErrEndOfInput))
	assert.Equal(t, uint16(0x202), c.State().PC)
	assert.True(t, errors.Is(c.Halted(), keypad.ErrEndOfInput))
}

func TestWaitForKeyCancelled(t *testing.T) {
	keys := newFakeKeys()
	c, _ := newTestCPU(t, keys,
		0x6003, // ld V0, $03
		0xF018, // ld ST, V0
		0xF10A, // ld V1, K
	)
	steps(t, c, 2)
	before := c.State()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Step(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.NoError(t, c.Halted())

	after := c.State()
	assert.Equal(t, before.PC, after.PC)
	assert.Equal(t, before.SoundTimer, after.SoundTimer)
	assert.Equal(t, byte(0), after.V[1])

	keys.await = func(context.Context) (keypad.Key, error) {
		return 0x2, nil
	}
	steps(t, c, 1)
	assert.Equal(t, byte(0x2), c.State().V[1])
}

func TestTrace(t *testing.T) {
	screen := display.New(display.DefaultWidth, display.DefaultHeight)
	c := New(log.NewTestLogger(t), screen, newFakeKeys(), WithTrace(true))
	assert.NoError(t, c.LoadProgram(program(0x00E0, 0x1200)))

	steps(t, c, 4)
	assert.Equal(t, uint16(0x200), c.State().PC)
}
