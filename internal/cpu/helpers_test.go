package cpu

import (
	"context"
	"testing"

	"github.com/retroenv/chip8vm/internal/display"
	"github.com/retroenv/chip8vm/internal/keypad"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// fakeKeys is a keypad with directly controllable key states.
type fakeKeys struct {
	down  map[keypad.Key]bool
	await func(ctx context.Context) (keypad.Key, error)
}

func newFakeKeys() *fakeKeys {
	return &fakeKeys{down: make(map[keypad.Key]bool)}
}

func (f *fakeKeys) Poll(key keypad.Key) bool {
	return f.down[key]
}

func (f *fakeKeys) AwaitAny(ctx context.Context) (keypad.Key, error) {
	if f.await == nil {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	return f.await(ctx)
}

// program converts instruction words to a big-endian program image.
func program(words ...uint16) []byte {
	image := make([]byte, 0, 2*len(words))
	for _, w := range words {
		image = append(image, byte(w>>8), byte(w))
	}
	return image
}

func newTestCPU(t *testing.T, keys Keys, words ...uint16) (*CPU, *display.Display) {
	t.Helper()

	if keys == nil {
		keys = newFakeKeys()
	}
	screen := display.New(display.DefaultWidth, display.DefaultHeight)
	c := New(log.NewTestLogger(t), screen, keys, WithSeed(1))
	assert.NoError(t, c.LoadProgram(program(words...)))
	return c, screen
}

// steps executes n cycles and fails the test on the first error.
func steps(t *testing.T, c *CPU, n int) {
	t.Helper()

	for range n {
		assert.NoError(t, c.Step(context.Background()))
	}
}
