package display

import (
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

// glyphZero is the font sprite of the digit 0.
var glyphZero = []byte{0xF0, 0x90, 0x90, 0x90, 0xF0}

func TestNew(t *testing.T) {
	d := New(0, 0)
	assert.Equal(t, DefaultWidth, d.Width())
	assert.Equal(t, DefaultHeight, d.Height())
	assert.True(t, d.Snapshot().Empty())

	d = New(128, 64)
	assert.Equal(t, 128, d.Width())
	assert.Equal(t, 64, d.Height())
}

func TestDrawNoCollision(t *testing.T) {
	d := New(DefaultWidth, DefaultHeight)

	collided := d.Draw(10, 5, glyphZero)
	assert.False(t, collided)

	assert.True(t, d.Pixel(10, 5))
	assert.True(t, d.Pixel(13, 5))
	assert.False(t, d.Pixel(14, 5))
	assert.True(t, d.Pixel(10, 6))
	assert.False(t, d.Pixel(11, 6))
	assert.True(t, d.Pixel(13, 9))
}

func TestDrawTwiceRestoresState(t *testing.T) {
	d := New(DefaultWidth, DefaultHeight)
	d.Draw(0, 0, []byte{0xAA})
	before := d.Snapshot()

	first := d.Draw(3, 2, glyphZero)
	second := d.Draw(3, 2, glyphZero)
	assert.False(t, first)
	assert.True(t, second)

	after := d.Snapshot()
	assert.Equal(t, before.String(), after.String())
}

func TestDrawCollisionOnOverlap(t *testing.T) {
	d := New(DefaultWidth, DefaultHeight)
	d.Draw(20, 10, glyphZero)

	assert.True(t, d.Draw(20, 10, glyphZero))
	assert.True(t, d.Snapshot().Empty())
}

func TestDrawCollisionFollowsPriorState(t *testing.T) {
	d := New(DefaultWidth, DefaultHeight)
	d.Draw(0, 0, []byte{0xFF})

	// only the first draw hits a set pixel, the second one sets it again
	first := d.Draw(7, 0, []byte{0x80})
	second := d.Draw(7, 0, []byte{0x80})
	assert.True(t, first)
	assert.False(t, second)
	assert.True(t, d.Pixel(7, 0))
}

func TestDrawWrap(t *testing.T) {
	d := New(DefaultWidth, DefaultHeight)

	d.Draw(62, 31, []byte{0xF0, 0xF0})

	assert.True(t, d.Pixel(62, 31))
	assert.True(t, d.Pixel(63, 31))
	assert.True(t, d.Pixel(0, 31))
	assert.True(t, d.Pixel(1, 31))
	assert.True(t, d.Pixel(62, 0))
	assert.True(t, d.Pixel(1, 0))
	assert.False(t, d.Pixel(2, 0))
}

func TestDrawCoordinatesWrap(t *testing.T) {
	d := New(DefaultWidth, DefaultHeight)
	d.Draw(64+5, 32+3, []byte{0x80})
	assert.True(t, d.Pixel(5, 3))
}

func TestDrawEmptySprite(t *testing.T) {
	d := New(DefaultWidth, DefaultHeight)
	version := d.Version()

	assert.False(t, d.Draw(0, 0, nil))
	assert.True(t, d.Snapshot().Empty())
	assert.True(t, d.Version() > version)
}

func TestClear(t *testing.T) {
	d := New(DefaultWidth, DefaultHeight)
	d.Draw(0, 0, glyphZero)
	d.SetOverlay(40, 20, true)

	d.Clear()
	assert.True(t, d.Snapshot().Empty())
	assert.False(t, d.Draw(0, 0, glyphZero))
}

func TestOverlay(t *testing.T) {
	d := New(DefaultWidth, DefaultHeight)
	d.Draw(0, 0, []byte{0x80})

	d.SetOverlay(0, 0, false)
	d.SetOverlay(1, 0, true)

	frame := d.Snapshot()
	assert.False(t, frame.At(0, 0))
	assert.True(t, frame.At(1, 0))

	// collisions only see the logical pixels
	assert.True(t, d.Draw(0, 0, []byte{0x80}))
	assert.False(t, d.Draw(1, 0, []byte{0x80}))
	assert.True(t, d.Pixel(1, 0))

	d.ClearOverlay()
	frame = d.Snapshot()
	assert.False(t, frame.At(0, 0))
	assert.True(t, frame.At(1, 0))
}

func TestSnapshotIsCopy(t *testing.T) {
	d := New(DefaultWidth, DefaultHeight)
	frame := d.Snapshot()

	d.Draw(0, 0, []byte{0x80})
	assert.False(t, frame.At(0, 0))
	assert.True(t, d.Snapshot().At(0, 0))
}

func TestFrameString(t *testing.T) {
	d := New(4, 2)
	d.Draw(0, 0, []byte{0x90, 0x60})

	lines := strings.Split(strings.TrimSuffix(d.Snapshot().String(), "\n"), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, "#..#", lines[0])
	assert.Equal(t, ".##.", lines[1])
}

func TestFrameAtOutOfRange(t *testing.T) {
	frame := New(DefaultWidth, DefaultHeight).Snapshot()
	assert.False(t, frame.At(-1, 0))
	assert.False(t, frame.At(0, DefaultHeight))
}
