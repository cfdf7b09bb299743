// Package display implements the monochrome CHIP-8 framebuffer.
package display

import "strings"

// Default framebuffer dimensions of the CHIP-8 architecture.
const (
	DefaultWidth  = 64
	DefaultHeight = 32
)

// overlay states of a cell.
const (
	overlayNone byte = iota
	overlaySet
	overlayUnset
)

// Display is a width x height grid of pixels that sprites are XOR-drawn on.
//
// Besides the logical pixels that the CPU draws on, the display keeps a debug
// overlay that tooling can paint on. The overlay is only visible in snapshots
// and never influences collision detection.
type Display struct {
	width  int
	height int

	pixels  []bool
	overlay []byte

	version uint64
}

// New returns a cleared display of the given dimensions. Non positive
// dimensions fall back to the defaults.
func New(width, height int) *Display {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Display{
		width:   width,
		height:  height,
		pixels:  make([]bool, width*height),
		overlay: make([]byte, width*height),
	}
}

// Width returns the width in pixels.
func (d *Display) Width() int {
	return d.width
}

// Height returns the height in pixels.
func (d *Display) Height() int {
	return d.height
}

// Version returns a counter that changes with every mutation of the display.
func (d *Display) Version() uint64 {
	return d.version
}

// Clear unsets every pixel and drops the overlay.
func (d *Display) Clear() {
	clear(d.pixels)
	clear(d.overlay)
	d.version++
}

// Draw XORs the sprite onto the display with its top left corner at x, y.
// Every sprite byte is one row, the most significant bit is the leftmost pixel.
// Coordinates wrap around the display edges. It returns whether any pixel
// changed from set to unset.
func (d *Display) Draw(x, y byte, sprite []byte) bool {
	var collided bool

	for row, b := range sprite {
		py := (int(y) + row) % d.height
		for col := range 8 {
			if b&(0x80>>col) == 0 {
				continue
			}

			px := (int(x) + col) % d.width
			index := py*d.width + px
			if d.pixels[index] {
				collided = true
			}
			d.pixels[index] = !d.pixels[index]
		}
	}

	d.version++
	return collided
}

// Pixel returns the logical state of a pixel as drawn by sprites.
// Coordinates wrap around the display edges.
func (d *Display) Pixel(x, y int) bool {
	return d.pixels[d.index(x, y)]
}

// SetOverlay paints a debug overlay cell. The overlay cell overrides the
// logical pixel in snapshots until the overlay or the display is cleared.
func (d *Display) SetOverlay(x, y int, on bool) {
	state := overlayUnset
	if on {
		state = overlaySet
	}
	d.overlay[d.index(x, y)] = state
	d.version++
}

// ClearOverlay removes all debug overlay cells.
func (d *Display) ClearOverlay() {
	clear(d.overlay)
	d.version++
}

// Snapshot returns a copy of the visible display content.
func (d *Display) Snapshot() Frame {
	f := Frame{
		Width:  d.width,
		Height: d.height,
		Pixels: make([]bool, len(d.pixels)),
	}

	for i, on := range d.pixels {
		switch d.overlay[i] {
		case overlaySet:
			on = true
		case overlayUnset:
			on = false
		}
		f.Pixels[i] = on
	}
	return f
}

func (d *Display) index(x, y int) int {
	x %= d.width
	if x < 0 {
		x += d.width
	}
	y %= d.height
	if y < 0 {
		y += d.height
	}
	return y*d.width + x
}

// Frame is a read-only copy of the display content in row-major order.
type Frame struct {
	Width  int
	Height int
	Pixels []bool
}

// At returns the pixel at x, y. Out of range coordinates return false.
func (f Frame) At(x, y int) bool {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return false
	}
	return f.Pixels[y*f.Width+x]
}

// Empty returns whether no pixel of the frame is set.
func (f Frame) Empty() bool {
	for _, on := range f.Pixels {
		if on {
			return false
		}
	}
	return true
}

// String renders the frame as text lines using '#' for set pixels.
func (f Frame) String() string {
	var buf strings.Builder
	buf.Grow((f.Width + 1) * f.Height)

	for y := range f.Height {
		for x := range f.Width {
			if f.At(x, y) {
				buf.WriteByte('#')
			} else {
				buf.WriteByte('.')
			}
		}
		buf.WriteByte('\n')
	}
	return buf.String()
}
