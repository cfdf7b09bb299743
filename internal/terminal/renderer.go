package terminal

import (
	"bufio"
	"fmt"
	"io"

	"github.com/retroenv/chip8vm/internal/display"
)

const cursorHome = "\x1b[H"

// Renderer draws frames using half block characters, every terminal cell
// shows two vertically adjacent pixels.
type Renderer struct {
	w *bufio.Writer
}

// NewRenderer returns a renderer that writes to w.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{
		w: bufio.NewWriter(w),
	}
}

// Render implements runner.Renderer.
func (r *Renderer) Render(frame display.Frame) error {
	if _, err := r.w.WriteString(cursorHome); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}

	for y := 0; y < frame.Height; y += 2 {
		for x := range frame.Width {
			if _, err := r.w.WriteRune(cell(frame.At(x, y), frame.At(x, y+1))); err != nil {
				return fmt.Errorf("writing frame: %w", err)
			}
		}
		// raw mode disables the newline translation
		if _, err := r.w.WriteString("\r\n"); err != nil {
			return fmt.Errorf("writing frame: %w", err)
		}
	}

	if err := r.w.Flush(); err != nil {
		return fmt.Errorf("flushing frame: %w", err)
	}
	return nil
}

func cell(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top:
		return '▀'
	case bottom:
		return '▄'
	default:
		return ' '
	}
}
