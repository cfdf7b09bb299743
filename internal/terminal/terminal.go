// Package terminal implements the interactive terminal host: raw mode
// input handling and framebuffer output.
package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

const (
	enterAltScreen = "\x1b[?1049h\x1b[2J"
	leaveAltScreen = "\x1b[?1049l"
	hideCursor     = "\x1b[?25l"
	showCursor     = "\x1b[?25h"
	enableMouse    = "\x1b[?1000;1006h" // button events in SGR encoding
	disableMouse   = "\x1b[?1000;1006l"
)

// ErrNotTerminal is returned when the input is not an interactive terminal.
var ErrNotTerminal = errors.New("input is not a terminal")

// Terminal is an interactive terminal that is switched to raw mode for the
// duration of a session.
type Terminal struct {
	in    *os.File
	out   io.Writer
	fd    int
	state *term.State // set while the session is active
}

// New returns the terminal of in, output is written to out.
func New(in *os.File, out io.Writer) (*Terminal, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}
	return &Terminal{
		in:  in,
		out: out,
		fd:  fd,
	}, nil
}

// Input returns the raw input stream.
func (t *Terminal) Input() io.Reader {
	return t.in
}

// Size returns the terminal size in cells.
func (t *Terminal) Size() (width, height int, err error) {
	width, height, err = term.GetSize(t.fd)
	if err != nil {
		return 0, 0, fmt.Errorf("getting terminal size: %w", err)
	}
	return width, height, nil
}

// Fits returns whether a framebuffer of the given pixel size can be shown
// without clipping.
func (t *Terminal) Fits(width, height int) (bool, error) {
	columns, rows, err := t.Size()
	if err != nil {
		return false, err
	}
	return cellsFit(columns, rows, width, height), nil
}

// cellsFit returns whether the pixels fit, every cell shows two pixel rows.
func cellsFit(columns, rows, width, height int) bool {
	return columns >= width && rows >= (height+1)/2
}

// Start switches the terminal to raw mode, enters the alternate screen and
// enables mouse reporting. Close must be called to restore the terminal.
func (t *Terminal) Start() error {
	state, err := term.MakeRaw(t.fd)
	if err != nil {
		return fmt.Errorf("setting raw mode: %w", err)
	}

	if _, err := io.WriteString(t.out, enterAltScreen+hideCursor+enableMouse); err != nil {
		_ = term.Restore(t.fd, state)
		return fmt.Errorf("preparing screen: %w", err)
	}
	t.state = state
	return nil
}

// Close restores the terminal state. It does nothing if the session was
// not started.
func (t *Terminal) Close() error {
	if t.state == nil {
		return nil
	}
	state := t.state
	t.state = nil

	_, writeErr := io.WriteString(t.out, disableMouse+showCursor+leaveAltScreen)
	if err := term.Restore(t.fd, state); err != nil {
		return fmt.Errorf("restoring terminal: %w", err)
	}
	if writeErr != nil {
		return fmt.Errorf("restoring screen: %w", writeErr)
	}
	return nil
}
