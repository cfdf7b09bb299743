package terminal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"
	"unicode"
)

const (
	keyInterrupt = 0x03 // Ctrl-C in raw mode
	keyEscape    = 0x1b

	// DefaultHold is how long a typed key is reported as down.
	DefaultHold = 150 * time.Millisecond

	typedBuffer = 32
)

// SGR mouse button codes.
const (
	mouseLeft    = 0
	mouseRight   = 2
	mouseButtons = 0x03
	mouseWheel   = 0x40
)

// Overlay is the debug overlay that mouse clicks paint on.
type Overlay interface {
	Width() int
	Height() int
	SetOverlay(x, y int, on bool)
}

type typedSymbol struct {
	symbol rune
	at     time.Time
}

// mouseEvent is a click on a terminal cell, 0 based.
type mouseEvent struct {
	column int
	row    int
	on     bool
}

// Keyboard is a keypad input device fed from raw terminal bytes.
// Terminals only report key presses, so a key is considered down for the
// hold duration after it was last typed. Mouse clicks are collected and
// applied to an overlay by ApplyMouse.
type Keyboard struct {
	mu      sync.Mutex
	pressed map[rune]time.Time
	mouse   []mouseEvent

	typed     chan typedSymbol
	hold      time.Duration
	now       func() time.Time
	interrupt func()
}

// NewKeyboard returns a keyboard device. The interrupt function is called
// when Ctrl-C or a lone Esc is read.
func NewKeyboard(interrupt func()) *Keyboard {
	return &Keyboard{
		pressed:   make(map[rune]time.Time),
		typed:     make(chan typedSymbol, typedBuffer),
		hold:      DefaultHold,
		now:       time.Now,
		interrupt: interrupt,
	}
}

// Feed processes the bytes of a single read. An Esc byte followed by more
// bytes of the same read starts an escape sequence, which is consumed
// without producing key presses.
func (k *Keyboard) Feed(data []byte) {
	for i := 0; i < len(data); {
		i = k.feed(data, i)
	}
}

// feed processes the input at data[i] and returns the index of the next
// unprocessed byte.
func (k *Keyboard) feed(data []byte, i int) int {
	b := data[i]
	switch {
	case b == keyInterrupt:
		k.interruptSession()
		return i + 1

	case b == keyEscape && i+1 == len(data):
		k.interruptSession()
		return i + 1

	case b == keyEscape:
		return k.escapeSequence(data, i+1)
	}

	k.press(unicode.ToLower(rune(b)))
	return i + 1
}

// escapeSequence consumes the sequence that follows an Esc byte at data[i].
func (k *Keyboard) escapeSequence(data []byte, i int) int {
	switch data[i] {
	case '[': // CSI, parameters are ended by a byte in 0x40-0x7E
		start := i + 1
		for j := start; j < len(data); j++ {
			if data[j] >= 0x40 && data[j] <= 0x7E {
				k.controlSequence(data[start:j], data[j])
				return j + 1
			}
		}
		return len(data)

	case 'O': // SS3, a single final byte
		return min(i+2, len(data))

	default: // Alt modified key
		return i + 1
	}
}

// controlSequence handles SGR mouse reports "< b ; x ; y M".
func (k *Keyboard) controlSequence(params []byte, final byte) {
	if final != 'M' || len(params) == 0 || params[0] != '<' {
		return // releases and other sequences
	}

	fields := bytes.Split(params[1:], []byte{';'})
	if len(fields) != 3 {
		return
	}
	var values [3]int
	for i, field := range fields {
		value, err := strconv.Atoi(string(field))
		if err != nil {
			return
		}
		values[i] = value
	}

	button, column, row := values[0], values[1], values[2]
	if button&mouseWheel != 0 || column < 1 || row < 1 {
		return
	}

	var on bool
	switch button & mouseButtons {
	case mouseLeft:
		on = true
	case mouseRight:
		on = false
	default:
		return
	}

	k.mu.Lock()
	k.mouse = append(k.mouse, mouseEvent{column: column - 1, row: row - 1, on: on})
	k.mu.Unlock()
}

func (k *Keyboard) interruptSession() {
	if k.interrupt != nil {
		k.interrupt()
	}
}

func (k *Keyboard) press(symbol rune) {
	now := k.now()
	k.mu.Lock()
	k.pressed[symbol] = now
	k.mu.Unlock()

	select {
	case k.typed <- typedSymbol{symbol: symbol, at: now}:
	default: // drop input that nobody waits for
	}
}

// Run feeds all bytes read from r until the reader returns an error.
// Reaching the end of the input is not an error.
func (k *Keyboard) Run(r io.Reader) error {
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			k.Feed(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
	}
}

// ApplyMouse paints the collected mouse clicks on the overlay. A terminal
// cell shows two pixel rows, a click sets or unsets both of them. Clicks
// outside of the overlay are dropped.
func (k *Keyboard) ApplyMouse(overlay Overlay) {
	k.mu.Lock()
	events := k.mouse
	k.mouse = nil
	k.mu.Unlock()

	for _, event := range events {
		if event.column >= overlay.Width() {
			continue
		}
		for y := event.row * 2; y < event.row*2+2 && y < overlay.Height(); y++ {
			overlay.SetOverlay(event.column, y, event.on)
		}
	}
}

// KeyDown implements keypad.Device.
func (k *Keyboard) KeyDown(symbol rune) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	pressed, ok := k.pressed[unicode.ToLower(symbol)]
	if !ok {
		return false
	}
	return k.now().Sub(pressed) < k.hold
}

// NextSymbol implements keypad.Device. Symbols that were typed longer than
// the hold duration ago are skipped, they belong to input that the program
// only polled.
func (k *Keyboard) NextSymbol(ctx context.Context) (rune, error) {
	for {
		select {
		case typed := <-k.typed:
			if k.now().Sub(typed.at) >= k.hold {
				continue
			}
			return typed.symbol, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}
