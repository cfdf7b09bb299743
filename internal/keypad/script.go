package keypad

import (
	"context"
	"errors"
	"sync"
	"unicode"
)

// ErrEndOfInput is returned by a closed script once all typed symbols were consumed.
var ErrEndOfInput = errors.New("end of input")

// Script is an in-memory input device. Held symbols are reported as down
// until released, typed symbols are handed out in order by NextSymbol.
type Script struct {
	mu    sync.Mutex
	held  map[rune]bool
	typed chan rune

	closeOnce sync.Once
	closed    chan struct{}
}

// NewScript returns a device that has the given symbols queued as typed input.
func NewScript(typed ...rune) *Script {
	s := &Script{
		held:   make(map[rune]bool),
		typed:  make(chan rune, len(typed)+16),
		closed: make(chan struct{}),
	}
	for _, r := range typed {
		s.typed <- r
	}
	return s
}

// Hold marks a symbol as down.
func (s *Script) Hold(symbol rune) {
	s.mu.Lock()
	s.held[unicode.ToLower(symbol)] = true
	s.mu.Unlock()
}

// Release marks a symbol as up.
func (s *Script) Release(symbol rune) {
	s.mu.Lock()
	delete(s.held, unicode.ToLower(symbol))
	s.mu.Unlock()
}

// Type queues a symbol for NextSymbol. It blocks if the queue is full.
func (s *Script) Type(symbol rune) {
	s.typed <- symbol
}

// Close marks the end of the typed input. Once the queued symbols are
// consumed NextSymbol returns ErrEndOfInput instead of blocking.
func (s *Script) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
}

// KeyDown implements Device.
func (s *Script) KeyDown(symbol rune) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held[unicode.ToLower(symbol)]
}

// NextSymbol implements Device.
func (s *Script) NextSymbol(ctx context.Context) (rune, error) {
	select {
	case r := <-s.typed:
		return r, nil
	default:
	}

	select {
	case r := <-s.typed:
		return r, nil
	case <-s.closed:
		return 0, ErrEndOfInput
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
