// Package keypad implements the 16-key hexadecimal CHIP-8 keypad on top of a
// host input device.
//
// The COSMAC VIP hex keypad has the following layout, it is mapped to the left
// side of a QWERTY keyboard:
//
//	1 2 3 C        1 2 3 4
//	4 5 6 D        q w e r
//	7 8 9 E        a s d f
//	A 0 B F        z x c v
package keypad

import (
	"context"
	"fmt"
	"unicode"
)

// Key is a logical key code 0x0-0xF.
type Key uint8

// NumKeys is the number of keys of the keypad.
const NumKeys = 16

// Layout maps every logical key code to its physical input symbol.
var Layout = [NumKeys]rune{
	0x1: '1', 0x2: '2', 0x3: '3', 0xC: '4',
	0x4: 'q', 0x5: 'w', 0x6: 'e', 0xD: 'r',
	0x7: 'a', 0x8: 's', 0x9: 'd', 0xE: 'f',
	0xA: 'z', 0x0: 'x', 0xB: 'c', 0xF: 'v',
}

var symbolKeys = func() map[rune]Key {
	m := make(map[rune]Key, NumKeys)
	for key, symbol := range Layout {
		m[symbol] = Key(key)
	}
	return m
}()

// KeyForSymbol returns the logical key of a physical input symbol.
// Letters are matched case-insensitively.
func KeyForSymbol(symbol rune) (Key, bool) {
	key, ok := symbolKeys[unicode.ToLower(symbol)]
	return key, ok
}

// Symbol returns the physical input symbol of the key.
func (k Key) Symbol() rune {
	return Layout[k&0x0F]
}

func (k Key) String() string {
	return fmt.Sprintf("%X", uint8(k&0x0F))
}

// Device is the host side of the keypad.
type Device interface {
	// KeyDown returns whether the physical symbol is asserted at call time.
	KeyDown(symbol rune) bool
	// NextSymbol blocks until the next physical input symbol arrives.
	NextSymbol(ctx context.Context) (rune, error)
}

// Keypad translates between logical keys and a host input device.
type Keypad struct {
	device Device
}

// New returns a keypad that reads from the given device.
func New(device Device) *Keypad {
	return &Keypad{device: device}
}

// Poll returns whether the key is currently down. It never blocks.
func (k *Keypad) Poll(key Key) bool {
	return k.device.KeyDown(key.Symbol())
}

// AwaitAny blocks until a symbol that maps to one of the 16 keys arrives and
// returns its key. Symbols that are not part of the layout are ignored.
func (k *Keypad) AwaitAny(ctx context.Context) (Key, error) {
	for {
		symbol, err := k.device.NextSymbol(ctx)
		if err != nil {
			return 0, fmt.Errorf("waiting for key: %w", err)
		}
		if key, ok := KeyForSymbol(symbol); ok {
			return key, nil
		}
	}
}
