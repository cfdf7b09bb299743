package cpu

import "fmt"

// StackSize is the maximum number of nested subroutine calls.
const StackSize = 16

// stack holds the return addresses of subroutine calls.
type stack struct {
	entries [StackSize]uint16
	sp      int // number of used entries
}

func (s *stack) reset() {
	*s = stack{}
}

func (s *stack) push(address uint16) error {
	if s.sp == StackSize {
		return fmt.Errorf("%w: depth %d", ErrStackOverflow, StackSize)
	}
	s.entries[s.sp] = address
	s.sp++
	return nil
}

func (s *stack) pop() (uint16, error) {
	if s.sp == 0 {
		return 0, ErrStackUnderflow
	}
	s.sp--
	return s.entries[s.sp], nil
}

// values returns a copy of the used stack entries, the last entry is the top.
func (s *stack) values() []uint16 {
	return append([]uint16(nil), s.entries[:s.sp]...)
}
