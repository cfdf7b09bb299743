package cpu

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownOpcode is returned when a fetched word does not encode a known instruction.
	ErrUnknownOpcode = errors.New("unknown opcode")
	// ErrStackOverflow is returned by a call when the stack is full.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow is returned by a return when the stack is empty.
	ErrStackUnderflow = errors.New("stack underflow")
)

// DecodeError describes an instruction word that could not be decoded.
type DecodeError struct {
	Address uint16 // address of the instruction
	Opcode  uint16 // raw instruction word
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s $%04X at address $%03X", ErrUnknownOpcode, e.Opcode, e.Address)
}

func (e *DecodeError) Unwrap() error {
	return ErrUnknownOpcode
}
