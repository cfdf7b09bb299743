package disasm

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/chip8vm/internal/memory"
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
	"github.com/retroenv/retrogolib/set"
)

// bytesPerDataLine is the maximum number of data bytes per .byte directive.
const bytesPerDataLine = 8

// listing tracks the control flow of a program image to separate code from data.
type listing struct {
	image []byte

	code   set.Set[uint16] // addresses of instruction starts
	labels map[uint16]string

	offsetsToParse      []uint16
	offsetsToParseAdded set.Set[uint16]
}

// List writes an assembly listing of the program image. Code is found by
// following the control flow from the program entry point, bytes that are
// not reached are output as data.
func List(w io.Writer, image []byte) error {
	l := &listing{
		image:               image,
		code:                set.New[uint16](),
		labels:              map[uint16]string{memory.ProgramStart: "Start"},
		offsetsToParseAdded: set.New[uint16](),
	}
	l.addAddressToParse(memory.ProgramStart)
	l.trace()
	return l.write(w)
}

func (l *listing) inImage(address uint16) bool {
	return address >= memory.ProgramStart && int(address)+1 < memory.ProgramStart+len(l.image)
}

func (l *listing) word(address uint16) uint16 {
	index := int(address) - memory.ProgramStart
	return uint16(l.image[index])<<8 | uint16(l.image[index+1])
}

func (l *listing) addAddressToParse(address uint16) {
	if !l.inImage(address) || l.offsetsToParseAdded.Contains(address) {
		return
	}
	l.offsetsToParseAdded.Add(address)
	l.offsetsToParse = append(l.offsetsToParse, address)
}

func (l *listing) addLabel(address uint16, prefix string) {
	if _, ok := l.labels[address]; ok {
		return
	}
	l.labels[address] = fmt.Sprintf("%s_%03X", prefix, address)
}

// trace processes all queued addresses and queues the successors of every
// decoded instruction.
func (l *listing) trace() {
	for len(l.offsetsToParse) > 0 {
		address := l.offsetsToParse[0]
		l.offsetsToParse = l.offsetsToParse[1:]

		word := l.word(address)
		ins, ok := Lookup(word)
		if !ok {
			continue // unknown instructions are output as data
		}
		l.code.Add(address)

		next := address + 2
		target := word & 0x0FFF

		switch {
		case ins == chip8.Jp && word&0xF000 == 0x1000:
			l.addLabel(target, "jump")
			l.addAddressToParse(target)

		case ins == chip8.Jp:
			// indexed jumps have no statically known destination

		case ins == chip8.Call:
			l.addLabel(target, "sub")
			l.addAddressToParse(target)
			l.addAddressToParse(next)

		case ins == chip8.Ret:

		case chip8.SkipInstructions.Contains(ins.Name):
			l.addAddressToParse(next)
			l.addAddressToParse(next + 2)

		case ins == chip8.Ld && word&0xF000 == 0xA000:
			if l.inImage(target) {
				l.addLabel(target, "data")
			}
			l.addAddressToParse(next)

		default:
			l.addAddressToParse(next)
		}
	}
}

func (l *listing) write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "; CHIP-8 program listing\n.org $%03X\n\n", memory.ProgramStart); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	end := memory.ProgramStart + len(l.image)
	for address := memory.ProgramStart; address < end; {
		addr := uint16(address)
		if err := l.writeLabel(w, addr); err != nil {
			return err
		}

		if l.code.Contains(addr) {
			word := l.word(addr)
			if err := writeLine(w, Format(word), fmt.Sprintf("$%03X  %02X %02X", addr, word>>8, word&0xFF)); err != nil {
				return err
			}
			address += 2
			continue
		}

		n := l.dataLength(address, end)
		if err := writeData(w, addr, l.image[address-memory.ProgramStart:address-memory.ProgramStart+n]); err != nil {
			return err
		}
		address += n
	}
	return nil
}

// dataLength returns the number of data bytes that follow at address until
// the next instruction, label or line limit.
func (l *listing) dataLength(address, end int) int {
	n := 1
	for ; n < bytesPerDataLine && address+n < end; n++ {
		addr := uint16(address + n)
		if l.code.Contains(addr) {
			break
		}
		if _, ok := l.labels[addr]; ok {
			break
		}
	}
	return n
}

func (l *listing) writeLabel(w io.Writer, address uint16) error {
	label, ok := l.labels[address]
	if !ok {
		return nil
	}
	if _, err := fmt.Fprintf(w, "%s:\n", label); err != nil {
		return fmt.Errorf("writing label %s: %w", label, err)
	}
	return nil
}

func writeData(w io.Writer, address uint16, data []byte) error {
	var buf strings.Builder
	buf.WriteString(fmt.Sprintf(".byte $%02X", data[0]))
	for _, b := range data[1:] {
		buf.WriteString(fmt.Sprintf(", $%02X", b))
	}
	return writeLine(w, buf.String(), fmt.Sprintf("$%03X", address))
}

func writeLine(w io.Writer, code, comment string) error {
	if _, err := fmt.Fprintf(w, "%-32s ; %s\n", "    "+code, comment); err != nil {
		return fmt.Errorf("writing line: %w", err)
	}
	return nil
}
