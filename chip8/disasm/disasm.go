package disasm

import (
	"fmt"
	"io"

	"github.com/valerio/go-chip8/chip8/addr"
	"github.com/valerio/go-chip8/chip8/bit"
	"github.com/valerio/go-chip8/chip8/cpu"
)

// Line is a single disassembled instruction.
type Line struct {
	Address     uint16
	Opcode      uint16
	Instruction cpu.Instruction
}

func (l Line) String() string {
	return fmt.Sprintf("%04X  %04X  %s", l.Address, l.Opcode, l.Instruction)
}

// Listing decodes rom as a linear sequence of instructions loaded at the
// ROM start address. A trailing odd byte is shown as a raw byte.
func Listing(rom []byte) []Line {
	if len(rom) > addr.MaxROMSize {
		rom = rom[:addr.MaxROMSize]
	}

	lines := make([]Line, 0, (len(rom)+1)/2)
	for offset := 0; offset+1 < len(rom); offset += 2 {
		opcode := bit.Combine(rom[offset], rom[offset+1])
		lines = append(lines, Line{
			Address:     addr.ROMStart + uint16(offset),
			Opcode:      opcode,
			Instruction: cpu.Decode(opcode),
		})
	}
	return lines
}

// Write prints the listing of rom, one instruction per line.
func Write(w io.Writer, rom []byte) error {
	for _, line := range Listing(rom) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if len(rom)%2 == 1 && len(rom) <= addr.MaxROMSize {
		last := addr.ROMStart + uint16(len(rom)-1)
		if _, err := fmt.Fprintf(w, "%04X  %02X    DB $%02X\n", last, rom[len(rom)-1], rom[len(rom)-1]); err != nil {
			return err
		}
	}
	return nil
}
