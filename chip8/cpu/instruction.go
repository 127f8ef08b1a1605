package cpu

import (
	"fmt"

	"github.com/valerio/go-chip8/chip8/bit"
)

// Kind identifies a decoded CHIP-8 operation.
type Kind uint8

const (
	Unknown Kind = iota
	Cls          // 00E0
	Ret          // 00EE
	Jp           // 1nnn
	Call         // 2nnn
	SeByte       // 3xkk
	SneByte      // 4xkk
	SeReg        // 5xy0
	LdByte       // 6xkk
	AddByte      // 7xkk
	LdReg        // 8xy0
	Or           // 8xy1
	And          // 8xy2
	Xor          // 8xy3
	AddReg       // 8xy4
	Sub          // 8xy5
	Shr          // 8xy6
	SubN         // 8xy7
	Shl          // 8xyE
	SneReg       // 9xy0
	LdI          // Annn
	JpV0         // Bnnn
	Rnd          // Cxkk
	Drw          // Dxyn
	Skp          // Ex9E
	Sknp         // ExA1
	LdRegDT      // Fx07
	LdKey        // Fx0A
	LdDT         // Fx15
	LdST         // Fx18
	AddI         // Fx1E
	LdFont       // Fx29
	LdBCD        // Fx33
	Store        // Fx55
	Load         // Fx65
)

var kindNames = [...]string{
	Unknown: "???",
	Cls:     "CLS",
	Ret:     "RET",
	Jp:      "JP",
	Call:    "CALL",
	SeByte:  "SE",
	SneByte: "SNE",
	SeReg:   "SE",
	LdByte:  "LD",
	AddByte: "ADD",
	LdReg:   "LD",
	Or:      "OR",
	And:     "AND",
	Xor:     "XOR",
	AddReg:  "ADD",
	Sub:     "SUB",
	Shr:     "SHR",
	SubN:    "SUBN",
	Shl:     "SHL",
	SneReg:  "SNE",
	LdI:     "LD",
	JpV0:    "JP",
	Rnd:     "RND",
	Drw:     "DRW",
	Skp:     "SKP",
	Sknp:    "SKNP",
	LdRegDT: "LD",
	LdKey:   "LD",
	LdDT:    "LD",
	LdST:    "LD",
	AddI:    "ADD",
	LdFont:  "LD",
	LdBCD:   "LD",
	Store:   "LD",
	Load:    "LD",
}

// Mnemonic returns the assembler name of the operation.
func (k Kind) Mnemonic() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[Unknown]
}

// Instruction is one decoded opcode. Only the operand fields used by Kind
// are meaningful; Raw always holds the original opcode.
type Instruction struct {
	Kind Kind
	X    uint8  // register index in the second nibble
	Y    uint8  // register index in the third nibble
	N    uint8  // low nibble
	NN   uint8  // low byte
	NNN  uint16 // low 12 bits
	Raw  uint16
}

// Decode maps an opcode to its instruction. Opcodes matching no known
// pattern decode to Kind Unknown, never to an error.
func Decode(opcode uint16) Instruction {
	in := Instruction{
		X:   bit.Nibble(opcode, 2),
		Y:   bit.Nibble(opcode, 1),
		N:   bit.Nibble(opcode, 0),
		NN:  bit.Low(opcode),
		NNN: bit.Addr(opcode),
		Raw: opcode,
	}

	switch bit.Nibble(opcode, 3) {
	case 0x0:
		switch opcode {
		case 0x00E0:
			in.Kind = Cls
		case 0x00EE:
			in.Kind = Ret
		}
	case 0x1:
		in.Kind = Jp
	case 0x2:
		in.Kind = Call
	case 0x3:
		in.Kind = SeByte
	case 0x4:
		in.Kind = SneByte
	case 0x5:
		if in.N == 0 {
			in.Kind = SeReg
		}
	case 0x6:
		in.Kind = LdByte
	case 0x7:
		in.Kind = AddByte
	case 0x8:
		in.Kind = decodeALU(in.N)
	case 0x9:
		if in.N == 0 {
			in.Kind = SneReg
		}
	case 0xA:
		in.Kind = LdI
	case 0xB:
		in.Kind = JpV0
	case 0xC:
		in.Kind = Rnd
	case 0xD:
		in.Kind = Drw
	case 0xE:
		switch in.NN {
		case 0x9E:
			in.Kind = Skp
		case 0xA1:
			in.Kind = Sknp
		}
	case 0xF:
		in.Kind = decodeMisc(in.NN)
	}

	return in
}

func decodeALU(n uint8) Kind {
	switch n {
	case 0x0:
		return LdReg
	case 0x1:
		return Or
	case 0x2:
		return And
	case 0x3:
		return Xor
	case 0x4:
		return AddReg
	case 0x5:
		return Sub
	case 0x6:
		return Shr
	case 0x7:
		return SubN
	case 0xE:
		return Shl
	}
	return Unknown
}

func decodeMisc(nn uint8) Kind {
	switch nn {
	case 0x07:
		return LdRegDT
	case 0x0A:
		return LdKey
	case 0x15:
		return LdDT
	case 0x18:
		return LdST
	case 0x1E:
		return AddI
	case 0x29:
		return LdFont
	case 0x33:
		return LdBCD
	case 0x55:
		return Store
	case 0x65:
		return Load
	}
	return Unknown
}

// Operands formats the instruction arguments in assembler syntax, e.g.
// "V2, $34" for 6234.
func (in Instruction) Operands() string {
	switch in.Kind {
	case Cls, Ret:
		return ""
	case Jp, Call:
		return fmt.Sprintf("$%03X", in.NNN)
	case JpV0:
		return fmt.Sprintf("V0, $%03X", in.NNN)
	case LdI:
		return fmt.Sprintf("I, $%03X", in.NNN)
	case SeByte, SneByte, LdByte, AddByte, Rnd:
		return fmt.Sprintf("V%X, $%02X", in.X, in.NN)
	case SeReg, SneReg, LdReg, Or, And, Xor, AddReg, Sub, SubN:
		return fmt.Sprintf("V%X, V%X", in.X, in.Y)
	case Shr, Shl, Skp, Sknp:
		return fmt.Sprintf("V%X", in.X)
	case Drw:
		return fmt.Sprintf("V%X, V%X, $%X", in.X, in.Y, in.N)
	case LdRegDT:
		return fmt.Sprintf("V%X, DT", in.X)
	case LdKey:
		return fmt.Sprintf("V%X, K", in.X)
	case LdDT:
		return fmt.Sprintf("DT, V%X", in.X)
	case LdST:
		return fmt.Sprintf("ST, V%X", in.X)
	case AddI:
		return fmt.Sprintf("I, V%X", in.X)
	case LdFont:
		return fmt.Sprintf("F, V%X", in.X)
	case LdBCD:
		return fmt.Sprintf("B, V%X", in.X)
	case Store:
		return fmt.Sprintf("[I], V%X", in.X)
	case Load:
		return fmt.Sprintf("V%X, [I]", in.X)
	}
	return fmt.Sprintf("$%04X", in.Raw)
}

func (in Instruction) String() string {
	ops := in.Operands()
	if ops == "" {
		return in.Kind.Mnemonic()
	}
	return in.Kind.Mnemonic() + " " + ops
}
