package cpu

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/valerio/go-chip8/chip8/addr"
	"github.com/valerio/go-chip8/chip8/bit"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/log"
	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/video"
)

var (
	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")
)

// State is the execution state of the CPU.
type State uint8

const (
	// Running executes one instruction per tick.
	Running State = iota
	// AwaitingKey is entered by Fx0A. Ticks do nothing until a released key
	// is delivered, which is then stored in the awaited register.
	AwaitingKey
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case AwaitingKey:
		return "awaiting key"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Fault is returned by Tick when an instruction cannot complete. It wraps
// one of memory.ErrOutOfBounds, ErrStackOverflow or ErrStackUnderflow.
type Fault struct {
	PC     uint16
	Opcode uint16
	Err    error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("fault at 0x%04X (opcode %04X): %v", f.PC, f.Opcode, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// Registers is the exportable register file, used for save states.
type Registers struct {
	V     [addr.RegisterCount]uint8
	I     uint16
	PC    uint16
	SP    uint8
	DT    uint8
	ST    uint8
	Stack [addr.StackDepth]uint16

	State    State
	AwaitReg uint8
}

// CPU holds the CHIP-8 register file and executes instructions against
// memory, the frame buffer and the key matrix.
type CPU struct {
	v     [addr.RegisterCount]uint8
	i     uint16
	pc    uint16
	sp    uint8
	dt    uint8
	st    uint8
	stack [addr.StackDepth]uint16

	state    State
	awaitReg uint8

	mem  *memory.Memory
	fb   *video.FrameBuffer
	keys *input.KeyMatrix
	rng  *rand.Rand
}

// New returns a CPU with PC at the ROM start address. The seed drives the
// RND instruction.
func New(mem *memory.Memory, fb *video.FrameBuffer, keys *input.KeyMatrix, seed uint64) *CPU {
	return &CPU{
		pc:   addr.ROMStart,
		mem:  mem,
		fb:   fb,
		keys: keys,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
	}
}

func (c *CPU) V(x uint8) uint8 { return c.v[x&0x0F] }
func (c *CPU) I() uint16       { return c.i }
func (c *CPU) PC() uint16      { return c.pc }
func (c *CPU) SP() uint8       { return c.sp }
func (c *CPU) DT() uint8       { return c.dt }
func (c *CPU) ST() uint8       { return c.st }
func (c *CPU) State() State    { return c.state }

// Registers exports the register file.
func (c *CPU) Registers() Registers {
	return Registers{
		V:        c.v,
		I:        c.i,
		PC:       c.pc,
		SP:       c.sp,
		DT:       c.dt,
		ST:       c.st,
		Stack:    c.stack,
		State:    c.state,
		AwaitReg: c.awaitReg,
	}
}

// SetRegisters replaces the register file, e.g. when loading a save state.
func (c *CPU) SetRegisters(r Registers) {
	c.v = r.V
	c.i = r.I
	c.pc = r.PC
	c.sp = min(r.SP, addr.StackDepth)
	c.dt = r.DT
	c.st = r.ST
	c.stack = r.Stack
	c.state = r.State
	c.awaitReg = r.AwaitReg & 0x0F
}

// Tick60Hz decrements the delay and sound timers, stopping at zero. Timers
// keep running while the CPU awaits a key.
func (c *CPU) Tick60Hz() {
	if c.dt > 0 {
		c.dt--
	}
	if c.st > 0 {
		c.st--
	}
}

// Tick executes a single instruction. released is the key released since
// the previous tick, if any; it only has an effect while awaiting a key.
// drew reports whether the frame buffer changed. The PC always moves past
// the instruction, even when it faults.
func (c *CPU) Tick(released *input.Key) (drew bool, err error) {
	if c.state == AwaitingKey {
		if released != nil {
			c.v[c.awaitReg] = uint8(*released)
			c.state = Running
			log.ModCPU.Debugf("key %s released, resuming", *released)
		}
		return false, nil
	}

	pc := c.pc
	opcode, err := c.mem.ReadWord(pc)
	c.pc += 2
	if err != nil {
		return false, &Fault{PC: pc, Err: err}
	}

	in := Decode(opcode)
	if log.ModCPU.Enabled(log.DebugLevel) {
		log.ModCPU.WithField("pc", fmt.Sprintf("%04X", pc)).Debugf("%04X  %s", opcode, in)
	}

	drew, err = c.execute(in)
	if err != nil {
		return drew, &Fault{PC: pc, Opcode: opcode, Err: err}
	}
	return drew, nil
}

func (c *CPU) execute(in Instruction) (bool, error) {
	x, y := in.X, in.Y

	switch in.Kind {
	case Cls:
		c.fb.Clear()
		return true, nil
	case Ret:
		if c.sp == 0 {
			return false, ErrStackUnderflow
		}
		c.sp--
		c.pc = c.stack[c.sp]
	case Jp:
		c.pc = in.NNN
	case Call:
		if int(c.sp) >= addr.StackDepth {
			return false, ErrStackOverflow
		}
		c.stack[c.sp] = c.pc
		c.sp++
		c.pc = in.NNN
	case SeByte:
		c.skipIf(c.v[x] == in.NN)
	case SneByte:
		c.skipIf(c.v[x] != in.NN)
	case SeReg:
		c.skipIf(c.v[x] == c.v[y])
	case SneReg:
		c.skipIf(c.v[x] != c.v[y])
	case LdByte:
		c.v[x] = in.NN
	case AddByte:
		c.v[x] += in.NN
	case LdReg:
		c.v[x] = c.v[y]
	case Or:
		c.v[x] |= c.v[y]
	case And:
		c.v[x] &= c.v[y]
	case Xor:
		c.v[x] ^= c.v[y]
	case AddReg:
		result, overflow := bit.CheckedAdd(c.v[x], c.v[y])
		c.v[x] = result
		c.setFlag(overflow)
	case Sub:
		result, borrow := bit.CheckedSub(c.v[x], c.v[y])
		c.v[x] = result
		c.setFlag(!borrow)
	case SubN:
		result, borrow := bit.CheckedSub(c.v[y], c.v[x])
		c.v[x] = result
		c.setFlag(!borrow)
	case Shr:
		old := c.v[x]
		c.v[x] = old >> 1
		c.setFlag(bit.IsSet(0, old))
	case Shl:
		old := c.v[x]
		c.v[x] = old << 1
		c.setFlag(bit.IsSet(7, old))
	case LdI:
		c.i = in.NNN
	case JpV0:
		c.pc = in.NNN + uint16(c.v[0])
	case Rnd:
		c.v[x] = uint8(c.rng.UintN(256)) & in.NN
	case Drw:
		return c.draw(x, y, in.N)
	case Skp:
		c.skipIf(c.keys.IsPressed(input.Key(c.v[x])))
	case Sknp:
		c.skipIf(!c.keys.IsPressed(input.Key(c.v[x])))
	case LdRegDT:
		c.v[x] = c.dt
	case LdKey:
		c.state = AwaitingKey
		c.awaitReg = x
	case LdDT:
		c.dt = c.v[x]
	case LdST:
		c.st = c.v[x]
	case AddI:
		c.i += uint16(c.v[x])
	case LdFont:
		c.i = memory.FontAddress(c.v[x])
	case LdBCD:
		value := c.v[x]
		digits := [3]uint8{value / 100, (value / 10) % 10, value % 10}
		for n, d := range digits {
			if err := c.writeAtI(n, d); err != nil {
				return false, err
			}
		}
	case Store:
		for n := 0; n <= int(x); n++ {
			if err := c.writeAtI(n, c.v[n]); err != nil {
				return false, err
			}
		}
	case Load:
		for n := 0; n <= int(x); n++ {
			value, err := c.readAtI(n)
			if err != nil {
				return false, err
			}
			c.v[n] = value
		}
	default:
		log.ModCPU.WithFields(log.Fields{
			"pc":     fmt.Sprintf("%04X", c.pc-2),
			"opcode": fmt.Sprintf("%04X", in.Raw),
		}).Warn("unknown instruction, ignored")
	}

	return false, nil
}

// draw XORs an n row sprite read at I onto the screen at (Vx, Vy). The
// origin wraps around the screen, the sprite itself is clipped at the edges.
func (c *CPU) draw(x, y, n uint8) (bool, error) {
	sprite := make([]uint8, n)
	for row := range sprite {
		b, err := c.readAtI(row)
		if err != nil {
			return false, err
		}
		sprite[row] = b
	}

	originX := int(c.v[x]) % addr.ScreenWidth
	originY := int(c.v[y]) % addr.ScreenHeight

	c.v[addr.VF] = 0
	for row, line := range sprite {
		py := originY + row
		if py >= addr.ScreenHeight {
			break
		}
		for col := 0; col < addr.SpriteWidth; col++ {
			px := originX + col
			if px >= addr.ScreenWidth {
				break
			}
			if !bit.IsSet(uint8(7-col), line) {
				continue
			}
			if c.fb.XOR(px, py, true) {
				c.v[addr.VF] = 1
			}
		}
	}

	return true, nil
}

func (c *CPU) skipIf(cond bool) {
	if cond {
		c.pc += 2
	}
}

func (c *CPU) setFlag(set bool) {
	if set {
		c.v[addr.VF] = 1
	} else {
		c.v[addr.VF] = 0
	}
}

// addressAtI returns I+offset, failing instead of wrapping past 16 bits.
func (c *CPU) addressAtI(offset int) (uint16, error) {
	address := int(c.i) + offset
	if address >= addr.MemorySize {
		return 0, fmt.Errorf("%w: I=0x%04X offset %d", memory.ErrOutOfBounds, c.i, offset)
	}
	return uint16(address), nil
}

func (c *CPU) readAtI(offset int) (uint8, error) {
	address, err := c.addressAtI(offset)
	if err != nil {
		return 0, err
	}
	return c.mem.Read(address)
}

func (c *CPU) writeAtI(offset int, value uint8) error {
	address, err := c.addressAtI(offset)
	if err != nil {
		return err
	}
	return c.mem.Write(address, value)
}
