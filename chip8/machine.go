package chip8

import (
	"github.com/valerio/go-chip8/chip8/cpu"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/snapshot"
	"github.com/valerio/go-chip8/chip8/video"
)

// Machine bundles the CPU with the memory it owns and the screen and
// keypad it shares with the host. It is driven by a single goroutine.
type Machine struct {
	cpu  *cpu.CPU
	mem  *memory.Memory
	fb   *video.FrameBuffer
	keys *input.KeyMatrix

	// pending is the last key released and not yet seen by the CPU.
	pending *input.Key
}

// NewMachine returns a machine with rom loaded, ready to run from the ROM
// start address.
func NewMachine(rom []byte, fb *video.FrameBuffer, keys *input.KeyMatrix, seed uint64) *Machine {
	mem := memory.New()
	mem.LoadROM(rom)
	return &Machine{
		cpu:  cpu.New(mem, fb, keys, seed),
		mem:  mem,
		fb:   fb,
		keys: keys,
	}
}

// NewMachineFromState rebuilds a machine from a save state. The frame
// buffer and key matrix are overwritten with the saved contents.
func NewMachineFromState(s *snapshot.State, fb *video.FrameBuffer, keys *input.KeyMatrix, seed uint64) *Machine {
	mem := memory.NewFromImage(s.Memory)
	m := &Machine{
		cpu:  cpu.New(mem, fb, keys, seed),
		mem:  mem,
		fb:   fb,
		keys: keys,
	}

	regs := cpu.Registers{
		V:     s.V,
		I:     s.I,
		PC:    s.PC,
		SP:    s.SP,
		DT:    s.DT,
		ST:    s.ST,
		Stack: s.Stack,
		State: cpu.Running,
	}
	if s.Awaiting {
		regs.State = cpu.AwaitingKey
		regs.AwaitReg = s.AwaitReg
	}
	m.cpu.SetRegisters(regs)

	fb.Load(video.Unpack(s.Screen))
	keys.LoadBits(s.Keys)
	if s.HasPendingKey {
		k := input.Key(s.PendingKey)
		m.pending = &k
	}
	return m
}

func (m *Machine) CPU() *cpu.CPU {
	return m.cpu
}

// Step executes one instruction, handing the CPU the pending released key.
// The key is consumed whether the CPU needed it or not.
func (m *Machine) Step() (drew bool, err error) {
	released := m.pending
	m.pending = nil
	return m.cpu.Tick(released)
}

// TickTimers runs the 60Hz timer decay.
func (m *Machine) TickTimers() {
	m.cpu.Tick60Hz()
}

// KeyReleased records k as the last released key, replacing any key not
// consumed yet.
func (m *Machine) KeyReleased(k input.Key) {
	m.pending = &k
}

// Sounding reports whether the sound timer is running.
func (m *Machine) Sounding() bool {
	return m.cpu.ST() > 0
}

// State captures the whole machine.
func (m *Machine) State() *snapshot.State {
	regs := m.cpu.Registers()
	frame := m.fb.Copy()

	s := &snapshot.State{
		V:      regs.V,
		I:      regs.I,
		Stack:  regs.Stack,
		PC:     regs.PC,
		SP:     regs.SP,
		DT:     regs.DT,
		ST:     regs.ST,
		Memory: m.mem.Image(),
		Screen: frame.Pack(),
		Keys:   m.keys.Bits(),
	}
	if m.pending != nil {
		s.HasPendingKey = true
		s.PendingKey = uint8(*m.pending)
	}
	if regs.State == cpu.AwaitingKey {
		s.Awaiting = true
		s.AwaitReg = regs.AwaitReg
	}
	return s
}
