package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/valerio/go-chip8/chip8/addr"
	"github.com/valerio/go-chip8/chip8/log"
)

var (
	ErrTruncated = errors.New("save state truncated")
	ErrInvalid   = errors.New("invalid save state")
)

// Size is the encoded size of a State in bytes.
var Size = binary.Size(State{})

// Encode serializes s.
func Encode(s *State) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, Size))
	// writes to a bytes.Buffer of fixed size fields cannot fail
	_ = binary.Write(buf, binary.BigEndian, s)
	return buf.Bytes()
}

// Decode parses a blob produced by Encode.
func Decode(data []byte) (*State, error) {
	if len(data) < Size {
		return nil, fmt.Errorf("%w: %d of %d bytes", ErrTruncated, len(data), Size)
	}
	if len(data) > Size {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalid, len(data)-Size)
	}

	s := &State{}
	if err := binary.Read(bytes.NewReader(data), binary.BigEndian, s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *State) validate() error {
	switch {
	case int(s.SP) > addr.StackDepth:
		return fmt.Errorf("%w: stack pointer %d", ErrInvalid, s.SP)
	case int(s.PendingKey) >= addr.KeyCount:
		return fmt.Errorf("%w: pending key %d", ErrInvalid, s.PendingKey)
	case int(s.AwaitReg) >= addr.RegisterCount:
		return fmt.Errorf("%w: await register %d", ErrInvalid, s.AwaitReg)
	}
	return nil
}

// Save writes s to path.
func Save(path string, s *State) error {
	if err := os.WriteFile(path, Encode(s), 0o644); err != nil {
		return err
	}
	log.ModSnap.WithField("path", path).Infof("state saved (PC=0x%04X)", s.PC)
	return nil
}

// Load reads a state previously written by Save.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.ModSnap.WithField("path", path).Debugf("state loaded (PC=0x%04X)", s.PC)
	return s, nil
}
