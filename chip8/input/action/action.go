package action

import "fmt"

// Action represents input actions that can be performed in the emulator
type Action int

const (
	// CHIP-8 hex keypad, one action per key in key order
	Keypad0 Action = iota
	Keypad1
	Keypad2
	Keypad3
	Keypad4
	Keypad5
	Keypad6
	Keypad7
	Keypad8
	Keypad9
	KeypadA
	KeypadB
	KeypadC
	KeypadD
	KeypadE
	KeypadF

	// Emulator features
	EmulatorPauseToggle
	EmulatorSaveState
	EmulatorSnapshot
	EmulatorQuit
)

// Category groups actions by who consumes them.
type Category int

const (
	CategoryKeypad Category = iota
	CategoryEmulator
)

// Info describes an action for logs and help screens.
type Info struct {
	Category    Category
	Description string
}

// Keypad returns the action for hex key k (0x0-0xF).
func Keypad(k uint8) Action {
	return Keypad0 + Action(k&0x0F)
}

// Key returns the hex key of a keypad action.
func (a Action) Key() (uint8, bool) {
	if a >= Keypad0 && a <= KeypadF {
		return uint8(a - Keypad0), true
	}
	return 0, false
}

// GetInfo returns the description of an action.
func GetInfo(a Action) Info {
	if k, ok := a.Key(); ok {
		return Info{Category: CategoryKeypad, Description: fmt.Sprintf("Keypad %X", k)}
	}
	switch a {
	case EmulatorPauseToggle:
		return Info{Category: CategoryEmulator, Description: "Pause/Resume"}
	case EmulatorSaveState:
		return Info{Category: CategoryEmulator, Description: "Save state"}
	case EmulatorSnapshot:
		return Info{Category: CategoryEmulator, Description: "Screenshot"}
	case EmulatorQuit:
		return Info{Category: CategoryEmulator, Description: "Quit"}
	}
	return Info{Category: CategoryEmulator, Description: "Unknown"}
}
