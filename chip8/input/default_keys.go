package input

import "github.com/valerio/go-chip8/chip8/input/action"

// DefaultLayout maps the left block of a QWERTY keyboard onto the hex keypad:
//
//	1 2 3 4      1 2 3 C
//	q w e r  ->  4 5 6 D
//	a s d f      7 8 9 E
//	z x c v      A 0 B F
var DefaultLayout = map[string]Key{
	"1": Key1, "2": Key2, "3": Key3, "4": KeyC,
	"q": Key4, "w": Key5, "e": Key6, "r": KeyD,
	"a": Key7, "s": Key8, "d": Key9, "f": KeyE,
	"z": KeyA, "x": Key0, "c": KeyB, "v": KeyF,
}

// DefaultControls maps key names to emulator controls. Keypad bindings take
// precedence when a name appears in both.
var DefaultControls = map[string]action.Action{
	"Space":  action.EmulatorPauseToggle,
	"p":      action.EmulatorPauseToggle,
	"F5":     action.EmulatorSaveState,
	"F12":    action.EmulatorSnapshot,
	"Escape": action.EmulatorQuit,
}

// GetDefaultControl returns the default control for a key, if one exists
func GetDefaultControl(name string) (action.Action, bool) {
	act, ok := DefaultControls[name]
	return act, ok
}
