package input

import (
	"fmt"
	"sort"

	"github.com/valerio/go-chip8/chip8/addr"
)

// Bindings is an injective mapping between physical key names and keypad
// keys. Every keypad key has at most one physical name and every name
// drives at most one keypad key. Lookups work both ways.
type Bindings struct {
	forward map[string]Key
	reverse [addr.KeyCount]string
}

// DefaultBindings returns the DefaultLayout bindings.
func DefaultBindings() *Bindings {
	b := &Bindings{}
	b.Reset()
	return b
}

// NewBindings builds bindings from a keypad key to physical name table.
// Two keys sharing a name is an error.
func NewBindings(names map[Key]string) (*Bindings, error) {
	b := &Bindings{forward: make(map[string]Key, len(names))}
	for k, name := range names {
		if !k.Valid() {
			return nil, fmt.Errorf("invalid keypad key %d", k)
		}
		if name == "" {
			continue
		}
		if other, ok := b.forward[name]; ok {
			return nil, fmt.Errorf("%q bound to both key %s and key %s", name, other, k)
		}
		b.forward[name] = k
		b.reverse[k] = name
	}
	return b, nil
}

// Reset restores DefaultLayout.
func (b *Bindings) Reset() {
	b.forward = make(map[string]Key, len(DefaultLayout))
	b.reverse = [addr.KeyCount]string{}
	for name, k := range DefaultLayout {
		b.forward[name] = k
		b.reverse[k] = name
	}
}

// Key returns the keypad key driven by the physical key name.
func (b *Bindings) Key(name string) (Key, bool) {
	k, ok := b.forward[name]
	return k, ok
}

// Name returns the physical key bound to k, or "" when k is unbound.
func (b *Bindings) Name(k Key) string {
	if !k.Valid() {
		return ""
	}
	return b.reverse[k]
}

// Remap binds k to name. The previous name of k is released, and if name
// was driving another key that key becomes unbound.
func (b *Bindings) Remap(k Key, name string) {
	if !k.Valid() || name == "" {
		return
	}
	if old := b.reverse[k]; old != "" {
		delete(b.forward, old)
	}
	if other, ok := b.forward[name]; ok {
		b.reverse[other] = ""
	}
	b.forward[name] = k
	b.reverse[k] = name
}

// Table returns the key to name table, unbound keys omitted.
func (b *Bindings) Table() map[Key]string {
	out := make(map[Key]string, len(b.forward))
	for name, k := range b.forward {
		out[k] = name
	}
	return out
}

// Names returns the bound physical names in sorted order.
func (b *Bindings) Names() []string {
	names := make([]string, 0, len(b.forward))
	for name := range b.forward {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
