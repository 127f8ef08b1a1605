package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindings_default(t *testing.T) {
	b := DefaultBindings()

	k, ok := b.Key("x")
	require.True(t, ok)
	assert.Equal(t, Key0, k)
	assert.Equal(t, "4", b.Name(KeyC))
	assert.Len(t, b.Names(), 16)

	_, ok = b.Key("p")
	assert.False(t, ok)
}

func TestBindings_Remap(t *testing.T) {
	tests := []struct {
		name       string
		key        Key
		physical   string
		unbound    []Key
		stillBound map[string]Key
	}{
		{
			name:       "move key to a free physical key",
			key:        Key5,
			physical:   "i",
			stillBound: map[string]Key{"i": Key5, "q": Key4},
		},
		{
			name:       "steal a physical key from another keypad key",
			key:        Key5,
			physical:   "q",
			unbound:    []Key{Key4},
			stillBound: map[string]Key{"q": Key5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := DefaultBindings()
			b.Remap(tt.key, tt.physical)

			_, ok := b.Key("w")
			assert.False(t, ok, "old binding must be released")
			for name, want := range tt.stillBound {
				got, ok := b.Key(name)
				assert.True(t, ok)
				assert.Equal(t, want, got)
				assert.Equal(t, name, b.Name(want))
			}
			for _, k := range tt.unbound {
				assert.Equal(t, "", b.Name(k))
			}
			assertInjective(t, b)
		})
	}
}

func TestBindings_Reset(t *testing.T) {
	b := DefaultBindings()
	b.Remap(KeyF, "m")
	b.Remap(Key0, "1")
	b.Reset()

	assert.Equal(t, DefaultBindings().Table(), b.Table())
}

func TestNewBindings(t *testing.T) {
	b, err := NewBindings(map[Key]string{Key0: "k", Key1: "l"})
	require.NoError(t, err)
	k, ok := b.Key("l")
	assert.True(t, ok)
	assert.Equal(t, Key1, k)
	assert.Equal(t, "", b.Name(Key2))

	_, err = NewBindings(map[Key]string{Key0: "k", Key1: "k"})
	assert.Error(t, err)

	_, err = NewBindings(map[Key]string{Key(20): "k"})
	assert.Error(t, err)
}

func assertInjective(t *testing.T, b *Bindings) {
	t.Helper()
	seen := map[Key]string{}
	for _, name := range b.Names() {
		k, _ := b.Key(name)
		if prev, dup := seen[k]; dup {
			t.Fatalf("key %s bound to both %q and %q", k, prev, name)
		}
		seen[k] = name
		assert.Equal(t, name, b.Name(k))
	}
}
