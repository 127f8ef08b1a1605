package config

import (
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/log"
	"github.com/valerio/go-chip8/chip8/timing"
)

type Config struct {
	Emulation EmulationConfig `toml:"emulation"`
	// Keys maps a keypad key, as a hex digit, to a physical key name.
	// Keys not listed keep their default binding.
	Keys  map[string]string `toml:"keys"`
	Video VideoConfig       `toml:"video"`
	Log   LogConfig         `toml:"log"`
}

type EmulationConfig struct {
	InstructionInterval Duration    `toml:"instruction_interval"`
	TimerInterval       Duration    `toml:"timer_interval"`
	FaultPolicy         FaultPolicy `toml:"fault_policy"`
	// Seed for the RND instruction, 0 picks one from the current time.
	Seed uint64 `toml:"seed"`
}

type VideoConfig struct {
	Scale      int    `toml:"scale"`
	Foreground string `toml:"foreground"`
	Background string `toml:"background"`
}

type LogConfig struct {
	// Debug lists the modules with debug output enabled, or "all".
	Debug []string `toml:"debug"`
}

// FaultPolicy decides what the emulation loop does when an instruction
// faults (bad memory access, stack overflow or underflow).
type FaultPolicy string

const (
	// FaultHalt stops the session and reports the fault to the host.
	FaultHalt FaultPolicy = "halt"
	// FaultSkip logs the fault and continues with the next instruction.
	FaultSkip FaultPolicy = "skip"
)

func (p FaultPolicy) Valid() bool {
	return p == FaultHalt || p == FaultSkip
}

func (p *FaultPolicy) UnmarshalText(text []byte) error {
	policy := FaultPolicy(strings.ToLower(string(text)))
	if !policy.Valid() {
		return fmt.Errorf("unknown fault policy %q, want %q or %q", text, FaultHalt, FaultSkip)
	}
	*p = policy
	return nil
}

// Duration is a time.Duration written as a string such as "2ms".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("negative duration %s", v)
	}
	d.Duration = v
	return nil
}

var defaultConfig = Config{
	Emulation: EmulationConfig{
		InstructionInterval: Duration{timing.InstructionInterval},
		TimerInterval:       Duration{timing.TimerInterval()},
		FaultPolicy:         FaultHalt,
	},
	Video: VideoConfig{
		Scale:      10,
		Foreground: "#33FF66",
		Background: "#000000",
	},
}

// Default returns the built-in configuration.
func Default() Config {
	cfg := defaultConfig
	cfg.Keys = make(map[string]string)
	return cfg
}

const (
	dirName     = "go-chip8"
	cfgFilename = "config.toml"
)

// DefaultPath returns the location of the user configuration file.
func DefaultPath() (string, error) {
	cfgdir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgdir, dirName, cfgFilename), nil
}

// Load reads the configuration at path. Settings missing from the file
// keep their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		log.ModEmu.WithField("path", path).Warnf("unknown config key %q", key.String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads the configuration from the user config directory,
// or provides the default one.
func LoadOrDefault() Config {
	path, err := DefaultPath()
	if err != nil {
		log.ModEmu.Warnf("no user config directory: %v", err)
		return Default()
	}
	cfg, err := Load(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.ModEmu.Warnf("using default config: %v", err)
		}
		return Default()
	}
	return cfg
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}

// Validate checks the values the TOML decoder cannot.
func (cfg Config) Validate() error {
	if !cfg.Emulation.FaultPolicy.Valid() {
		return fmt.Errorf("unknown fault policy %q", cfg.Emulation.FaultPolicy)
	}
	if cfg.Emulation.TimerInterval.Duration <= 0 {
		return errors.New("timer_interval must be positive")
	}
	if cfg.Video.Scale < 1 {
		return fmt.Errorf("invalid video scale %d", cfg.Video.Scale)
	}
	if _, _, err := cfg.Video.Colors(); err != nil {
		return err
	}
	_, err := cfg.Bindings()
	return err
}

// Bindings builds the keypad bindings: the default layout with the
// entries of the [keys] table applied on top.
func (cfg Config) Bindings() (*input.Bindings, error) {
	table := input.DefaultBindings().Table()
	for digit, name := range cfg.Keys {
		k, err := input.ParseKey(digit)
		if err != nil {
			return nil, err
		}
		table[k] = name
	}
	return input.NewBindings(table)
}

// Colors parses the foreground and background colors.
func (v VideoConfig) Colors() (fg, bg color.RGBA, err error) {
	if fg, err = ParseColor(v.Foreground); err != nil {
		return
	}
	bg, err = ParseColor(v.Background)
	return
}

// ParseColor parses a "#RRGGBB" color.
func ParseColor(s string) (color.RGBA, error) {
	var r, g, b uint8
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("invalid color %q, want #RRGGBB", s)
	}
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}, nil
}

// ApplyLogging enables debug output for the configured modules.
func (cfg Config) ApplyLogging() {
	for _, list := range cfg.Log.Debug {
		for _, name := range log.EnableDebugByName(list) {
			log.ModEmu.Warnf("unknown log module %q", name)
		}
	}
}
