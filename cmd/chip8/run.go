package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli"

	"github.com/valerio/go-chip8/chip8"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/headless"
	"github.com/valerio/go-chip8/chip8/backend/sdl2"
	"github.com/valerio/go-chip8/chip8/backend/terminal"
	"github.com/valerio/go-chip8/chip8/config"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/log"
)

// loadConfig reads the --config file, or the user one, and applies the
// logging settings of both the file and the --log flag.
func loadConfig(c *cli.Context) (config.Config, error) {
	var cfg config.Config
	if path := c.GlobalString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	} else {
		cfg = config.LoadOrDefault()
	}

	if list := c.GlobalString("log"); list != "" {
		cfg.Log.Debug = append(cfg.Log.Debug, list)
	}
	cfg.ApplyLogging()

	if policy := c.String("fault-policy"); policy != "" {
		if err := cfg.Emulation.FaultPolicy.UnmarshalText([]byte(policy)); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func runROM(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() == 0 {
			cli.ShowCommandHelp(c, "run")
			return errors.New("no ROM path provided")
		}
		romPath = c.Args().Get(0)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	statePath := c.String("state")
	if statePath == "" {
		statePath = strings.TrimSuffix(romPath, filepath.Ext(romPath)) + ".state"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := chip8.StartFile(ctx, romPath, chip8.OptionsFromConfig(cfg))
	if err != nil {
		return err
	}
	return host(ctx, c, cfg, session, romPath, statePath)
}

func resumeState(c *cli.Context) error {
	if c.NArg() == 0 {
		cli.ShowCommandHelp(c, "resume")
		return errors.New("no state file provided")
	}
	statePath := c.Args().Get(0)

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := chip8.RestoreFile(ctx, statePath, chip8.OptionsFromConfig(cfg))
	if err != nil {
		return err
	}
	return host(ctx, c, cfg, session, statePath, statePath)
}

// host picks the backend from the command flags and runs session on it
// until the user quits or the machine halts.
func host(ctx context.Context, c *cli.Context, cfg config.Config, session *chip8.Session, name, statePath string) error {
	bindings, err := cfg.Bindings()
	if err != nil {
		_ = session.Shutdown()
		return err
	}
	fg, bg, err := cfg.Video.Colors()
	if err != nil {
		_ = session.Shutdown()
		return err
	}

	hostCfg := backend.HostConfig{
		Backend: backend.BackendConfig{
			Title:   "CHIP-8 - " + filepath.Base(name),
			Scale:   cfg.Video.Scale,
			Palette: debug.Palette{On: fg, Off: bg},
		},
		Bindings:      bindings,
		StatePath:     statePath,
		ScreenshotDir: c.String("snapshot-dir"),
	}

	var b backend.Backend
	switch {
	case c.Bool("headless"):
		frames := c.Int("frames")
		if frames <= 0 {
			_ = session.Shutdown()
			return errors.New("headless mode requires --frames option with a positive value")
		}
		snapshots, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), name)
		if err != nil {
			_ = session.Shutdown()
			return err
		}
		b = headless.New(frames, snapshots)
	case c.Bool("sdl"):
		b = sdl2.New()
	default:
		b = terminal.New()
	}

	log.ModEmu.WithField("file", name).Info("starting")
	return backend.NewHost(session, b, hostCfg).Run(ctx)
}
