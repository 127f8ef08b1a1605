package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/valerio/go-chip8/chip8/log"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.ModEmu.WithError(err).Error("chip8 failed")
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "chip8"
	app.Description = "A CHIP-8 virtual machine"
	app.Usage = "chip8 [global options] command <file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "Path to the configuration file (default: user config directory)",
		},
		cli.StringFlag{
			Name:  "log",
			Usage: fmt.Sprintf("Comma separated modules with debug logging, or \"all\" (%v)", log.ModuleNames()),
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "run",
			Usage:     "Run a ROM",
			ArgsUsage: "<ROM file>",
			Flags: append(hostFlags,
				cli.StringFlag{
					Name:  "rom",
					Usage: "Path to the ROM file",
				},
				cli.StringFlag{
					Name:  "state",
					Usage: "Save state file written by the save control (default: ROM path with .state extension)",
				},
			),
			Action: runROM,
		},
		{
			Name:      "resume",
			Usage:     "Resume a save state",
			ArgsUsage: "<state file>",
			Flags:     hostFlags,
			Action:    resumeState,
		},
		{
			Name:      "disasm",
			Usage:     "Print a ROM listing",
			ArgsUsage: "<ROM file>",
			Action:    disassemble,
		},
		{
			Name:      "inspect",
			Usage:     "Print a save state as JSON",
			ArgsUsage: "<state file>",
			Action:    inspect,
		},
	}
	return app
}

var hostFlags = []cli.Flag{
	cli.BoolFlag{
		Name:  "headless",
		Usage: "Run the emulator without a graphical interface",
	},
	cli.BoolFlag{
		Name:  "sdl",
		Usage: "Open an SDL2 window instead of drawing in the terminal",
	},
	cli.IntFlag{
		Name:  "frames",
		Usage: "Number of frames to run in headless mode (required for headless)",
	},
	cli.IntFlag{
		Name:  "snapshot-interval",
		Usage: "Save frame snapshots every N frames in headless mode (0 = disabled)",
	},
	cli.StringFlag{
		Name:  "snapshot-dir",
		Usage: "Directory for frame snapshots and screenshots (default: temp directory in headless mode)",
	},
	cli.StringFlag{
		Name:  "fault-policy",
		Usage: "What to do when an instruction faults: halt or skip (overrides the config file)",
	},
}
