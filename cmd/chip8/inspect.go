package main

import (
	"errors"
	"os"

	"github.com/urfave/cli"

	"github.com/valerio/go-chip8/chip8/disasm"
	"github.com/valerio/go-chip8/chip8/snapshot"
)

func disassemble(c *cli.Context) error {
	if c.NArg() == 0 {
		cli.ShowCommandHelp(c, "disasm")
		return errors.New("no ROM path provided")
	}
	rom, err := os.ReadFile(c.Args().Get(0))
	if err != nil {
		return err
	}
	return disasm.Write(c.App.Writer, rom)
}

func inspect(c *cli.Context) error {
	if c.NArg() == 0 {
		cli.ShowCommandHelp(c, "inspect")
		return errors.New("no state file provided")
	}
	state, err := snapshot.Load(c.Args().Get(0))
	if err != nil {
		return err
	}
	return snapshot.WriteJSON(c.App.Writer, state)
}
