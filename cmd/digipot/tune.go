package main

import (
	"context"
	"errors"
	"io"
	"strconv"

	"github.com/chzyer/readline"
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/digipot/cmd/digipot/console"
	"github.com/mklimuk/digipot/potctx"
	"github.com/mklimuk/digipot/potentiometer"
)

const tuneHelp = `commands:
  <0|1|both> <0-255>   set wiper
  get                  read both wipers
  quit                 leave`

var tuneCmd = cli.Command{
	Name:  "tune",
	Usage: "interactive wiper tuning",
	Action: func(c *cli.Context) error {
		b, err := openBoard(c)
		if err != nil {
			return err
		}
		defer func() { _ = b.Close() }()
		shell, err := console.NewShell("ds1803> ")
		if err != nil {
			return console.Exit(console.ExitError, "could not start shell: %s", console.Red(err))
		}
		defer func() { _ = shell.Close() }()
		ctx := potctx.SetVerbose(c.Context, c.Bool("verbose"))
		console.Printf("%s\n", console.Faint(tuneHelp))
		for {
			fields, err := shell.Next()
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				return nil
			}
			if err != nil {
				return console.Exit(console.ExitError, "input error: %s", console.Red(err))
			}
			if !tuneStep(ctx, b.Pot, fields) {
				return nil
			}
		}
	},
}

// tuneStep runs one shell command and reports whether the session continues.
func tuneStep(ctx context.Context, pot *potentiometer.DS1803, fields []string) bool {
	switch fields[0] {
	case "quit", "exit", "q":
		return false
	case "help", "?":
		console.Printf("%s\n", tuneHelp)
		return true
	case "get", "read":
		r, err := pot.GetWipers(ctx)
		printReading(r)
		if err != nil {
			console.Warnf("%s", err)
		}
		return true
	}
	if len(fields) != 2 {
		console.Warnf("expected <wiper> <value>")
		return true
	}
	wiper, err := potentiometer.ParseWiper(fields[0])
	if err != nil {
		console.Warnf("%s", err)
		return true
	}
	value, err := strconv.Atoi(fields[1])
	if err != nil {
		console.Warnf("could not parse value %q", fields[1])
		return true
	}
	if err := pot.SetWiper(ctx, wiper, value); err != nil {
		console.Errorf("%s", err)
	}
	return true
}
