package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/digipot/cmd/digipot/console"
	"github.com/mklimuk/digipot/potctx"
	"github.com/mklimuk/digipot/potentiometer"
)

// confirm asks before a command touches both wipers; replaced in tests.
var confirm = console.YesOrNo

var setCmd = cli.Command{
	Name:      "set",
	Usage:     "set wiper position",
	ArgsUsage: "<0|1|both> <0-255>",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "do not ask before setting both wipers"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return console.Exit(console.ExitInvalid, "expected 2 arguments, got %d", c.NArg())
		}
		wiper, err := potentiometer.ParseWiper(c.Args().Get(0))
		if err != nil {
			return console.Exit(console.ExitInvalid, "%s", console.Red(err))
		}
		value, err := strconv.Atoi(c.Args().Get(1))
		if err != nil {
			return console.Exit(console.ExitInvalid, "could not parse value: %s", console.Red(err))
		}
		if wiper == potentiometer.WiperBoth && !c.Bool("yes") {
			ok, err := confirm(fmt.Sprintf("set both wipers to %d?", value), true)
			if err != nil {
				return console.Exit(console.ExitError, "could not read confirmation: %s", console.Red(err))
			}
			if !ok {
				console.PInfof(console.PictoStop, "aborted")
				return nil
			}
		}
		b, err := openBoard(c)
		if err != nil {
			return err
		}
		defer func() { _ = b.Close() }()
		ctx := potctx.SetVerbose(c.Context, c.Bool("verbose"))
		if err := b.Pot.SetWiper(ctx, wiper, value); err != nil {
			return exitFor(err)
		}
		console.PInfof(console.PictoKnob, "wiper %s set to %s", console.White(wiper), console.White(value))
		return nil
	},
}

var getCmd = cli.Command{
	Name:    "get",
	Aliases: []string{"read"},
	Usage:   "read both wiper positions",
	Action: func(c *cli.Context) error {
		b, err := openBoard(c)
		if err != nil {
			return err
		}
		defer func() { _ = b.Close() }()
		ctx := potctx.SetVerbose(c.Context, c.Bool("verbose"))
		reading, err := b.Pot.GetWipers(ctx)
		printReading(reading)
		if err != nil {
			return exitFor(err)
		}
		return nil
	},
}

func printReading(r potentiometer.Reading) {
	for i := 0; i < 2; i++ {
		if v, ok := r.Wiper(i); ok {
			console.PInfof(console.PictoKnob, "wiper %d: %s", i, console.White(v))
			continue
		}
		console.PInfof(console.PictoGhost, "wiper %d: %s", i, console.Yellow("no data"))
	}
}

func exitFor(err error) cli.ExitCoder {
	switch {
	case errors.Is(err, potentiometer.ErrInvalidWiper), errors.Is(err, potentiometer.ErrValueOutOfRange):
		return console.Exit(console.ExitInvalid, "rejected: %s", console.Red(err))
	case errors.Is(err, potentiometer.ErrShortRead):
		return console.Exit(console.ExitBus, "incomplete reply: %s", console.Yellow(err))
	}
	return console.Exit(console.ExitBus, "bus error: %s", console.Red(err))
}
