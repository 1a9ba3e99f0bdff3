package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	chlog "github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/digipot/board"
	"github.com/mklimuk/digipot/cmd/digipot/console"
	"github.com/mklimuk/digipot/pkg/config"
	"github.com/mklimuk/digipot/potctx"
)

var commit string
var date string

func main() {
	os.Exit(run(os.Args))
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "digipot"
	app.EnableBashCompletion = true
	app.Version = fmt.Sprintf("%s-%s-%s", config.Version, date, commit)
	app.Usage = "DS1803 digital potentiometer cli"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "configuration file (yaml or toml)",
			EnvVars: []string{"DIGIPOT_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "adapter",
			Aliases: []string{"a"},
			Usage:   "bus adapter: periph, mcp2221, nanopi or sim",
		},
		&cli.StringFlag{
			Name:  "bus",
			Usage: "bus name or number",
		},
		&cli.StringFlag{
			Name:  "address",
			Usage: "7-bit device address, e.g. 0x28",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "enable verbose logging",
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "disable colored output",
		},
	}
	app.Before = func(c *cli.Context) error {
		charm := chlog.NewWithOptions(os.Stdout, chlog.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.DateTime,
		})
		charm.SetColorProfile(termenv.TrueColor)
		charm.SetLevel(chlog.InfoLevel)
		if c.Bool("verbose") {
			charm.SetLevel(chlog.DebugLevel)
		}
		if c.Bool("no-color") {
			charm.SetColorProfile(termenv.Ascii)
			console.DisableColors()
		}
		slog.SetDefault(slog.New(charm))
		return nil
	}
	// exit codes are mapped in run
	app.ExitErrHandler = func(*cli.Context, error) {}
	app.Commands = cli.Commands{
		&setCmd,
		&getCmd,
		&tuneCmd,
		&usbCmd,
		&mcp2221Cmd,
	}
	return app
}

func run(args []string) int {
	err := newApp().Run(args)
	if err != nil {
		var exerr cli.ExitCoder
		if errors.As(err, &exerr) {
			console.Errorf("%v", err)
			return exerr.ExitCode()
		}
		log.Printf("unexpected error: %v", err)
		return 1
	}
	return 0
}

// loadConfig reads the configuration file, if any, and applies flag overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return cfg, err
		}
	}
	if c.IsSet("adapter") {
		cfg.Adapter = c.String("adapter")
	}
	if c.IsSet("bus") {
		cfg.Bus = c.String("bus")
	}
	if c.IsSet("address") {
		addr, err := parseAddress(c.String("address"))
		if err != nil {
			return cfg, err
		}
		cfg.Address = addr
	}
	if c.Bool("verbose") {
		cfg.Diagnostics.Level = "debug"
	}
	return cfg, cfg.Validate()
}

func parseAddress(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("could not parse address %q: %w", s, err)
	}
	if v > 0x7F {
		return 0, fmt.Errorf("address %#x is outside the 7-bit range", v)
	}
	return byte(v), nil
}

func openBoard(c *cli.Context) (*board.Board, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, console.Exit(console.ExitInvalid, "configuration error: %s", console.Red(err))
	}
	b, err := board.Init(potctx.SetVerbose(c.Context, c.Bool("verbose")), cfg)
	if err != nil {
		return nil, console.Exit(console.ExitBus, "initialization error: %s", console.Red(err))
	}
	return b, nil
}
