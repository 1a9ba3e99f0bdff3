// Package board brings up a DS1803 driver from a configuration: it opens the
// diagnostic sink, opens the bus and hands back a ready driver.
//
// Init is meant to run once per process. Calling it again opens a second bus handle.
package board

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"gobot.io/x/gobot/v2/platforms/friendlyelec/nanopi"
	"periph.io/x/conn/v3/physic"

	"github.com/mklimuk/digipot"
	"github.com/mklimuk/digipot/adapter"
	"github.com/mklimuk/digipot/i2c"
	"github.com/mklimuk/digipot/pkg/config"
	"github.com/mklimuk/digipot/potentiometer"
)

type Board struct {
	Pot     *potentiometer.DS1803
	Bus     digipot.I2CBus
	Logger  *slog.Logger
	closers []io.Closer
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Init opens the diagnostic sink and the bus described by cfg.
func Init(ctx context.Context, cfg config.Config) (*Board, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	b := &Board{}
	out, err := openDiagnostics(cfg.Diagnostics)
	if err != nil {
		return nil, err
	}
	if out != nil {
		b.closers = append(b.closers, out)
	}
	b.Logger = newLogger(out, cfg.Diagnostics.Level)

	bus, err := b.openBus(ctx, cfg)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	b.Bus = bus
	b.Pot = potentiometer.NewDS1803(bus, potentiometer.WithAddress(cfg.Address), potentiometer.WithLogger(b.Logger))
	b.Logger.Debug("board ready", "adapter", cfg.Adapter, "bus", cfg.Bus, "address", fmt.Sprintf("%#x", cfg.Address))
	return b, nil
}

func (b *Board) openBus(ctx context.Context, cfg config.Config) (digipot.I2CBus, error) {
	switch cfg.Adapter {
	case config.AdapterPeriph:
		bus, err := i2c.NewGenericBus(cfg.Bus, i2c.WithSpeed(physic.Frequency(cfg.SpeedHz)*physic.Hertz))
		if err != nil {
			return nil, fmt.Errorf("could not open periph bus: %w", err)
		}
		b.closers = append(b.closers, bus)
		b.checkPins(bus, cfg.Pins)
		return bus, nil
	case config.AdapterMCP2221:
		bridge := adapter.NewMCP2221()
		if _, err := bridge.Status(ctx); err != nil {
			return nil, fmt.Errorf("could not reach MCP2221 bridge: %w", err)
		}
		return bridge, nil
	case config.AdapterNanoPi:
		npi := nanopi.NewNeoAdaptor()
		if err := npi.I2cBusAdaptor.Connect(); err != nil {
			return nil, fmt.Errorf("adaptor connect error: %w", err)
		}
		b.closers = append(b.closers, closerFunc(npi.I2cBusAdaptor.Finalize))
		busNr, err := parseBusNumber(cfg.Bus)
		if err != nil {
			return nil, err
		}
		bus := i2c.NewGobotBus(npi, busNr)
		b.closers = append(b.closers, bus)
		return bus, nil
	case config.AdapterSim:
		return potentiometer.NewMockDS1803(cfg.Address), nil
	}
	return nil, fmt.Errorf("unknown adapter %q", cfg.Adapter)
}

type pinned interface {
	Pins() (sda, scl int, ok bool)
}

func (b *Board) checkPins(bus pinned, want config.Pins) {
	sda, scl, ok := bus.Pins()
	if !ok {
		b.Logger.Debug("bus does not report its pins")
		return
	}
	if sda != want.SDA || scl != want.SCL {
		b.Logger.Warn("bus pins differ from configuration", "sda", sda, "scl", scl, "want_sda", want.SDA, "want_scl", want.SCL)
	}
}

// Close releases the bus and the diagnostic sink, in reverse order of opening.
func (b *Board) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}

func parseBusNumber(bus string) (int, error) {
	if bus == "" {
		return -1, nil
	}
	n, err := strconv.Atoi(bus)
	if err != nil {
		return 0, fmt.Errorf("bus %q is not a bus number: %w", bus, err)
	}
	return n, nil
}
