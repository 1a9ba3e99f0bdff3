package i2c

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mklimuk/digipot"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

var _ digipot.I2CBus = &GenericBus{}

const DefaultSpeed = 100 * physic.KiloHertz

// GenericBus is a host I2C bus opened through periph.io (/dev/i2c-N on Linux).
type GenericBus struct {
	mx  sync.Mutex
	bus i2c.BusCloser
}

type GenericBusOpts struct {
	Speed physic.Frequency
}

type GenericBusOpt func(*GenericBusOpts)

func WithSpeed(speed physic.Frequency) GenericBusOpt {
	return func(o *GenericBusOpts) {
		o.Speed = speed
	}
}

// NewGenericBus opens bus dev ("1", "I2C1", "/dev/i2c-1"); an empty name picks the first bus found.
func NewGenericBus(dev string, opts ...GenericBusOpt) (*GenericBus, error) {
	config := GenericBusOpts{Speed: DefaultSpeed}
	for _, opt := range opts {
		opt(&config)
	}
	state, err := host.Init()
	if err != nil {
		return nil, fmt.Errorf("could not init host: %w", err)
	}
	for _, driver := range state.Loaded {
		slog.Debug("host driver loaded", "driver", driver.String())
	}
	bus, err := i2creg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("could not open i2c bus %q: %w", dev, err)
	}
	if config.Speed > 0 {
		if err := bus.SetSpeed(config.Speed); err != nil {
			// many kernel drivers only accept the speed from the device tree
			slog.Warn("could not set i2c bus speed", "bus", dev, "speed", config.Speed, "error", err)
		}
	}
	return &GenericBus{
		bus: bus,
	}, nil
}

// Pins returns the SDA and SCL pin numbers of the bus; ok is false when the
// driver does not expose them or reports gpio.INVALID.
func (b *GenericBus) Pins() (sda, scl int, ok bool) {
	p, ok := b.bus.(i2c.Pins)
	if !ok {
		return 0, 0, false
	}
	sda, scl = p.SDA().Number(), p.SCL().Number()
	if sda < 0 || scl < 0 {
		return 0, 0, false
	}
	return sda, scl, true
}

// ReadFromAddr always reports a full buffer; periph does not expose the received count.
func (b *GenericBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) (int, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	err := b.bus.Tx(uint16(address), nil, buffer)
	if err != nil {
		return 0, fmt.Errorf("could not read from i2c bus %x: %w", address, err)
	}
	return len(buffer), nil
}

func (b *GenericBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	err := b.bus.Tx(uint16(address), buffer, nil)
	if err != nil {
		return fmt.Errorf("could not write to i2c bus %x: %w", address, err)
	}
	return nil
}

func (b *GenericBus) Release(ctx context.Context) error {
	return nil
}

func (b *GenericBus) Close() error {
	return b.bus.Close()
}
