package potentiometer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mklimuk/digipot"
)

// DS1803 7-bit address is 0101 A2 A1 A0, so chips answer on 0x28-0x2F.
const DS1803BaseAddress = 0x28

// the device always answers a read with pot 0 followed by pot 1
const ds1803ReadLength = 2

var ErrShortRead = errors.New("short read")

// DS1803 represents a Maxim DS1803 addressable dual digital potentiometer.
// See: https://www.analog.com/media/en/technical-documentation/data-sheets/DS1803.pdf
//
// The driver keeps no wiper state; every call is a self-contained bus transaction.
type DS1803 struct {
	mx        sync.Mutex
	transport digipot.I2CBus
	address   byte
	logger    *slog.Logger
}

type DS1803Config struct {
	Address byte
	Logger  *slog.Logger
}

type DS1803ConfigOption func(*DS1803Config)

// WithAddress sets the address used by SetWiper and GetWipers.
func WithAddress(address byte) DS1803ConfigOption {
	return func(c *DS1803Config) {
		c.Address = address
	}
}

// WithLogger sets the diagnostic sink. slog.Default() is used otherwise.
func WithLogger(logger *slog.Logger) DS1803ConfigOption {
	return func(c *DS1803Config) {
		c.Logger = logger
	}
}

func NewDS1803(trans digipot.I2CBus, opts ...DS1803ConfigOption) *DS1803 {
	config := &DS1803Config{
		Address: DS1803BaseAddress,
	}
	for _, opt := range opts {
		opt(config)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &DS1803{transport: trans, address: config.Address, logger: config.Logger}
}

func (p *DS1803) Address() byte {
	return p.address
}

// WriteWiper sends the two byte command/value pair for wiper to the chip at address.
// Nothing is put on the bus when the wiper or the value is invalid.
func (p *DS1803) WriteWiper(ctx context.Context, address byte, wiper Wiper, value int) error {
	if !p.checkWiper(wiper) || !p.checkValue(value) {
		return Validate(wiper, value)
	}
	p.mx.Lock()
	err := p.transport.WriteToAddr(ctx, address, []byte{byte(wiper), byte(value)})
	p.mx.Unlock()
	if err != nil {
		return fmt.Errorf("ds1803: could not write wiper %s at %#x: %w", wiper, address, err)
	}
	p.logger.Info(fmt.Sprintf("writing %d to wiper %s", value, wiper))
	return nil
}

// SetWiper is WriteWiper on the configured address.
func (p *DS1803) SetWiper(ctx context.Context, wiper Wiper, value int) error {
	return p.WriteWiper(ctx, p.address, wiper, value)
}

// ReadWipers reads both wiper positions from the chip at address. When the chip
// sends fewer than two bytes the partial reading is returned along with ErrShortRead.
func (p *DS1803) ReadWipers(ctx context.Context, address byte) (Reading, error) {
	buf := make([]byte, ds1803ReadLength)
	p.mx.Lock()
	n, err := p.transport.ReadFromAddr(ctx, address, buf)
	p.mx.Unlock()
	if err != nil {
		return Reading{}, fmt.Errorf("ds1803: could not read wipers at %#x: %w", address, err)
	}
	n = min(max(n, 0), len(buf))
	reading := Reading{values: buf[:n]}
	for i, v := range reading.values {
		p.logger.Info(fmt.Sprintf("wiper %d is %d", i, v))
	}
	if n < ds1803ReadLength {
		return reading, fmt.Errorf("ds1803: got %d of %d bytes from %#x: %w", n, ds1803ReadLength, address, ErrShortRead)
	}
	return reading, nil
}

// GetWipers is ReadWipers on the configured address.
func (p *DS1803) GetWipers(ctx context.Context) (Reading, error) {
	return p.ReadWipers(ctx, p.address)
}

func (p *DS1803) checkWiper(wiper Wiper) bool {
	if ValidWiper(wiper) {
		return true
	}
	p.logger.Warn(fmt.Sprintf("%s is incorrect wiper.", wiper))
	return false
}

func (p *DS1803) checkValue(value int) bool {
	if ValidValue(value) {
		return true
	}
	p.logger.Warn(fmt.Sprintf("%d is out of range.", value))
	return false
}

// Reading holds the wiper positions returned by a single read.
type Reading struct {
	values []byte
}

// Wiper returns the position of wiper i (0 or 1) and whether the chip sent it.
func (r Reading) Wiper(i int) (byte, bool) {
	if i < 0 || i >= len(r.values) {
		return 0, false
	}
	return r.values[i], true
}

func (r Reading) Count() int {
	return len(r.values)
}

func (r Reading) Complete() bool {
	return len(r.values) == ds1803ReadLength
}

func (r Reading) String() string {
	s := ""
	for i := 0; i < ds1803ReadLength; i++ {
		if i > 0 {
			s += " "
		}
		if v, ok := r.Wiper(i); ok {
			s += fmt.Sprintf("wiper%d=%d", i, v)
		} else {
			s += fmt.Sprintf("wiper%d=?", i)
		}
	}
	return s
}
