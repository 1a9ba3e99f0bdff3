package potentiometer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Wiper is a DS1803 command byte selecting the potentiometer(s) a value applies to.
type Wiper int

// DS1803 command bytes, see datasheet table "Command Words".
const (
	Wiper0    Wiper = 0xA9 // write pot 0
	Wiper1    Wiper = 0xAA // write pot 1
	WiperBoth Wiper = 0xAF // write both pots
)

const (
	MinValue = 0
	MaxValue = 255
)

var ErrInvalidWiper = errors.New("incorrect wiper")
var ErrValueOutOfRange = errors.New("value out of range")

func (w Wiper) String() string {
	if w < 0 {
		return fmt.Sprintf("-0x%02x", -int(w))
	}
	return fmt.Sprintf("0x%02x", int(w))
}

// ParseWiper accepts "0", "1", "both" or a raw command byte such as "0xa9".
// The result is not validated so that raw bytes reach the driver's own checks.
func ParseWiper(s string) (Wiper, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "w0", "wiper0":
		return Wiper0, nil
	case "1", "w1", "wiper1":
		return Wiper1, nil
	case "both", "all", "b":
		return WiperBoth, nil
	}
	v, err := strconv.ParseInt(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, fmt.Errorf("could not parse wiper %q: %w", s, err)
	}
	return Wiper(v), nil
}

func ValidWiper(w Wiper) bool {
	switch w {
	case Wiper0, Wiper1, WiperBoth:
		return true
	}
	return false
}

func ValidValue(v int) bool {
	return v >= MinValue && v <= MaxValue
}

// Validate checks the selector first and does not look at the value when the
// selector is wrong.
func Validate(w Wiper, value int) error {
	if !ValidWiper(w) {
		return fmt.Errorf("%s: %w", w, ErrInvalidWiper)
	}
	if !ValidValue(value) {
		return fmt.Errorf("%d: %w", value, ErrValueOutOfRange)
	}
	return nil
}
