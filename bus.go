package digipot

import (
	"context"
	"fmt"
)

var ErrBusBusy = fmt.Errorf("I2C engine is busy (command not completed)")

type AddressableReader interface {
	// ReadFromAddr requests len(buffer) bytes from the device and returns the
	// number of bytes the device actually sent.
	ReadFromAddr(ctx context.Context, address byte, buffer []byte) (int, error)
}

type AddressableWriter interface {
	WriteToAddr(ctx context.Context, address byte, buffer []byte) error
	Release(ctx context.Context) error
}

type I2CBus interface {
	AddressableReader
	AddressableWriter
}
