package potentiometer

import (
	"context"
	"fmt"
	"sync"

	"github.com/mklimuk/digipot"
)

var _ digipot.I2CBus = &MockDS1803{}

// Transaction is one write or read seen by MockDS1803.
type Transaction struct {
	Address byte
	Read    bool
	Data    []byte
}

// MockDS1803 simulates one or more DS1803 chips sitting on a bus.
// It applies write commands to its wiper registers and answers reads with
// pot 0 followed by pot 1, which makes it usable without any hardware.
//
// Example usage:
//
//	sim := NewMockDS1803(DS1803BaseAddress)
//	pot := NewDS1803(sim)
//	_ = pot.SetWiper(ctx, Wiper0, 128)
//	r, _ := pot.GetWipers(ctx) // wiper0=128 wiper1=0
//
//	// chip that drops the second byte
//	sim.SetReplyLength(1)
type MockDS1803 struct {
	mx       sync.Mutex
	wipers   map[byte]*[2]byte
	replyLen int
	log      []Transaction
}

// NewMockDS1803 creates a simulated device answering on each of the given addresses.
func NewMockDS1803(addresses ...byte) *MockDS1803 {
	m := &MockDS1803{
		wipers:   make(map[byte]*[2]byte),
		replyLen: ds1803ReadLength,
	}
	for _, addr := range addresses {
		m.wipers[addr] = &[2]byte{}
	}
	return m
}

// SetReplyLength limits how many bytes the chip sends back on a read.
func (m *MockDS1803) SetReplyLength(n int) {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.replyLen = max(n, 0)
}

// SetWipers presets the wiper registers of the chip at address.
func (m *MockDS1803) SetWipers(address byte, w0, w1 byte) {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.wipers[address] = &[2]byte{w0, w1}
}

// Transactions returns a copy of every transaction seen so far.
func (m *MockDS1803) Transactions() []Transaction {
	m.mx.Lock()
	defer m.mx.Unlock()
	out := make([]Transaction, len(m.log))
	copy(out, m.log)
	return out
}

func (m *MockDS1803) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.log = append(m.log, Transaction{Address: address, Data: append([]byte(nil), buffer...)})
	regs, ok := m.wipers[address]
	if !ok {
		return fmt.Errorf("no device at %#x", address)
	}
	if len(buffer) != 2 {
		// the chip ignores incomplete commands
		return nil
	}
	switch Wiper(buffer[0]) {
	case Wiper0:
		regs[0] = buffer[1]
	case Wiper1:
		regs[1] = buffer[1]
	case WiperBoth:
		regs[0] = buffer[1]
		regs[1] = buffer[1]
	}
	return nil
}

func (m *MockDS1803) ReadFromAddr(ctx context.Context, address byte, buffer []byte) (int, error) {
	m.mx.Lock()
	defer m.mx.Unlock()
	regs, ok := m.wipers[address]
	if !ok {
		m.log = append(m.log, Transaction{Address: address, Read: true})
		return 0, fmt.Errorf("no device at %#x", address)
	}
	n := copy(buffer, regs[:min(m.replyLen, len(regs))])
	m.log = append(m.log, Transaction{Address: address, Read: true, Data: append([]byte(nil), buffer[:n]...)})
	return n, nil
}

func (m *MockDS1803) Release(ctx context.Context) error {
	return nil
}
