package i2c

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gobot "gobot.io/x/gobot/v2/drivers/i2c"
)

type fakeConnection struct {
	gobot.Connection
	mx      sync.Mutex
	reply   []byte
	written [][]byte
	closed  bool
}

func (c *fakeConnection) Read(b []byte) (int, error) {
	c.mx.Lock()
	defer c.mx.Unlock()
	return copy(b, c.reply), nil
}

func (c *fakeConnection) Write(b []byte) (int, error) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.written = append(c.written, append([]byte(nil), b...))
	return len(b), nil
}

func (c *fakeConnection) Close() error {
	c.closed = true
	return nil
}

type fakeConnector struct {
	conns  map[int]*fakeConnection
	opened int
	busNr  int
}

func (f *fakeConnector) GetI2cConnection(address int, busNr int) (gobot.Connection, error) {
	conn, ok := f.conns[address]
	if !ok {
		return nil, errors.New("no device")
	}
	f.opened++
	f.busNr = busNr
	return conn, nil
}

func (f *fakeConnector) DefaultI2cBus() int {
	return 0
}

func TestGobotBus_ReadWrite(t *testing.T) {
	dev := &fakeConnection{reply: []byte{7}}
	connector := &fakeConnector{conns: map[int]*fakeConnection{0x28: dev}}
	bus := NewGobotBus(connector, 1)
	ctx := context.Background()

	require.NoError(t, bus.WriteToAddr(ctx, 0x28, []byte{0xA9, 10}))
	buf := make([]byte, 2)
	n, err := bus.ReadFromAddr(ctx, 0x28, buf)
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.Equal(t, byte(7), buf[0])
	assert.Equal(t, [][]byte{{0xA9, 10}}, dev.written)
	assert.Equal(t, 1, connector.opened, "connection is reused")
	assert.Equal(t, 1, connector.busNr)

	require.NoError(t, bus.Close())
	assert.True(t, dev.closed)
}

func TestGobotBus_DefaultBus(t *testing.T) {
	connector := &fakeConnector{busNr: -1}
	bus := NewGobotBus(connector, -1)
	assert.Equal(t, 0, bus.busNr)

	err := bus.WriteToAddr(context.Background(), 0x2F, []byte{0xAA, 1})
	assert.Error(t, err)
}

func TestGobotBus_Concurrent(t *testing.T) {
	const workers = 40
	addrs := []byte{0x28, 0x29, 0x2A, 0x2B}
	connector := &fakeConnector{conns: map[int]*fakeConnection{}}
	for _, a := range addrs {
		connector.conns[int(a)] = &fakeConnection{reply: []byte{a, a}}
	}
	bus := NewGobotBus(connector, 1)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			addr := addrs[i%len(addrs)]
			assert.NoError(t, bus.WriteToAddr(ctx, addr, []byte{0xA9, byte(i)}))
			buf := make([]byte, 2)
			n, err := bus.ReadFromAddr(ctx, addr, buf)
			assert.NoError(t, err)
			assert.Equal(t, 2, n)
			assert.Equal(t, []byte{addr, addr}, buf)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, len(addrs), connector.opened, "one connection per address")
	for _, a := range addrs {
		assert.Len(t, connector.conns[int(a)].written, workers/len(addrs))
	}
	require.NoError(t, bus.Close())
}
