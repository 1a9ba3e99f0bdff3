package board

import (
	"context"
	"testing"

	chlog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/digipot/pkg/config"
	"github.com/mklimuk/digipot/potentiometer"
)

func TestInit_Sim(t *testing.T) {
	cfg := config.Default()
	cfg.Adapter = config.AdapterSim
	cfg.Address = 0x2C
	ctx := context.Background()

	b, err := Init(ctx, cfg)
	require.NoError(t, err)
	defer func() { assert.NoError(t, b.Close()) }()

	assert.Equal(t, byte(0x2C), b.Pot.Address())
	require.NoError(t, b.Pot.SetWiper(ctx, potentiometer.Wiper0, 128))
	require.NoError(t, b.Pot.SetWiper(ctx, potentiometer.Wiper1, 200))
	r, err := b.Pot.GetWipers(ctx)
	require.NoError(t, err)
	assert.Equal(t, "wiper0=128 wiper1=200", r.String())
}

func TestInit_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Adapter = "ftdi"
	_, err := Init(context.Background(), cfg)
	assert.Error(t, err)
}

func TestInit_MissingDiagnosticsPort(t *testing.T) {
	cfg := config.Default()
	cfg.Adapter = config.AdapterSim
	cfg.Diagnostics.Port = "/dev/does-not-exist-digipot"
	_, err := Init(context.Background(), cfg)
	assert.Error(t, err)
}

func TestParseBusNumber(t *testing.T) {
	n, err := parseBusNumber("2")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = parseBusNumber("")
	require.NoError(t, err)
	assert.Equal(t, -1, n)

	_, err = parseBusNumber("I2C1")
	assert.Error(t, err)

	_, err = parseBusNumber("1abc")
	assert.Error(t, err, "trailing garbage is rejected")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, chlog.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, chlog.WarnLevel, parseLevel("warn"))
	assert.Equal(t, chlog.ErrorLevel, parseLevel("error"))
	assert.Equal(t, chlog.FatalLevel, parseLevel("fatal"))
	assert.Equal(t, chlog.InfoLevel, parseLevel(""))
	assert.Equal(t, chlog.InfoLevel, parseLevel("loud"))
}

type closeCounter struct{ closed []int }

func TestBoard_CloseOrder(t *testing.T) {
	cc := &closeCounter{}
	b := &Board{}
	for i := 0; i < 3; i++ {
		i := i
		b.closers = append(b.closers, closerFunc(func() error {
			cc.closed = append(cc.closed, i)
			return nil
		}))
	}
	require.NoError(t, b.Close())
	assert.Equal(t, []int{2, 1, 0}, cc.closed)
	assert.NoError(t, b.Close())
}
