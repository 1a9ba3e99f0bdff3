package potentiometer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidWiper(t *testing.T) {
	for w := Wiper(-256); w <= 0x1FF; w++ {
		expected := w == Wiper0 || w == Wiper1 || w == WiperBoth
		assert.Equal(t, expected, ValidWiper(w), "wiper %s", w)
	}
}

func TestValidValue(t *testing.T) {
	for v := 0; v <= 255; v++ {
		assert.True(t, ValidValue(v), "value %d", v)
	}
	for _, v := range []int{-1, 256, -256, -255, 511, 1 << 20} {
		assert.False(t, ValidValue(v), "value %d", v)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		wiper    Wiper
		value    int
		expected error
	}{
		{"wiper 0 low", Wiper0, 0, nil},
		{"wiper 1 high", Wiper1, 255, nil},
		{"both", WiperBoth, 17, nil},
		{"bad wiper", Wiper(0x07), 10, ErrInvalidWiper},
		{"bad wiper masks bad value", Wiper(0x07), 300, ErrInvalidWiper},
		{"value too high", Wiper1, 300, ErrValueOutOfRange},
		{"value negative", Wiper0, -1, ErrValueOutOfRange},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := Validate(test.wiper, test.value)
			if test.expected == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, test.expected)
		})
	}
}

func TestWiper_String(t *testing.T) {
	assert.Equal(t, "0xa9", Wiper0.String())
	assert.Equal(t, "0xaa", Wiper1.String())
	assert.Equal(t, "0xaf", WiperBoth.String())
	assert.Equal(t, "0x07", Wiper(7).String())
	assert.Equal(t, "0x00", Wiper(0).String())
	assert.Equal(t, "-0x01", Wiper(-1).String())
}

func TestParseWiper(t *testing.T) {
	tests := []struct {
		given    string
		expected Wiper
	}{
		{"0", Wiper0},
		{"1", Wiper1},
		{"both", WiperBoth},
		{"BOTH", WiperBoth},
		{"0xa9", Wiper0},
		{"0x07", Wiper(7)},
	}
	for _, test := range tests {
		t.Run(test.given, func(t *testing.T) {
			w, err := ParseWiper(test.given)
			require.NoError(t, err)
			assert.Equal(t, test.expected, w)
		})
	}
	_, err := ParseWiper("left")
	assert.Error(t, err)
}
