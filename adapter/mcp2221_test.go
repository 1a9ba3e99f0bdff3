package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getDataResponse(status byte, data ...byte) []byte {
	resp := make([]byte, reportSize)
	resp[0] = cmdI2CGetData
	resp[1] = status
	resp[3] = byte(len(data))
	copy(resp[4:], data)
	return resp
}

func TestDecodeReadData(t *testing.T) {
	buf := make([]byte, 2)
	n, err := decodeReadData(getDataResponse(statusOK, 128, 200), buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{128, 200}, buf)
}

func TestDecodeReadData_Short(t *testing.T) {
	buf := make([]byte, 2)
	n, err := decodeReadData(getDataResponse(statusOK, 42), buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, byte(42), buf[0])
}

func TestDecodeReadData_Errors(t *testing.T) {
	buf := make([]byte, 2)
	_, err := decodeReadData(getDataResponse(getDataEngineErr), buf)
	assert.Error(t, err)

	resp := getDataResponse(statusOK)
	resp[3] = readErrorMarker
	_, err = decodeReadData(resp, buf)
	assert.Error(t, err)

	_, err = decodeReadData(getDataResponse(statusOK, 1, 2, 3), buf)
	assert.Error(t, err)
}

func TestBufferToStatus(t *testing.T) {
	buf := make([]byte, reportSize)
	buf[9], buf[10] = 0x02, 0x00
	buf[11], buf[12] = 0x01, 0x00
	buf[13] = 3
	buf[14] = 0x76
	buf[15] = 9
	buf[16], buf[17] = 0x50, 0x00
	buf[25] = 1

	status := bufferToStatus(buf)

	assert.Equal(t, &MCP2221Status{
		I2CDataBufferCounter:   3,
		I2CSpeedDivider:        0x76,
		I2CTimeout:             9,
		CurrentAddress:         "5000",
		LastWriteRequestedSize: 2,
		LastWriteSentSize:      1,
		ReadPending:            1,
	}, status)
}

func TestMCP2221_PayloadLimit(t *testing.T) {
	d := NewMCP2221()
	err := d.WriteToAddr(context.Background(), 0x28, make([]byte, maxPayload+1))
	assert.Error(t, err)
	_, err = d.ReadFromAddr(context.Background(), 0x28, make([]byte, maxPayload+1))
	assert.Error(t, err)
}
