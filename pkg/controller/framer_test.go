package controller

import (
	"context"
	"testing"

	"github.com/muxable/hcisocket/pkg/hci"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandRoundTrip(t *testing.T) {
	full := make([]byte, 255)
	for i := range full {
		full[i] = byte(i)
	}
	for _, tc := range []struct {
		opcode hci.Opcode
		params []byte
	}{
		{hci.OpcodeReset, nil},
		{hci.OpcodeLESetScanEnable, []byte{1, 0}},
		{hci.NewOpcode(0x3F, 0x3FF), full},
	} {
		buf := EncodeCommand(tc.opcode, tc.params)
		require.Len(t, buf, 4+len(tc.params))
		assert.Equal(t, byte(hci.PacketTypeCommand), buf[0])

		opcode, params, err := DecodeCommand(buf)
		require.NoError(t, err)
		assert.Equal(t, tc.opcode, opcode)
		assert.Equal(t, len(tc.params), len(params))
		if len(tc.params) > 0 {
			assert.Equal(t, tc.params, params)
		}
	}
}

func TestEncodeCommandWire(t *testing.T) {
	assert.Equal(t, []byte{0x01, 0x0C, 0x20, 0x02, 0x01, 0x00}, EncodeCommand(hci.OpcodeLESetScanEnable, []byte{1, 0}))
}

func TestEncodeCommandTooLong(t *testing.T) {
	assert.Panics(t, func() {
		EncodeCommand(hci.OpcodeReset, make([]byte, 256))
	})
}

func TestDecodeCommandErrors(t *testing.T) {
	_, _, err := DecodeCommand([]byte{0x01, 0x03})
	assert.Error(t, err)

	_, _, err = DecodeCommand([]byte{0x04, 0x03, 0x0C, 0x00})
	assert.ErrorIs(t, err, hci.ErrIncorrectPacket)

	_, _, err = DecodeCommand([]byte{0x01, 0x03, 0x0C, 0x02, 0x00})
	assert.Error(t, err)
}

func TestSendCommand(t *testing.T) {
	sock := newFakeSocket()
	c := New(sock)

	require.NoError(t, c.SendCommand(context.Background(), &hci.LESetAdvertisingEnableCommand{AdvertisingEnable: true}, nil))
	require.NoError(t, c.SendCommand(context.Background(), hci.OpcodeReset, []byte{0xAA}))

	assert.Equal(t, [][]byte{
		{0x01, 0x0A, 0x20, 0x01, 0x01},
		{0x01, 0x03, 0x0C, 0x01, 0xAA},
	}, sock.written())
	assert.Zero(t, sock.setCalls)
}
