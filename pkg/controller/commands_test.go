package controller

import (
	"context"
	"testing"
	"time"

	"github.com/muxable/hcisocket/pkg/hci"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// controllerStub answers each command with the return parameters registered
// for its opcode, or a bare success status.
func controllerStub(t *testing.T, returns map[hci.Opcode][]byte) *fakeSocket {
	sock := newFakeSocket()
	sock.onWrite = func(s *fakeSocket, p []byte) {
		op, _, err := DecodeCommand(p)
		assert.NoError(t, err)
		ret, ok := returns[op]
		if !ok {
			ret = []byte{0x00}
		}
		s.push(commandComplete(op, ret...))
	}
	return sock
}

func TestTypedCommands(t *testing.T) {
	name := make([]byte, 1+248)
	copy(name[1:], "hci0 test")
	sock := controllerStub(t, map[hci.Opcode][]byte{
		hci.OpcodeReadBDAddr:               {0x00, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01},
		hci.OpcodeReadLocalName:            name,
		hci.OpcodeReadFilterAcceptListSize: {0x00, 0x08},
		hci.OpcodeLEReadBufferSize:         {0x00, 0xFB, 0x00, 0x0F},
		hci.OpcodeLEReadSupportedStates:    {0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x03, 0x00, 0x00},
	})
	c := New(sock)
	ctx := context.Background()

	require.NoError(t, c.Reset(ctx))

	addr, err := c.ReadBDAddr(ctx)
	require.NoError(t, err)
	assert.Equal(t, "01:02:03:04:05:06", addr.String())

	n, err := c.ReadLocalName(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hci0 test", n)

	require.NoError(t, c.ClearFilterAcceptList(ctx))

	size, err := c.ReadFilterAcceptListSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint8(8), size)

	require.NoError(t, c.SetEventMask(ctx, hci.EventMaskLEMetaEvent))
	require.NoError(t, c.LESetEventMask(ctx, hci.LEEventMaskAdvertisingReportEvent))

	bs, err := c.LEReadBufferSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint16(251), bs.LEACLDataPacketLength)
	assert.Equal(t, uint8(15), bs.TotalNumLEACLDataPackets)

	states, err := c.LEReadSupportedStates(ctx)
	require.NoError(t, err)
	assert.Equal(t, hci.LESupportedStates(0x3FFFFFFFFFF), states)

	require.NoError(t, c.SetAdvertisingData(ctx, []hci.DataType{hci.CompleteLocalName("Muxer")}))
	require.NoError(t, c.LESetAdvertisingEnable(ctx, true))
	require.NoError(t, c.LESetScanParameters(ctx, hci.LESetScanParametersCommand{LEScanInterval: 0x10, LEScanWindow: 0x10}))
	require.NoError(t, c.LESetScanEnable(ctx, true, true))

	w := sock.written()
	require.Len(t, w, 13)
	assert.Equal(t, []byte{0x01, 0x01, 0x0C, 0x08, 0, 0, 0, 0, 0, 0, 0, 0x20}, w[5])
	assert.Equal(t, []byte{0x01, 0x01, 0x20, 0x08, 0x02, 0, 0, 0, 0, 0, 0, 0}, w[6])

	op, params, err := DecodeCommand(w[9])
	require.NoError(t, err)
	assert.Equal(t, hci.OpcodeSetAdvertisingData, op)
	require.Len(t, params, 32)
	assert.Equal(t, []byte{7, 6, 0x09, 'M', 'u', 'x', 'e', 'r'}, params[:8])

	assert.Equal(t, initialFilter, sock.currentFilter())
}

func TestLESetAdvertisingParameters(t *testing.T) {
	sock := controllerStub(t, nil)
	c := New(sock)
	ctx := context.Background()

	require.NoError(t, c.LESetAdvertisingParameters(ctx, hci.LESetAdvertisingParametersCommand{}))
	_, params, err := DecodeCommand(sock.written()[0])
	require.NoError(t, err)
	var p hci.LESetAdvertisingParametersCommand
	require.NoError(t, p.Unmarshal(params))
	assert.Equal(t, hci.AdvertisingIntervalDefault, p.AdvertisingIntervalMin)
	assert.Equal(t, hci.AdvertisingIntervalDefault, p.AdvertisingIntervalMax)
	assert.Equal(t, hci.AdvertisingChannelMapDefault, p.AdvertisingChannelMap)

	for _, bad := range []hci.LESetAdvertisingParametersCommand{
		{AdvertisingIntervalMin: 0x0010, AdvertisingIntervalMax: 0x0100},
		{AdvertisingIntervalMin: 0x0100, AdvertisingIntervalMax: 0x4001},
		{AdvertisingIntervalMin: 0x0200, AdvertisingIntervalMax: 0x0100},
	} {
		assert.Error(t, c.LESetAdvertisingParameters(ctx, bad))
	}
	assert.Len(t, sock.written(), 1)
}

func TestRemoteName(t *testing.T) {
	addr := hci.BDAddr{0xA1, 0xA2, 0xA3, 0xA4, 0xA5, 0xA6}
	stale := hci.RemoteNameRequestComplete{Address: hci.BDAddr{1}, Name: "stale"}
	staleBuf, err := stale.Marshal()
	require.NoError(t, err)
	answer := hci.RemoteNameRequestComplete{Address: addr, Name: "headset"}
	answerBuf, err := answer.Marshal()
	require.NoError(t, err)

	sock := newFakeSocket(
		commandStatus(0x00, hci.OpcodeRemoteNameRequest),
		hci.EncodeEvent(hci.EventCodeRemoteNameRequestComplete, staleBuf),
		hci.EncodeEvent(hci.EventCodeRemoteNameRequestComplete, answerBuf),
	)
	c := New(sock)

	n, err := c.RemoteName(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, "headset", n)
	assert.Equal(t, RemoteNameTimeout, sock.pollTimeouts[0])

	_, params, err := DecodeCommand(sock.written()[0])
	require.NoError(t, err)
	var cmd hci.RemoteNameRequestCommand
	require.NoError(t, cmd.Unmarshal(params))
	assert.Equal(t, addr, cmd.Address)
}

func TestRemoteNameFailure(t *testing.T) {
	addr := hci.BDAddr{0xA1, 0xA2, 0xA3, 0xA4, 0xA5, 0xA6}
	failed := hci.RemoteNameRequestComplete{Status: uint8(hci.ErrPageTimeout), Address: addr}
	buf, err := failed.Marshal()
	require.NoError(t, err)

	sock := newFakeSocket(
		commandStatus(0x00, hci.OpcodeRemoteNameRequest),
		hci.EncodeEvent(hci.EventCodeRemoteNameRequestComplete, buf[:hci.RemoteNameRequestCompleteHeaderSize]),
	)
	c := New(sock)

	_, err = c.RemoteName(context.Background(), addr, WithTimeout(time.Second))
	assert.ErrorIs(t, err, hci.ErrPageTimeout)
	assert.Equal(t, time.Second, sock.pollTimeouts[0])
}

func TestInquiry(t *testing.T) {
	sock := newFakeSocket(commandStatus(0x00, hci.OpcodeInquiry))
	c := New(sock)

	require.NoError(t, c.Inquiry(context.Background(), 8, 0))
	assert.Equal(t, []byte{0x01, 0x01, 0x04, 0x05, 0x33, 0x8B, 0x9E, 0x08, 0x00}, sock.written()[0])

	sock.push(commandStatus(uint8(hci.ErrCommandDisallowed), hci.OpcodeInquiry))
	assert.ErrorIs(t, c.Inquiry(context.Background(), 8, 0), hci.ErrCommandDisallowed)
}
