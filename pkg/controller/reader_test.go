package controller

import (
	"errors"
	"testing"
	"time"

	"github.com/muxable/hcisocket/pkg/hci"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func completeExpectation(op hci.Opcode, length int) expectation {
	return expectation{
		opcode:  op,
		event:   hci.EventCodeCommandComplete,
		length:  length,
		timeout: time.Second,
	}
}

func TestAwaitSkipsOtherOpcode(t *testing.T) {
	sock := newFakeSocket(
		commandComplete(hci.OpcodeReset, 0x00),
		commandComplete(hci.OpcodeReadBDAddr, 0x00, 1, 2, 3, 4, 5, 6),
	)
	c := New(sock)

	payload, err := c.awaitResponse(completeExpectation(hci.OpcodeReadBDAddr, 7))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 1, 2, 3, 4, 5, 6}, payload)
	assert.Equal(t, 2, sock.reads)
}

func TestAwaitTruncatesToLength(t *testing.T) {
	sock := newFakeSocket(commandComplete(hci.OpcodeReadBDAddr, 0x00, 1, 2, 3, 4, 5, 6, 7, 8))
	c := New(sock)

	payload, err := c.awaitResponse(completeExpectation(hci.OpcodeReadBDAddr, 3))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 1, 2}, payload)
}

func TestAwaitNeverReadable(t *testing.T) {
	sock := newFakeSocket()
	c := New(sock)

	start := time.Now()
	_, err := c.awaitResponse(completeExpectation(hci.OpcodeReset, 1))
	assert.ErrorIs(t, err, ErrTimedOut)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, sock.pollCalls)
	assert.Zero(t, sock.reads)
}

func TestAwaitTimeoutBudget(t *testing.T) {
	// every poll is interrupted, so only the budget ends the loop
	sock := newFakeSocket()
	for i := 0; i < 100; i++ {
		sock.polls = append(sock.polls, pollResult{err: unix.EINTR})
	}
	c := New(sock)

	e := completeExpectation(hci.OpcodeReset, 1)
	e.timeout = 50 * time.Millisecond
	_, err := c.awaitResponse(e)
	assert.ErrorIs(t, err, ErrTimedOut)
	assert.Equal(t, 5, sock.pollCalls)
	assert.Equal(t, []time.Duration{
		50 * time.Millisecond,
		40 * time.Millisecond,
		30 * time.Millisecond,
		20 * time.Millisecond,
		10 * time.Millisecond,
	}, sock.pollTimeouts)
}

func TestAwaitAttemptLimit(t *testing.T) {
	sock := newFakeSocket()
	for i := 0; i < 20; i++ {
		sock.push(commandComplete(hci.OpcodeReset, 0x00))
	}
	c := New(sock)

	e := completeExpectation(hci.OpcodeReadBDAddr, 7)
	e.timeout = time.Hour
	_, err := c.awaitResponse(e)
	assert.ErrorIs(t, err, ErrTimedOut)
	assert.Equal(t, DefaultMaxAttempts, sock.reads)
}

func TestAwaitMaxAttemptsOption(t *testing.T) {
	sock := newFakeSocket()
	for i := 0; i < 5; i++ {
		sock.push(commandComplete(hci.OpcodeReset, 0x00))
	}
	c := New(sock, WithMaxAttempts(2))

	_, err := c.awaitResponse(completeExpectation(hci.OpcodeReadBDAddr, 7))
	assert.ErrorIs(t, err, ErrTimedOut)
	assert.Equal(t, 2, sock.reads)
}

func TestAwaitRetriesTransientErrors(t *testing.T) {
	sock := newFakeSocket(commandComplete(hci.OpcodeReset, 0x00))
	sock.polls = []pollResult{{err: unix.EAGAIN}, {err: unix.EINTR}}
	sock.readErrs = []error{unix.EINTR, unix.EAGAIN}
	c := New(sock, WithMaxAttempts(1))

	payload, err := c.awaitResponse(completeExpectation(hci.OpcodeReset, 1))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, payload)
	assert.Equal(t, 3, sock.reads)
}

func TestAwaitPropagatesErrors(t *testing.T) {
	ebadf := errors.New("bad file descriptor")

	sock := newFakeSocket()
	sock.polls = []pollResult{{err: ebadf}}
	_, err := New(sock).awaitResponse(completeExpectation(hci.OpcodeReset, 1))
	assert.ErrorIs(t, err, ebadf)

	sock = newFakeSocket()
	sock.readErrs = []error{unix.ENETDOWN}
	_, err = New(sock).awaitResponse(completeExpectation(hci.OpcodeReset, 1))
	assert.ErrorIs(t, err, unix.ENETDOWN)
}

func TestAwaitBlockingRead(t *testing.T) {
	sock := newFakeSocket(commandComplete(hci.OpcodeReset, 0x00))
	c := New(sock)

	e := completeExpectation(hci.OpcodeReset, 1)
	e.timeout = 0
	payload, err := c.awaitResponse(e)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, payload)
	assert.Zero(t, sock.pollCalls)
}

func TestAwaitGarbage(t *testing.T) {
	for name, frame := range map[string][]byte{
		"short frame":             {0x04, 0x0E},
		"length beyond read":      {0x04, 0x0E, 0x05, 0x01, 0x03},
		"short command complete":  {0x04, 0x0E, 0x02, 0x01, 0x03},
		"short command status":    {0x04, 0x0F, 0x03, 0x00, 0x01, 0x03},
		"empty meta event":        {0x04, 0x3E, 0x00},
		"short remote name event": {0x04, 0x07, 0x03, 0x00, 0x01, 0x02},
	} {
		t.Run(name, func(t *testing.T) {
			sock := newFakeSocket(frame)
			c := New(sock)

			e := completeExpectation(hci.OpcodeReset, 1)
			e.event = hci.EventCodeRemoteNameRequestComplete
			if frame[1] == byte(hci.EventCodeCommandComplete) {
				e.event = hci.EventCodeCommandComplete
			}
			_, err := c.awaitResponse(e)
			var garbage *GarbageResponseError
			require.ErrorAs(t, err, &garbage)
			assert.NotEmpty(t, garbage.Data)
		})
	}
}

func TestAwaitCommandStatusError(t *testing.T) {
	sock := newFakeSocket(
		commandStatus(uint8(hci.ErrCommandDisallowed), hci.OpcodeRemoteNameRequest),
		hci.EncodeEvent(hci.EventCodeRemoteNameRequestComplete, make([]byte, 255)),
	)
	c := New(sock)

	_, err := c.awaitResponse(expectation{
		opcode:  hci.OpcodeRemoteNameRequest,
		event:   hci.EventCodeRemoteNameRequestComplete,
		length:  255,
		timeout: time.Second,
	})
	assert.ErrorIs(t, err, hci.ErrCommandDisallowed)
	assert.Equal(t, 1, sock.reads)
}

func TestAwaitCommandStatusSuccessKeepsWaiting(t *testing.T) {
	sock := newFakeSocket(
		commandStatus(0x00, hci.OpcodeLESetScanEnable),
		commandComplete(hci.OpcodeLESetScanEnable, 0x00),
	)
	c := New(sock)

	payload, err := c.awaitResponse(completeExpectation(hci.OpcodeLESetScanEnable, 1))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, payload)
}

func TestAwaitCommandStatusOtherOpcode(t *testing.T) {
	sock := newFakeSocket(
		commandStatus(uint8(hci.ErrHardwareFailure), hci.OpcodeReset),
		commandComplete(hci.OpcodeReadBDAddr, 0x00, 1, 2, 3, 4, 5, 6),
	)
	c := New(sock)

	_, err := c.awaitResponse(completeExpectation(hci.OpcodeReadBDAddr, 7))
	require.NoError(t, err)
}

func TestAwaitCommandStatus(t *testing.T) {
	sock := newFakeSocket(commandStatus(uint8(hci.ErrPageTimeout), hci.OpcodeInquiry))
	c := New(sock)

	payload, err := c.awaitResponse(expectation{
		opcode:  hci.OpcodeInquiry,
		event:   hci.EventCodeCommandStatus,
		length:  hci.CommandStatusSize,
		timeout: time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{uint8(hci.ErrPageTimeout), 0x01, 0x01, 0x04}, payload)
}

func TestAwaitLEMetaSubevent(t *testing.T) {
	inner := make([]byte, 18)
	inner[1] = 0x40
	sock := newFakeSocket(
		leMeta(hci.LEMetaSubeventCodeAdvertisingReport, 0x01, 0x00),
		leMeta(hci.LEMetaSubeventCodeConnectionComplete, inner...),
	)
	c := New(sock)

	payload, err := c.awaitResponse(expectation{
		opcode:   hci.OpcodeLESetAdvertisingEnable,
		event:    hci.EventCodeLEMeta,
		subevent: hci.LEMetaSubeventCodeConnectionComplete,
		length:   1,
		timeout:  time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, inner, payload)
	assert.Equal(t, 2, sock.reads)
}

func TestAwaitRemoteNameAddress(t *testing.T) {
	want := hci.BDAddr{1, 2, 3, 4, 5, 6}
	other := hci.BDAddr{6, 5, 4, 3, 2, 1}
	cmd := hci.RemoteNameRequestCommand{Address: want}
	params, err := cmd.Marshal()
	require.NoError(t, err)

	late := hci.RemoteNameRequestComplete{Address: other, Name: "old"}
	lateBuf, err := late.Marshal()
	require.NoError(t, err)
	answer := hci.RemoteNameRequestComplete{Address: want, Name: "phone"}
	answerBuf, err := answer.Marshal()
	require.NoError(t, err)

	sock := newFakeSocket(
		commandStatus(0x00, hci.OpcodeRemoteNameRequest),
		hci.EncodeEvent(hci.EventCodeRemoteNameRequestComplete, lateBuf),
		hci.EncodeEvent(hci.EventCodeRemoteNameRequestComplete, answerBuf),
	)
	c := New(sock)

	payload, err := c.awaitResponse(expectation{
		opcode:  hci.OpcodeRemoteNameRequest,
		params:  params,
		event:   hci.EventCodeRemoteNameRequestComplete,
		length:  answer.Len(),
		timeout: time.Second,
	})
	require.NoError(t, err)
	var got hci.RemoteNameRequestComplete
	require.NoError(t, got.Unmarshal(payload))
	assert.Equal(t, want, got.Address)
	assert.Equal(t, "phone", got.Name)
}

func TestAwaitUnrelatedEventsAreFree(t *testing.T) {
	sock := newFakeSocket()
	for i := 0; i < 3; i++ {
		sock.push(hci.EncodeEvent(hci.EventCodeDisconnectionComplete, []byte{0, 0x40, 0, 0x13}))
		sock.push(hci.EncodeEvent(hci.EventCodeRemoteNameRequestComplete, make([]byte, 7)))
	}
	sock.push(commandComplete(hci.OpcodeReset, 0x00))
	c := New(sock, WithMaxAttempts(1))

	payload, err := c.awaitResponse(completeExpectation(hci.OpcodeReset, 1))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, payload)
}

func TestAwaitOtherEventCode(t *testing.T) {
	sock := newFakeSocket(hci.EncodeEvent(hci.EventCodeDisconnectionComplete, []byte{0, 0x40, 0, 0x13}))
	c := New(sock)

	payload, err := c.awaitResponse(expectation{
		opcode:  hci.OpcodeReset,
		event:   hci.EventCodeDisconnectionComplete,
		length:  4,
		timeout: time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0x40, 0, 0x13}, payload)
}

func TestAwaitKeepsTrailingBytes(t *testing.T) {
	sock := newFakeSocket(hci.EncodeEvent(hci.EventCodeDisconnectionComplete, []byte{0xAA, 0, 0x40, 0, 0x13}))
	c := New(sock)

	payload, err := c.awaitResponse(expectation{
		opcode:  hci.OpcodeReset,
		event:   hci.EventCodeDisconnectionComplete,
		length:  4,
		timeout: time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0x40, 0, 0x13}, payload)
}

func TestAwaitVariableLength(t *testing.T) {
	sock := newFakeSocket(
		hci.EncodeEvent(hci.EventCodeDisconnectionComplete, []byte{0, 0x40, 0, 0x13}),
		commandComplete(hci.OpcodeReadBDAddr, 0x00, 1, 2, 3, 4, 5, 6),
	)
	c := New(sock)

	payload, err := c.awaitResponse(expectation{
		opcode:  hci.OpcodeReset,
		event:   hci.EventCodeDisconnectionComplete,
		length:  hci.VariableLength,
		timeout: time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0x40, 0, 0x13}, payload)

	payload, err = c.awaitResponse(completeExpectation(hci.OpcodeReadBDAddr, hci.VariableLength))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 1, 2, 3, 4, 5, 6}, payload)
}

func TestAwaitUnpolledIdleReadsAreCapped(t *testing.T) {
	// nothing queued, so every read fails with EAGAIN
	sock := newFakeSocket()
	c := New(sock)

	e := completeExpectation(hci.OpcodeReset, 1)
	e.timeout = 0
	_, err := c.awaitResponse(e)
	assert.ErrorIs(t, err, ErrTimedOut)
	assert.Equal(t, maxIdleReads, sock.reads)

	sock = newFakeSocket()
	for i := 0; i < 2*maxIdleReads; i++ {
		sock.push(hci.EncodeEvent(hci.EventCodeDisconnectionComplete, []byte{0, 0x40, 0, 0x13}))
	}
	c = New(sock)
	_, err = c.awaitResponse(e)
	assert.ErrorIs(t, err, ErrTimedOut)
	assert.Equal(t, maxIdleReads, sock.reads)
	assert.Zero(t, sock.pollCalls)
}
