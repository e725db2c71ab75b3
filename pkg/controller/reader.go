package controller

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/muxable/hcisocket/pkg/hci"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// expectation is the correlation key of one in-flight request.
type expectation struct {
	opcode   hci.Opcode
	params   []byte
	event    hci.EventCode
	subevent hci.LEMetaSubeventCode
	length   int
	timeout  time.Duration
}

type verdict uint8

const (
	// verdictDiscard: the frame is well formed but belongs to someone else.
	verdictDiscard verdict = iota
	verdictMatched
	verdictFatal
)

type outcome struct {
	verdict verdict
	payload []byte
	err     error
	// free marks a discard that does not use up an attempt.
	free   bool
	reason string
}

func matched(payload []byte) outcome {
	return outcome{verdict: verdictMatched, payload: payload}
}

func fatal(err error) outcome {
	return outcome{verdict: verdictFatal, err: err}
}

func discard(reason string) outcome {
	return outcome{verdict: verdictDiscard, reason: reason}
}

func ignore() outcome {
	return outcome{verdict: verdictDiscard, free: true, reason: "unrelated"}
}

func garbage(b []byte) outcome {
	return fatal(&GarbageResponseError{Data: append([]byte(nil), b...)})
}

func isTransient(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR)
}

// maxIdleReads bounds the reads an unpolled wait may spend on transient
// errors and unrelated events, which otherwise cost no attempt.
const maxIdleReads = 256

// sized keeps the first length bytes of payload. A negative length keeps
// the whole payload.
func sized(payload []byte, length int) []byte {
	if length >= 0 && len(payload) > length {
		payload = payload[:length]
	}
	return payload
}

// trailing keeps the last length bytes of payload. A negative length keeps
// the whole payload.
func trailing(payload []byte, length int) []byte {
	if length >= 0 && len(payload) > length {
		payload = payload[len(payload)-length:]
	}
	return payload
}

// awaitResponse reads frames until one answers e, the attempts run out or
// the timeout budget is spent. The budget shrinks by a fixed step per poll,
// not by the time the poll actually took. Without a budget, maxIdleReads
// caps the reads that cost no attempt.
func (c *Controller) awaitResponse(e expectation) ([]byte, error) {
	buf := make([]byte, hci.MaxEventSize)
	remaining := e.timeout
	budgeted := e.timeout > 0
	idle := 0

	for attempts := c.maxAttempts; attempts > 0; {
		if !budgeted && idle >= maxIdleReads {
			return nil, ErrTimedOut
		}
		if budgeted {
			if remaining <= 0 {
				return nil, ErrTimedOut
			}
			readable, err := c.sock.Poll(remaining)
			remaining -= c.pollStep
			if err != nil {
				if isTransient(err) {
					continue
				}
				return nil, err
			}
			if !readable {
				return nil, ErrTimedOut
			}
		}

		n, err := c.sock.Read(buf)
		if err != nil {
			if isTransient(err) {
				idle++
				continue
			}
			return nil, err
		}
		frame := buf[:n]
		c.logger.Debug("bluetooth reading", zap.String("packet", fmt.Sprintf("%x", frame)))

		o := e.classify(frame)
		switch o.verdict {
		case verdictMatched:
			return append([]byte(nil), o.payload...), nil
		case verdictFatal:
			return nil, o.err
		}
		code := hci.EventCode(0)
		if len(frame) > 1 {
			code = hci.EventCode(frame[1])
		}
		c.logger.Debug("discarding event", zap.Stringer("event", code), zap.String("reason", o.reason), zap.Stringer("opcode", e.opcode))
		c.metrics.discarded(code, o.reason)
		if o.free {
			idle++
		} else {
			attempts--
		}
	}
	return nil, ErrTimedOut
}

// classify decides what one event frame, packet type included, means for
// the request described by e.
func (e *expectation) classify(frame []byte) outcome {
	if len(frame) < 1+hci.EventHeaderSize {
		return garbage(frame)
	}
	var header hci.EventHeader
	if err := header.Unmarshal(frame[1:]); err != nil {
		return garbage(frame)
	}
	payload := frame[1+hci.EventHeaderSize:]
	if len(payload) < int(header.ParameterLength) {
		return garbage(frame)
	}
	payload = payload[:header.ParameterLength]

	switch header.Code {
	case hci.EventCodeCommandStatus:
		var p hci.CommandStatus
		if err := p.Unmarshal(payload); err != nil {
			return garbage(frame)
		}
		if p.CommandOpcode != e.opcode {
			return discard("opcode")
		}
		if e.event != hci.EventCodeCommandStatus {
			if err := hci.StatusError(p.Status); err != nil {
				return fatal(err)
			}
			// accepted, the real answer is still to come
			return discard("status")
		}
		return matched(trailing(payload, e.length))

	case hci.EventCodeCommandComplete:
		var p hci.CommandComplete
		if err := p.Unmarshal(payload); err != nil {
			return garbage(frame)
		}
		if p.CommandOpcode != e.opcode {
			return discard("opcode")
		}
		return matched(sized(p.ReturnParameters, e.length))

	case hci.EventCodeRemoteNameRequestComplete:
		if e.event != hci.EventCodeRemoteNameRequestComplete {
			return ignore()
		}
		var p hci.RemoteNameRequestComplete
		if err := p.Unmarshal(payload); err != nil {
			return garbage(frame)
		}
		if len(e.params) > 0 {
			var cp hci.RemoteNameRequestCommand
			if err := cp.Unmarshal(e.params); err != nil {
				panic(fmt.Sprintf("hci: awaiting remote name request complete, but the sent parameters [% X] are not a remote name request", e.params))
			}
			// a late answer to an earlier request for another device
			if !bytes.Equal(cp.Address[:], p.Address[:]) {
				return discard("address")
			}
		}
		return matched(trailing(payload, e.length))

	case hci.EventCodeLEMeta:
		var p hci.LEMeta
		if err := p.Unmarshal(payload); err != nil {
			return garbage(frame)
		}
		if e.event != hci.EventCodeLEMeta || p.Subevent != e.subevent {
			return discard("subevent")
		}
		return matched(p.Data)

	default:
		if header.Code != e.event {
			return ignore()
		}
		return matched(trailing(payload, e.length))
	}
}
