package hci

import (
	"encoding/binary"
	"io"
)

type PageScanRepetitionMode uint8

const (
	PageScanRepetitionModeR0 PageScanRepetitionMode = 0x00
	PageScanRepetitionModeR1 PageScanRepetitionMode = 0x01
	PageScanRepetitionModeR2 PageScanRepetitionMode = 0x02
)

// RemoteNameRequestCommand is acknowledged with a command status and
// answered later by RemoteNameRequestComplete, Section 7.1.19.
type RemoteNameRequestCommand struct {
	Address                BDAddr
	PageScanRepetitionMode PageScanRepetitionMode
	ClockOffset            uint16
}

const remoteNameRequestSize = 10

func (p *RemoteNameRequestCommand) Marshal() ([]byte, error) {
	buf := make([]byte, remoteNameRequestSize)
	copy(buf, p.Address[:])
	buf[6] = byte(p.PageScanRepetitionMode)
	// buf[7] is reserved
	binary.LittleEndian.PutUint16(buf[8:], p.ClockOffset)
	return buf, nil
}

func (p *RemoteNameRequestCommand) Unmarshal(buf []byte) error {
	if len(buf) != remoteNameRequestSize {
		return io.ErrShortBuffer
	}
	copy(p.Address[:], buf[0:6])
	p.PageScanRepetitionMode = PageScanRepetitionMode(buf[6])
	p.ClockOffset = binary.LittleEndian.Uint16(buf[8:])
	return nil
}

func (p *RemoteNameRequestCommand) Opcode() Opcode {
	return OpcodeRemoteNameRequest
}

// RemoteNameRequestComplete is Section 7.7.7.
type RemoteNameRequestComplete struct {
	Status  uint8
	Address BDAddr
	Name    string
}

// RemoteNameRequestCompleteHeaderSize is status + address, which is all a
// failed request is guaranteed to carry.
const RemoteNameRequestCompleteHeaderSize = 7

func (p *RemoteNameRequestComplete) EventCode() EventCode {
	return EventCodeRemoteNameRequestComplete
}

func (p *RemoteNameRequestComplete) Len() int {
	return RemoteNameRequestCompleteHeaderSize + localNameLength
}

func (p *RemoteNameRequestComplete) Unmarshal(buf []byte) error {
	if len(buf) < RemoteNameRequestCompleteHeaderSize {
		return io.ErrShortBuffer
	}
	p.Status = buf[0]
	copy(p.Address[:], buf[1:7])
	p.Name = cString(buf[7:])
	return nil
}

func (p *RemoteNameRequestComplete) Marshal() ([]byte, error) {
	if len(p.Name) > localNameLength {
		return nil, io.ErrShortWrite
	}
	buf := make([]byte, p.Len())
	buf[0] = p.Status
	copy(buf[1:], p.Address[:])
	copy(buf[7:], p.Name)
	return buf, nil
}
