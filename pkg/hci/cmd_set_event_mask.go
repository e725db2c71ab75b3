package hci

import (
	"encoding/binary"
	"io"
)

// Section 7.3.1
type EventMask uint64

const (
	EventMaskInquiryCompleteEvent              EventMask = (1 << 0)
	EventMaskDisconnectionCompleteEvent        EventMask = (1 << 4)
	EventMaskRemoteNameRequestCompleteEvent    EventMask = (1 << 6)
	EventMaskEncryptionChangeEvent             EventMask = (1 << 7)
	EventMaskHardwareErrorEvent                EventMask = (1 << 15)
	EventMaskEncryptionKeyRefreshCompleteEvent EventMask = (1 << 47)
	EventMaskLEMetaEvent                       EventMask = (1 << 61)
)

type SetEventMaskCommand struct {
	EventMask
}

func (p *SetEventMaskCommand) Marshal() ([]byte, error) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(p.EventMask))
	return buf, nil
}

func (p *SetEventMaskCommand) Unmarshal(buf []byte) error {
	if len(buf) != 8 {
		return io.ErrShortBuffer
	}
	p.EventMask = EventMask(binary.LittleEndian.Uint64(buf))
	return nil
}

func (p *SetEventMaskCommand) Opcode() Opcode {
	return OpcodeSetEventMask
}
