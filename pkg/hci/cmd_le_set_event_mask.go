package hci

import (
	"encoding/binary"
	"io"
)

// Section 7.8.1
type LEEventMask uint64

const (
	LEEventMaskConnectionCompleteEvent             LEEventMask = (1 << 0)
	LEEventMaskAdvertisingReportEvent              LEEventMask = (1 << 1)
	LEEventMaskConnectionUpdateCompleteEvent       LEEventMask = (1 << 2)
	LEEventMaskReadRemoteUsedFeaturesCompleteEvent LEEventMask = (1 << 3)
	LEEventMaskLongTermKeyRequestEvent             LEEventMask = (1 << 4)
)

type LESetEventMaskCommand struct {
	LEEventMask
}

func (p *LESetEventMaskCommand) Marshal() ([]byte, error) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(p.LEEventMask))
	return buf, nil
}

func (p *LESetEventMaskCommand) Unmarshal(buf []byte) error {
	if len(buf) != 8 {
		return io.ErrShortBuffer
	}
	p.LEEventMask = LEEventMask(binary.LittleEndian.Uint64(buf))
	return nil
}

func (p *LESetEventMaskCommand) Opcode() Opcode {
	return OpcodeLESetEventMask
}
