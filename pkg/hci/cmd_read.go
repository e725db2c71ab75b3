package hci

import (
	"bytes"
	"encoding/binary"
	"io"
)

// ReadBDAddr holds the return parameters of Read BD_ADDR, Section 7.4.6.
type ReadBDAddr struct {
	Address BDAddr
}

func (r *ReadBDAddr) Opcode() Opcode { return OpcodeReadBDAddr }

func (r *ReadBDAddr) Len() int { return 6 }

func (r *ReadBDAddr) Unmarshal(buf []byte) error {
	if copy(r.Address[:], buf) != 6 {
		return io.ErrShortBuffer
	}
	return nil
}

const localNameLength = 248

// ReadLocalName holds the return parameters of Read Local Name, Section 7.3.12.
type ReadLocalName struct {
	Name string
}

func (r *ReadLocalName) Opcode() Opcode { return OpcodeReadLocalName }

func (r *ReadLocalName) Len() int { return localNameLength }

func (r *ReadLocalName) Unmarshal(buf []byte) error {
	if len(buf) < localNameLength {
		return io.ErrShortBuffer
	}
	r.Name = cString(buf[:localNameLength])
	return nil
}

type ReadFilterAcceptListSize struct {
	Size uint8
}

func (r *ReadFilterAcceptListSize) Opcode() Opcode { return OpcodeReadFilterAcceptListSize }

func (r *ReadFilterAcceptListSize) Len() int { return 1 }

func (r *ReadFilterAcceptListSize) Unmarshal(buf []byte) error {
	if len(buf) < 1 {
		return io.ErrShortBuffer
	}
	r.Size = buf[0]
	return nil
}

// LEReadBufferSize holds the return parameters of LE Read Buffer Size [v1],
// Section 7.8.2.
type LEReadBufferSize struct {
	LEACLDataPacketLength    uint16
	TotalNumLEACLDataPackets uint8
}

func (r *LEReadBufferSize) Opcode() Opcode { return OpcodeLEReadBufferSize }

func (r *LEReadBufferSize) Len() int { return 3 }

func (r *LEReadBufferSize) Unmarshal(buf []byte) error {
	if len(buf) < 3 {
		return io.ErrShortBuffer
	}
	r.LEACLDataPacketLength = binary.LittleEndian.Uint16(buf[0:2])
	r.TotalNumLEACLDataPackets = buf[2]
	return nil
}

type LESupportedStates uint64

type LEReadSupportedStates struct {
	States LESupportedStates
}

func (r *LEReadSupportedStates) Opcode() Opcode { return OpcodeLEReadSupportedStates }

func (r *LEReadSupportedStates) Len() int { return 8 }

func (r *LEReadSupportedStates) Unmarshal(buf []byte) error {
	if len(buf) < 8 {
		return io.ErrShortBuffer
	}
	r.States = LESupportedStates(binary.LittleEndian.Uint64(buf[0:8]))
	return nil
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
