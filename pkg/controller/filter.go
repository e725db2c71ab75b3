package controller

import (
	"encoding/binary"
	"io"

	"github.com/muxable/hcisocket/pkg/hci"
)

const (
	filterTypeBits  = 31
	filterEventBits = 63

	// filterWireSize is type_mask, event_mask[2] and opcode without the
	// trailing padding.
	filterWireSize = 14
	filterSize     = 16
)

// Filter mirrors the kernel struct hci_filter. Subtype is not part of the
// kernel structure; it records the LE meta sub-event the owner of the filter
// is waiting for and is never serialized.
type Filter struct {
	TypeMask  uint32
	EventMask [2]uint32
	Opcode    hci.Opcode
	Subtype   hci.LEMetaSubeventCode
}

func (f *Filter) SetPacketType(t hci.PacketType) {
	bit := uint(t) & filterTypeBits
	if t == hci.PacketTypeVendor {
		bit = 0
	}
	f.TypeMask |= 1 << bit
}

func (f *Filter) HasPacketType(t hci.PacketType) bool {
	bit := uint(t) & filterTypeBits
	if t == hci.PacketTypeVendor {
		bit = 0
	}
	return f.TypeMask&(1<<bit) != 0
}

func (f *Filter) SetEvent(code hci.EventCode) {
	bit := uint(code) & filterEventBits
	f.EventMask[bit>>5] |= 1 << (bit & 31)
}

func (f *Filter) ClearEvent(code hci.EventCode) {
	bit := uint(code) & filterEventBits
	f.EventMask[bit>>5] &^= 1 << (bit & 31)
}

func (f *Filter) HasEvent(code hci.EventCode) bool {
	bit := uint(code) & filterEventBits
	return f.EventMask[bit>>5]&(1<<(bit&31)) != 0
}

func (f *Filter) SetOpcode(op hci.Opcode) {
	f.Opcode = op
}

func (f *Filter) SetSubtype(code hci.LEMetaSubeventCode) {
	f.Subtype = code
}

// MarshalBinary encodes the kernel structure. Fields are little-endian,
// which is the host order of every platform BlueZ runs on in practice.
func (f Filter) MarshalBinary() ([]byte, error) {
	buf := make([]byte, filterSize)
	binary.LittleEndian.PutUint32(buf[0:], f.TypeMask)
	binary.LittleEndian.PutUint32(buf[4:], f.EventMask[0])
	binary.LittleEndian.PutUint32(buf[8:], f.EventMask[1])
	binary.LittleEndian.PutUint16(buf[12:], uint16(f.Opcode))
	return buf, nil
}

func (f *Filter) UnmarshalBinary(buf []byte) error {
	if len(buf) < filterWireSize {
		return io.ErrShortBuffer
	}
	f.TypeMask = binary.LittleEndian.Uint32(buf[0:])
	f.EventMask[0] = binary.LittleEndian.Uint32(buf[4:])
	f.EventMask[1] = binary.LittleEndian.Uint32(buf[8:])
	f.Opcode = hci.Opcode(binary.LittleEndian.Uint16(buf[12:]))
	f.Subtype = 0
	return nil
}

// requestFilter lets through event packets that may answer a command with
// the given opcode.
func requestFilter(op hci.Opcode, event hci.EventCode, subevent hci.LEMetaSubeventCode) Filter {
	var f Filter
	f.SetPacketType(hci.PacketTypeEvent)
	f.SetEvent(hci.EventCodeCommandStatus)
	f.SetEvent(hci.EventCodeCommandComplete)
	f.SetEvent(hci.EventCodeLEMeta)
	f.SetEvent(event)
	f.SetOpcode(op)
	f.SetSubtype(subevent)
	return f
}

// eventFilter lets through a single event code.
func eventFilter(event hci.EventCode, subevent hci.LEMetaSubeventCode) Filter {
	var f Filter
	f.SetPacketType(hci.PacketTypeEvent)
	f.SetEvent(event)
	f.SetSubtype(subevent)
	return f
}
