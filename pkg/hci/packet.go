package hci

import (
	"encoding/binary"
	"errors"
	"io"
)

const (
	// CommandHeaderSize is opcode + parameter length.
	CommandHeaderSize = 3
	// EventHeaderSize is event code + parameter length.
	EventHeaderSize = 2
	// MaxEventSize is a whole event frame as read from the socket: packet
	// type, header and at most 255 parameter bytes, rounded up like BlueZ
	// HCI_MAX_EVENT_SIZE.
	MaxEventSize = 260
	// MaxParameterLength bounds both command and event parameters.
	MaxParameterLength = 255
)

var ErrIncorrectPacket = errors.New("incorrect packet")

// Command is anything that can be sent to the controller.
type Command interface {
	Opcode() Opcode
}

// CommandParameter is a command carrying parameter bytes.
type CommandParameter interface {
	Command
	Marshal() ([]byte, error)
}

// ReturnParameter decodes the command complete return parameters that
// follow the status byte.
type ReturnParameter interface {
	Command
	Len() int
	Unmarshal([]byte) error
}

// VariableLength is returned by Len of an event parameter whose size is
// only known from the frame. Awaiting such a parameter takes the whole
// payload.
const VariableLength = -1

// EventParameter decodes the parameters of one event code.
type EventParameter interface {
	EventCode() EventCode
	Len() int
	Unmarshal([]byte) error
}

// LEMetaEventParameter decodes the inner payload of one LE meta sub-event.
type LEMetaEventParameter interface {
	EventParameter
	Subevent() LEMetaSubeventCode
}

type CommandHeader struct {
	Opcode          Opcode
	ParameterLength uint8
}

func (h CommandHeader) Marshal() []byte {
	buf := make([]byte, CommandHeaderSize)
	binary.LittleEndian.PutUint16(buf, uint16(h.Opcode))
	buf[2] = h.ParameterLength
	return buf
}

func (h *CommandHeader) Unmarshal(buf []byte) error {
	if len(buf) < CommandHeaderSize {
		return io.ErrShortBuffer
	}
	h.Opcode = Opcode(binary.LittleEndian.Uint16(buf))
	h.ParameterLength = buf[2]
	return nil
}

type EventHeader struct {
	Code            EventCode
	ParameterLength uint8
}

func (h EventHeader) Marshal() []byte {
	return []byte{byte(h.Code), h.ParameterLength}
}

func (h *EventHeader) Unmarshal(buf []byte) error {
	if len(buf) < EventHeaderSize {
		return io.ErrShortBuffer
	}
	h.Code = EventCode(buf[0])
	h.ParameterLength = buf[1]
	return nil
}

// EncodeEvent builds an event frame including the leading packet type.
func EncodeEvent(code EventCode, params []byte) []byte {
	if len(params) > MaxParameterLength {
		panic("hci: event parameters exceed 255 bytes")
	}
	buf := make([]byte, 1+EventHeaderSize, 1+EventHeaderSize+len(params))
	buf[0] = byte(PacketTypeEvent)
	buf[1] = byte(code)
	buf[2] = uint8(len(params))
	return append(buf, params...)
}

// CommandStatus is the Command Status event, Section 7.7.15.
type CommandStatus struct {
	Status            uint8
	NumCommandPackets uint8
	CommandOpcode     Opcode
}

const CommandStatusSize = 4

func (p *CommandStatus) EventCode() EventCode { return EventCodeCommandStatus }

func (p *CommandStatus) Len() int { return CommandStatusSize }

func (p *CommandStatus) Unmarshal(buf []byte) error {
	if len(buf) < CommandStatusSize {
		return io.ErrShortBuffer
	}
	p.Status = buf[0]
	p.NumCommandPackets = buf[1]
	p.CommandOpcode = Opcode(binary.LittleEndian.Uint16(buf[2:]))
	return nil
}

func (p *CommandStatus) Marshal() ([]byte, error) {
	buf := make([]byte, CommandStatusSize)
	buf[0] = p.Status
	buf[1] = p.NumCommandPackets
	binary.LittleEndian.PutUint16(buf[2:], uint16(p.CommandOpcode))
	return buf, nil
}

// CommandComplete is the Command Complete event, Section 7.7.14.
type CommandComplete struct {
	NumCommandPackets uint8
	CommandOpcode     Opcode
	ReturnParameters  []byte
}

const CommandCompleteHeaderSize = 3

func (p *CommandComplete) EventCode() EventCode { return EventCodeCommandComplete }

func (p *CommandComplete) Len() int { return CommandCompleteHeaderSize + len(p.ReturnParameters) }

func (p *CommandComplete) Unmarshal(buf []byte) error {
	if len(buf) < CommandCompleteHeaderSize {
		return io.ErrShortBuffer
	}
	p.NumCommandPackets = buf[0]
	p.CommandOpcode = Opcode(binary.LittleEndian.Uint16(buf[1:]))
	p.ReturnParameters = buf[CommandCompleteHeaderSize:]
	return nil
}

func (p *CommandComplete) Marshal() ([]byte, error) {
	if len(p.ReturnParameters)+CommandCompleteHeaderSize > MaxParameterLength {
		return nil, io.ErrShortWrite
	}
	buf := make([]byte, CommandCompleteHeaderSize+len(p.ReturnParameters))
	buf[0] = p.NumCommandPackets
	binary.LittleEndian.PutUint16(buf[1:], uint16(p.CommandOpcode))
	copy(buf[CommandCompleteHeaderSize:], p.ReturnParameters)
	return buf, nil
}

// LEMeta is the envelope of every LE sub-event, Section 7.7.65.
type LEMeta struct {
	Subevent LEMetaSubeventCode
	Data     []byte
}

func (p *LEMeta) EventCode() EventCode { return EventCodeLEMeta }

func (p *LEMeta) Len() int { return 1 + len(p.Data) }

func (p *LEMeta) Unmarshal(buf []byte) error {
	if len(buf) < 1 {
		return io.ErrShortBuffer
	}
	p.Subevent = LEMetaSubeventCode(buf[0])
	p.Data = buf[1:]
	return nil
}

func (p *LEMeta) Marshal() ([]byte, error) {
	if len(p.Data)+1 > MaxParameterLength {
		return nil, io.ErrShortWrite
	}
	return append([]byte{byte(p.Subevent)}, p.Data...), nil
}

type DisconnectionComplete struct {
	Status           uint8
	ConnectionHandle uint16
	Reason           uint8
}

func (p *DisconnectionComplete) EventCode() EventCode { return EventCodeDisconnectionComplete }

func (p *DisconnectionComplete) Len() int { return 4 }

func (p *DisconnectionComplete) Unmarshal(buf []byte) error {
	if len(buf) < 4 {
		return io.ErrShortBuffer
	}
	p.Status = buf[0]
	p.ConnectionHandle = binary.LittleEndian.Uint16(buf[1:3]) & 0x0FFF
	p.Reason = buf[3]
	return nil
}

type NumberOfCompletedPackets struct {
	NumHandles          uint8
	ConnectionHandles   []uint16
	NumCompletedPackets []uint16
}

func (p *NumberOfCompletedPackets) EventCode() EventCode { return EventCodeNumberOfCompletedPackets }

func (p *NumberOfCompletedPackets) Len() int { return VariableLength }

func (p *NumberOfCompletedPackets) Unmarshal(buf []byte) error {
	if len(buf) < 1 {
		return io.ErrShortBuffer
	}
	n := int(buf[0])
	if len(buf) < 1+4*n {
		return io.ErrShortBuffer
	}
	p.NumHandles = buf[0]
	p.ConnectionHandles = make([]uint16, n)
	p.NumCompletedPackets = make([]uint16, n)
	for i := 0; i < n; i++ {
		p.ConnectionHandles[i] = binary.LittleEndian.Uint16(buf[1+i*2:])
		p.NumCompletedPackets[i] = binary.LittleEndian.Uint16(buf[1+2*n+i*2:])
	}
	return nil
}

func (p *NumberOfCompletedPackets) Marshal() ([]byte, error) {
	if len(p.ConnectionHandles) != int(p.NumHandles) || len(p.NumCompletedPackets) != int(p.NumHandles) {
		return nil, io.ErrShortWrite
	}
	n := int(p.NumHandles)
	buf := make([]byte, 1+4*n)
	buf[0] = p.NumHandles
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(buf[1+i*2:], p.ConnectionHandles[i])
		binary.LittleEndian.PutUint16(buf[1+2*n+i*2:], p.NumCompletedPackets[i])
	}
	return buf, nil
}

type Role uint8

const (
	RoleCentral    Role = 0
	RolePeripheral Role = 1
)

type CentralClockAccuracy uint8

const (
	CentralClockAccuracy500PPM CentralClockAccuracy = 0
	CentralClockAccuracy250PPM CentralClockAccuracy = 1
	CentralClockAccuracy150PPM CentralClockAccuracy = 2
	CentralClockAccuracy100PPM CentralClockAccuracy = 3
	CentralClockAccuracy75PPM  CentralClockAccuracy = 4
	CentralClockAccuracy50PPM  CentralClockAccuracy = 5
	CentralClockAccuracy30PPM  CentralClockAccuracy = 6
	CentralClockAccuracy20PPM  CentralClockAccuracy = 7
)

// LEConnectionComplete is decoded from the LE meta payload after the
// sub-event code.
type LEConnectionComplete struct {
	Status               uint8
	ConnectionHandle     uint16
	Role                 Role
	PeerAddressType      PeerAddressType
	PeerAddress          BDAddr
	ConnectionInterval   uint16
	PeripheralLatency    uint16
	SupervisionTimeout   uint16
	CentralClockAccuracy CentralClockAccuracy
}

func (p *LEConnectionComplete) EventCode() EventCode { return EventCodeLEMeta }

func (p *LEConnectionComplete) Subevent() LEMetaSubeventCode {
	return LEMetaSubeventCodeConnectionComplete
}

func (p *LEConnectionComplete) Len() int { return 18 }

func (p *LEConnectionComplete) Unmarshal(buf []byte) error {
	if len(buf) < 18 {
		return io.ErrShortBuffer
	}
	p.Status = buf[0]
	p.ConnectionHandle = binary.LittleEndian.Uint16(buf[1:3])
	p.Role = Role(buf[3])
	p.PeerAddressType = PeerAddressType(buf[4])
	copy(p.PeerAddress[:], buf[5:11])
	p.ConnectionInterval = binary.LittleEndian.Uint16(buf[11:13])
	p.PeripheralLatency = binary.LittleEndian.Uint16(buf[13:15])
	p.SupervisionTimeout = binary.LittleEndian.Uint16(buf[15:17])
	p.CentralClockAccuracy = CentralClockAccuracy(buf[17])
	return nil
}

type AdvertisingReport struct {
	EventType   uint8
	AddressType PeerAddressType
	Address     BDAddr
	Data        []byte
	RSSI        int8
}

// LEAdvertisingReport is decoded from the LE meta payload after the
// sub-event code, Section 7.7.65.2.
type LEAdvertisingReport struct {
	Reports []AdvertisingReport
}

func (p *LEAdvertisingReport) EventCode() EventCode { return EventCodeLEMeta }

func (p *LEAdvertisingReport) Subevent() LEMetaSubeventCode {
	return LEMetaSubeventCodeAdvertisingReport
}

// Len is the size of a report carrying no advertising data.
func (p *LEAdvertisingReport) Len() int { return 11 }

func (p *LEAdvertisingReport) Unmarshal(buf []byte) error {
	if len(buf) < 1 {
		return io.ErrShortBuffer
	}
	n := int(buf[0])
	// event types, address types, addresses, data lengths
	off := 1
	if len(buf) < off+n*(1+1+6+1) {
		return io.ErrShortBuffer
	}
	reports := make([]AdvertisingReport, n)
	for i := 0; i < n; i++ {
		reports[i].EventType = buf[off+i]
	}
	off += n
	for i := 0; i < n; i++ {
		reports[i].AddressType = PeerAddressType(buf[off+i])
	}
	off += n
	for i := 0; i < n; i++ {
		copy(reports[i].Address[:], buf[off+i*6:])
	}
	off += 6 * n
	lengths := buf[off : off+n]
	off += n
	for i := 0; i < n; i++ {
		l := int(lengths[i])
		if len(buf) < off+l {
			return io.ErrShortBuffer
		}
		reports[i].Data = buf[off : off+l]
		off += l
	}
	if len(buf) < off+n {
		return io.ErrShortBuffer
	}
	for i := 0; i < n; i++ {
		reports[i].RSSI = int8(buf[off+i])
	}
	p.Reports = reports
	return nil
}

// RawEvent keeps the undecoded parameters of any event code.
type RawEvent struct {
	Code EventCode
	Data []byte
}

func (p *RawEvent) EventCode() EventCode { return p.Code }

func (p *RawEvent) Len() int { return VariableLength }

func (p *RawEvent) Unmarshal(buf []byte) error {
	p.Data = append(p.Data[:0], buf...)
	return nil
}
