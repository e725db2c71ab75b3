package hci

import (
	"encoding/binary"
	"io"
)

type AdvertisingType uint8

const (
	AdvertisingTypeConnectableAndScannableUndirectedAdvertising AdvertisingType = 0x00
	AdvertisingTypeConnectableHighDutyCycleDirectedAdvertising  AdvertisingType = 0x01
	AdvertisingTypeScannableUndirectedAdvertising               AdvertisingType = 0x02
	AdvertisingTypeNonConnectableUndirectedAdvertising          AdvertisingType = 0x03
	AdvertisingTypeConnectableLowDutyCycleDirectedAdvertising   AdvertisingType = 0x04
)

type AdvertisingChannelMap uint8

const (
	AdvertisingChannelMapChannel37 AdvertisingChannelMap = 0x01
	AdvertisingChannelMapChannel38 AdvertisingChannelMap = 0x02
	AdvertisingChannelMapChannel39 AdvertisingChannelMap = 0x04

	AdvertisingChannelMapDefault AdvertisingChannelMap = 0x07
)

type AdvertisingFilterPolicy uint8

const (
	AdvertisingFilterPolicyProcessScanAndConnectionRequestsFromAllDevices                       AdvertisingFilterPolicy = 0x00
	AdvertisingFilterPolicyProcessConnectionRequestsFromAllDevicesAndScanRequestsFromFilterList AdvertisingFilterPolicy = 0x01
	AdvertisingFilterPolicyProcessScanRequestsFromAllDevicesAndConnectionRequestsFromFilterList AdvertisingFilterPolicy = 0x02
	AdvertisingFilterPolicyProcessScanAndConnectionRequestsFromFilterList                       AdvertisingFilterPolicy = 0x03
)

const (
	AdvertisingIntervalDefault uint16 = 0x0800
	AdvertisingIntervalMin     uint16 = 0x0020
	AdvertisingIntervalMax     uint16 = 0x4000
)

type LESetAdvertisingParametersCommand struct {
	AdvertisingIntervalMin  uint16
	AdvertisingIntervalMax  uint16
	AdvertisingType         AdvertisingType
	OwnAddressType          OwnAddressType
	PeerAddressType         PeerAddressType
	PeerAddress             BDAddr
	AdvertisingChannelMap   AdvertisingChannelMap
	AdvertisingFilterPolicy AdvertisingFilterPolicy
}

func (p *LESetAdvertisingParametersCommand) Marshal() ([]byte, error) {
	buf := make([]byte, 15)
	binary.LittleEndian.PutUint16(buf[0:], p.AdvertisingIntervalMin)
	binary.LittleEndian.PutUint16(buf[2:], p.AdvertisingIntervalMax)
	buf[4] = byte(p.AdvertisingType)
	buf[5] = byte(p.OwnAddressType)
	buf[6] = byte(p.PeerAddressType)
	copy(buf[7:], p.PeerAddress[:])
	buf[13] = byte(p.AdvertisingChannelMap)
	buf[14] = byte(p.AdvertisingFilterPolicy)
	return buf, nil
}

func (p *LESetAdvertisingParametersCommand) Unmarshal(buf []byte) error {
	if len(buf) < 15 {
		return io.ErrUnexpectedEOF
	}
	p.AdvertisingIntervalMin = binary.LittleEndian.Uint16(buf[0:])
	p.AdvertisingIntervalMax = binary.LittleEndian.Uint16(buf[2:])
	p.AdvertisingType = AdvertisingType(buf[4])
	p.OwnAddressType = OwnAddressType(buf[5])
	p.PeerAddressType = PeerAddressType(buf[6])
	copy(p.PeerAddress[:], buf[7:13])
	p.AdvertisingChannelMap = AdvertisingChannelMap(buf[13])
	p.AdvertisingFilterPolicy = AdvertisingFilterPolicy(buf[14])
	return nil
}

func (p *LESetAdvertisingParametersCommand) Opcode() Opcode {
	return OpcodeLESetAdvertisingParameters
}
