package hci

import (
	"encoding/binary"
	"io"
)

type LEScanType uint8

const (
	LEScanTypePassive LEScanType = 0x00
	LEScanTypeActive  LEScanType = 0x01
)

// Section 7.8.10
type LESetScanParametersCommand struct {
	LEScanType           LEScanType
	LEScanInterval       uint16 // N x 0.625ms
	LEScanWindow         uint16 // N x 0.625ms
	OwnAddressType       OwnAddressType
	ScanningFilterPolicy uint8
}

func (p *LESetScanParametersCommand) Marshal() ([]byte, error) {
	buf := make([]byte, 7)
	buf[0] = byte(p.LEScanType)
	binary.LittleEndian.PutUint16(buf[1:], p.LEScanInterval)
	binary.LittleEndian.PutUint16(buf[3:], p.LEScanWindow)
	buf[5] = byte(p.OwnAddressType)
	buf[6] = p.ScanningFilterPolicy
	return buf, nil
}

func (p *LESetScanParametersCommand) Unmarshal(buf []byte) error {
	if len(buf) != 7 {
		return io.ErrShortBuffer
	}
	p.LEScanType = LEScanType(buf[0])
	p.LEScanInterval = binary.LittleEndian.Uint16(buf[1:])
	p.LEScanWindow = binary.LittleEndian.Uint16(buf[3:])
	p.OwnAddressType = OwnAddressType(buf[5])
	p.ScanningFilterPolicy = buf[6]
	return nil
}

func (p *LESetScanParametersCommand) Opcode() Opcode {
	return OpcodeLESetScanParameters
}

// Section 7.8.11
type LESetScanEnableCommand struct {
	LEScanEnable     bool
	FilterDuplicates bool
}

func (p *LESetScanEnableCommand) Marshal() ([]byte, error) {
	return []byte{btoi(p.LEScanEnable), btoi(p.FilterDuplicates)}, nil
}

func (p *LESetScanEnableCommand) Unmarshal(buf []byte) error {
	if len(buf) != 2 {
		return io.ErrShortBuffer
	}
	p.LEScanEnable = buf[0] == 1
	p.FilterDuplicates = buf[1] == 1
	return nil
}

func (p *LESetScanEnableCommand) Opcode() Opcode {
	return OpcodeLESetScanEnable
}

func btoi(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
