package hci

import "io"

type LESetAdvertisingEnableCommand struct {
	AdvertisingEnable bool
}

func (p *LESetAdvertisingEnableCommand) Marshal() ([]byte, error) {
	buf := make([]byte, 1)
	if p.AdvertisingEnable {
		buf[0] = 1
	}
	return buf, nil
}

func (p *LESetAdvertisingEnableCommand) Unmarshal(buf []byte) error {
	if len(buf) != 1 {
		return io.ErrShortBuffer
	}
	p.AdvertisingEnable = buf[0] == 1
	return nil
}

func (p *LESetAdvertisingEnableCommand) Opcode() Opcode {
	return OpcodeLESetAdvertisingEnable
}
