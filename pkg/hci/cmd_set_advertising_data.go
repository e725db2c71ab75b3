package hci

import "io"

const maxAdvertisingDataLength = 31

type SetAdvertisingDataCommand struct {
	AdvertisingData []DataType
}

func (p *SetAdvertisingDataCommand) Marshal() ([]byte, error) {
	var ads []byte
	for _, data := range p.AdvertisingData {
		ad, err := data.Marshal()
		if err != nil {
			return nil, err
		}
		ads = append(ads, ad...)
	}

	if len(ads) > maxAdvertisingDataLength {
		return nil, io.ErrShortWrite
	}

	// the length octet is followed by a fixed 31 byte field
	buf := make([]byte, 1+maxAdvertisingDataLength)
	buf[0] = uint8(len(ads))
	copy(buf[1:], ads)
	return buf, nil
}

func (p *SetAdvertisingDataCommand) Opcode() Opcode {
	return OpcodeSetAdvertisingData
}
