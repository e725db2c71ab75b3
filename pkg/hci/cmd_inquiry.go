package hci

import "io"

// GeneralInquiryAccessCode is the GIAC LAP 0x9E8B33.
var GeneralInquiryAccessCode = [3]byte{0x33, 0x8B, 0x9E}

// InquiryCommand only yields a command status; results arrive as separate
// inquiry result events, Section 7.1.1.
type InquiryCommand struct {
	LAP           [3]byte
	InquiryLength uint8 // N x 1.28s
	NumResponses  uint8
}

func (p *InquiryCommand) Marshal() ([]byte, error) {
	return []byte{p.LAP[0], p.LAP[1], p.LAP[2], p.InquiryLength, p.NumResponses}, nil
}

func (p *InquiryCommand) Unmarshal(buf []byte) error {
	if len(buf) != 5 {
		return io.ErrShortBuffer
	}
	copy(p.LAP[:], buf[0:3])
	p.InquiryLength = buf[3]
	p.NumResponses = buf[4]
	return nil
}

func (p *InquiryCommand) Opcode() Opcode {
	return OpcodeInquiry
}
