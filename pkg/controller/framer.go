package controller

import (
	"context"
	"fmt"
	"io"

	"github.com/muxable/hcisocket/pkg/hci"
	"go.uber.org/zap"
)

// EncodeCommand builds a command packet: packet type, little-endian opcode,
// parameter length and parameters. More than 255 parameter bytes is a
// programming error.
func EncodeCommand(opcode hci.Opcode, params []byte) []byte {
	if len(params) > hci.MaxParameterLength {
		panic(fmt.Sprintf("hci: %d parameter bytes for %s exceed 255", len(params), opcode))
	}
	header := hci.CommandHeader{Opcode: opcode, ParameterLength: uint8(len(params))}
	buf := make([]byte, 0, 1+hci.CommandHeaderSize+len(params))
	buf = append(buf, byte(hci.PacketTypeCommand))
	buf = append(buf, header.Marshal()...)
	return append(buf, params...)
}

// DecodeCommand is the inverse of EncodeCommand.
func DecodeCommand(buf []byte) (hci.Opcode, []byte, error) {
	if len(buf) < 1+hci.CommandHeaderSize {
		return 0, nil, io.ErrShortBuffer
	}
	if hci.PacketType(buf[0]) != hci.PacketTypeCommand {
		return 0, nil, hci.ErrIncorrectPacket
	}
	var header hci.CommandHeader
	if err := header.Unmarshal(buf[1:]); err != nil {
		return 0, nil, err
	}
	params := buf[1+hci.CommandHeaderSize:]
	if len(params) != int(header.ParameterLength) {
		return 0, nil, io.ErrShortBuffer
	}
	return header.Opcode, params, nil
}

// parameters returns the encoded parameters of cmd, if it has any.
func parameters(cmd hci.Command) ([]byte, error) {
	cp, ok := cmd.(hci.CommandParameter)
	if !ok {
		return nil, nil
	}
	params, err := cp.Marshal()
	if err != nil {
		return nil, fmt.Errorf("hci: marshal %s: %w", cmd.Opcode(), err)
	}
	return params, nil
}

func (c *Controller) sendCommand(opcode hci.Opcode, params []byte) error {
	buf := EncodeCommand(opcode, params)
	c.logger.Debug("bluetooth writing", zap.Stringer("opcode", opcode), zap.String("packet", fmt.Sprintf("%x", buf)))
	return c.sock.WriteAll(buf)
}

// SendCommand writes cmd without waiting for any event. A nil params sends
// the command's own parameters.
func (c *Controller) SendCommand(ctx context.Context, cmd hci.Command, params []byte) error {
	if params == nil {
		var err error
		if params, err = parameters(cmd); err != nil {
			return err
		}
	}
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()
	return c.sendCommand(cmd.Opcode(), params)
}
