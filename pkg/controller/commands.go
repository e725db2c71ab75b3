package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/muxable/hcisocket/pkg/hci"
)

// RemoteNameTimeout covers a full page of the remote device.
const RemoteNameTimeout = 10 * time.Second

func (c *Controller) Reset(ctx context.Context, opts ...RequestOption) error {
	return c.Request(ctx, hci.OpcodeReset, opts...)
}

func (c *Controller) ReadBDAddr(ctx context.Context, opts ...RequestOption) (hci.BDAddr, error) {
	var r hci.ReadBDAddr
	if err := c.RequestReturn(ctx, &r, opts...); err != nil {
		return hci.BDAddr{}, err
	}
	return r.Address, nil
}

func (c *Controller) ReadLocalName(ctx context.Context, opts ...RequestOption) (string, error) {
	var r hci.ReadLocalName
	if err := c.RequestReturn(ctx, &r, opts...); err != nil {
		return "", err
	}
	return r.Name, nil
}

func (c *Controller) ClearFilterAcceptList(ctx context.Context, opts ...RequestOption) error {
	return c.Request(ctx, hci.OpcodeClearFilterAcceptList, opts...)
}

func (c *Controller) ReadFilterAcceptListSize(ctx context.Context, opts ...RequestOption) (uint8, error) {
	var r hci.ReadFilterAcceptListSize
	if err := c.RequestReturn(ctx, &r, opts...); err != nil {
		return 0, err
	}
	return r.Size, nil
}

func (c *Controller) SetEventMask(ctx context.Context, mask hci.EventMask, opts ...RequestOption) error {
	return c.RequestParameters(ctx, &hci.SetEventMaskCommand{EventMask: mask}, opts...)
}

func (c *Controller) LESetEventMask(ctx context.Context, mask hci.LEEventMask, opts ...RequestOption) error {
	return c.RequestParameters(ctx, &hci.LESetEventMaskCommand{LEEventMask: mask}, opts...)
}

func (c *Controller) LEReadBufferSize(ctx context.Context, opts ...RequestOption) (*hci.LEReadBufferSize, error) {
	r := &hci.LEReadBufferSize{}
	if err := c.RequestReturn(ctx, r, opts...); err != nil {
		return nil, err
	}
	return r, nil
}

func (c *Controller) LEReadSupportedStates(ctx context.Context, opts ...RequestOption) (hci.LESupportedStates, error) {
	var r hci.LEReadSupportedStates
	if err := c.RequestReturn(ctx, &r, opts...); err != nil {
		return 0, err
	}
	return r.States, nil
}

func (c *Controller) SetAdvertisingData(ctx context.Context, data []hci.DataType, opts ...RequestOption) error {
	return c.RequestParameters(ctx, &hci.SetAdvertisingDataCommand{AdvertisingData: data}, opts...)
}

// LESetAdvertisingParameters fills in zero intervals and channel map with
// their defaults before sending.
func (c *Controller) LESetAdvertisingParameters(ctx context.Context, p hci.LESetAdvertisingParametersCommand, opts ...RequestOption) error {
	if p.AdvertisingIntervalMin == 0 {
		p.AdvertisingIntervalMin = hci.AdvertisingIntervalDefault
	}
	if p.AdvertisingIntervalMax == 0 {
		p.AdvertisingIntervalMax = hci.AdvertisingIntervalDefault
	}
	if p.AdvertisingChannelMap == 0 {
		p.AdvertisingChannelMap = hci.AdvertisingChannelMapDefault
	}
	for _, interval := range []uint16{p.AdvertisingIntervalMin, p.AdvertisingIntervalMax} {
		if interval < hci.AdvertisingIntervalMin || interval > hci.AdvertisingIntervalMax {
			return fmt.Errorf("advertising interval 0x%04X out of range", interval)
		}
	}
	if p.AdvertisingIntervalMin > p.AdvertisingIntervalMax {
		return fmt.Errorf("advertising interval min 0x%04X above max 0x%04X", p.AdvertisingIntervalMin, p.AdvertisingIntervalMax)
	}
	return c.RequestParameters(ctx, &p, opts...)
}

func (c *Controller) LESetAdvertisingEnable(ctx context.Context, enable bool, opts ...RequestOption) error {
	return c.RequestParameters(ctx, &hci.LESetAdvertisingEnableCommand{AdvertisingEnable: enable}, opts...)
}

func (c *Controller) LESetScanParameters(ctx context.Context, p hci.LESetScanParametersCommand, opts ...RequestOption) error {
	return c.RequestParameters(ctx, &p, opts...)
}

func (c *Controller) LESetScanEnable(ctx context.Context, enable, filterDuplicates bool, opts ...RequestOption) error {
	return c.RequestParameters(ctx, &hci.LESetScanEnableCommand{LEScanEnable: enable, FilterDuplicates: filterDuplicates}, opts...)
}

// RemoteName pages addr and returns its user-friendly name. The controller
// acknowledges with a command status first, so this waits RemoteNameTimeout
// unless a WithTimeout option says otherwise.
func (c *Controller) RemoteName(ctx context.Context, addr hci.BDAddr, opts ...RequestOption) (string, error) {
	cmd := &hci.RemoteNameRequestCommand{
		Address:                addr,
		PageScanRepetitionMode: hci.PageScanRepetitionModeR2,
	}
	var ev hci.RemoteNameRequestComplete
	opts = append([]RequestOption{WithTimeout(RemoteNameTimeout)}, opts...)
	if err := c.RequestEvent(ctx, cmd, &ev, opts...); err != nil {
		return "", err
	}
	if err := hci.StatusError(ev.Status); err != nil {
		return "", err
	}
	return ev.Name, nil
}

// Inquiry starts a classic inquiry. It returns once the controller has
// accepted the command; results arrive as separate events.
func (c *Controller) Inquiry(ctx context.Context, length, numResponses uint8, opts ...RequestOption) error {
	cmd := &hci.InquiryCommand{
		LAP:           hci.GeneralInquiryAccessCode,
		InquiryLength: length,
		NumResponses:  numResponses,
	}
	var ev hci.CommandStatus
	if err := c.RequestEvent(ctx, cmd, &ev, opts...); err != nil {
		return err
	}
	return hci.StatusError(ev.Status)
}
