package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/muxable/hcisocket/pkg/hci"
	"go.uber.org/zap"
)

// Request is a raw device request: a command, its parameter bytes and the
// event that completes it.
type Request struct {
	Opcode     hci.Opcode
	Parameters []byte
	// Event is the awaited event code. The zero value means command
	// complete.
	Event hci.EventCode
	// Subevent is matched when Event is LE meta.
	Subevent hci.LEMetaSubeventCode
	// Length is how many payload bytes the caller wants back. Command
	// complete keeps the leading bytes of a longer payload, other events
	// keep the trailing ones. LE meta payloads, and any payload when
	// Length is hci.VariableLength, are returned whole.
	Length int
}

// SendRequest installs a filter for r, writes the command and waits for the
// correlated event. The socket guard is held for the whole exchange.
func (c *Controller) SendRequest(ctx context.Context, r Request, opts ...RequestOption) ([]byte, error) {
	if r.Event == 0 {
		r.Event = hci.EventCodeCommandComplete
	}
	cfg := c.requestConfig(opts)
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	start := time.Now()
	var payload []byte
	err := withFilter(c.sock, requestFilter(r.Opcode, r.Event, r.Subevent), func() error {
		if err := c.sendCommand(r.Opcode, r.Parameters); err != nil {
			return err
		}
		var err error
		payload, err = c.awaitResponse(expectation{
			opcode:   r.Opcode,
			params:   r.Parameters,
			event:    r.Event,
			subevent: r.Subevent,
			length:   r.Length,
			timeout:  cfg.timeout,
		})
		return err
	})
	c.metrics.observeRequest(r.Opcode, start, err)
	if err != nil {
		c.logger.Warn("bluetooth request failed", zap.Stringer("opcode", r.Opcode), zap.Stringer("event", r.Event), zap.Error(err))
		return nil, err
	}
	return payload, nil
}

// checkStatus splits the leading status byte off a completion payload.
// A payload without one means the controller broke the wire contract.
func checkStatus(opcode hci.Opcode, payload []byte) ([]byte, error) {
	if len(payload) < 1 {
		panic(fmt.Sprintf("hci: %s completed without a status byte", opcode))
	}
	if err := hci.StatusError(payload[0]); err != nil {
		return nil, err
	}
	return payload[1:], nil
}

func decode(v interface{ Unmarshal([]byte) error }, payload []byte) error {
	if err := v.Unmarshal(payload); err != nil {
		return &GarbageResponseError{Data: payload}
	}
	return nil
}

// Request sends a command without parameters and waits for its status.
func (c *Controller) Request(ctx context.Context, cmd hci.Command, opts ...RequestOption) error {
	return c.request(ctx, cmd.Opcode(), nil, opts)
}

// RequestParameters sends cp with its parameters and waits for its status.
func (c *Controller) RequestParameters(ctx context.Context, cp hci.CommandParameter, opts ...RequestOption) error {
	params, err := parameters(cp)
	if err != nil {
		return err
	}
	return c.request(ctx, cp.Opcode(), params, opts)
}

func (c *Controller) request(ctx context.Context, opcode hci.Opcode, params []byte, opts []RequestOption) error {
	payload, err := c.SendRequest(ctx, Request{Opcode: opcode, Parameters: params, Length: 1}, opts...)
	if err != nil {
		return err
	}
	_, err = checkStatus(opcode, payload)
	return err
}

// RequestReturn sends rp's command without parameters and decodes the
// return parameters into rp.
func (c *Controller) RequestReturn(ctx context.Context, rp hci.ReturnParameter, opts ...RequestOption) error {
	return c.requestReturn(ctx, nil, rp, opts)
}

// RequestParametersReturn sends cp and decodes the return parameters into
// rp. Both must describe the same command.
func (c *Controller) RequestParametersReturn(ctx context.Context, cp hci.CommandParameter, rp hci.ReturnParameter, opts ...RequestOption) error {
	if cp.Opcode() != rp.Opcode() {
		panic(fmt.Sprintf("hci: parameters of %s paired with return parameters of %s", cp.Opcode(), rp.Opcode()))
	}
	params, err := parameters(cp)
	if err != nil {
		return err
	}
	return c.requestReturn(ctx, params, rp, opts)
}

func (c *Controller) requestReturn(ctx context.Context, params []byte, rp hci.ReturnParameter, opts []RequestOption) error {
	opcode := rp.Opcode()
	payload, err := c.SendRequest(ctx, Request{Opcode: opcode, Parameters: params, Length: rp.Len() + 1}, opts...)
	if err != nil {
		return err
	}
	ret, err := checkStatus(opcode, payload)
	if err != nil {
		return err
	}
	return decode(rp, ret)
}

// RequestEvent sends cmd and decodes the payload of the event ep describes,
// with no status convention. LE meta parameters are matched on their
// sub-event and receive the payload after the sub-event code.
func (c *Controller) RequestEvent(ctx context.Context, cmd hci.Command, ep hci.EventParameter, opts ...RequestOption) error {
	params, err := parameters(cmd)
	if err != nil {
		return err
	}
	r := Request{
		Opcode:     cmd.Opcode(),
		Parameters: params,
		Event:      ep.EventCode(),
		Length:     ep.Len(),
	}
	if meta, ok := ep.(hci.LEMetaEventParameter); ok {
		r.Subevent = meta.Subevent()
	}
	payload, err := c.SendRequest(ctx, r, opts...)
	if err != nil {
		return err
	}
	return decode(ep, payload)
}
