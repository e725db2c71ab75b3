package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/muxable/hcisocket/pkg/hci"
	"go.uber.org/zap"
)

// Subscription is a stream of decoded events of one code. It holds the
// controller until it ends, so Close it as soon as it is no longer needed.
type Subscription struct {
	ID uuid.UUID

	events    chan hci.EventParameter
	cancel    context.CancelFunc
	done      chan struct{}
	forwarded chan struct{}

	mu  sync.Mutex
	err error
}

// Events is closed when the subscription ends. Events already decoded are
// still delivered after a decode failure but not after Close.
func (s *Subscription) Events() <-chan hci.EventParameter {
	return s.events
}

// Err returns what ended the subscription, nil while it runs or when it was
// cancelled.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops the subscription and returns once the previous socket filter
// is back in place.
func (s *Subscription) Close() error {
	s.cancel()
	<-s.done
	<-s.forwarded
	return s.Err()
}

// Subscribe installs a filter for the event code of newEvent() and decodes
// every matching frame into a fresh value from newEvent. LE meta parameter
// types only receive their own sub-event. Buffering is unbounded: a slow
// reader never stalls the socket.
func (c *Controller) Subscribe(ctx context.Context, newEvent func() hci.EventParameter) (*Subscription, error) {
	proto := newEvent()
	code := proto.EventCode()
	var subevent hci.LEMetaSubeventCode
	meta, isMeta := proto.(hci.LEMetaEventParameter)
	if isMeta {
		subevent = meta.Subevent()
	}

	if err := c.acquire(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		ID:        uuid.New(),
		events:    make(chan hci.EventParameter),
		cancel:    cancel,
		done:      make(chan struct{}),
		forwarded: make(chan struct{}),
	}
	logger := c.logger.With(zap.Stringer("subscription", s.ID), zap.Stringer("event", code))
	in := make(chan hci.EventParameter)
	started := make(chan error, 1)

	go func() {
		defer close(s.done)
		defer c.release()
		defer close(in)

		began := false
		err := withFilter(c.sock, eventFilter(code, subevent), func() error {
			began = true
			started <- nil
			c.metrics.subscriptionStarted()
			defer c.metrics.subscriptionEnded()
			logger.Debug("subscription started")
			return c.produce(ctx, logger, in, code, subevent, isMeta, newEvent)
		})
		if !began {
			started <- err
			return
		}
		if err != nil {
			logger.Warn("subscription ended", zap.Error(err))
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
			return
		}
		logger.Debug("subscription closed")
	}()

	if err := <-started; err != nil {
		cancel()
		<-s.done
		close(s.forwarded)
		close(s.events)
		return nil, err
	}
	go func() {
		defer close(s.forwarded)
		forward(ctx, in, s.events)
	}()
	return s, nil
}

// produce reads until ctx is cancelled or a frame fails to decode.
// Cancellation is checked before every read, and reads only happen after a
// short poll so a quiet socket does not pin the goroutine.
func (c *Controller) produce(ctx context.Context, logger *zap.Logger, in chan<- hci.EventParameter, code hci.EventCode, subevent hci.LEMetaSubeventCode, isMeta bool, newEvent func() hci.EventParameter) error {
	buf := make([]byte, hci.MaxEventSize)
	for {
		if ctx.Err() != nil {
			return nil
		}
		readable, err := c.sock.Poll(subscriptionPollInterval)
		if err != nil {
			if isTransient(err) {
				continue
			}
			return err
		}
		if !readable {
			continue
		}
		n, err := c.sock.Read(buf)
		if err != nil {
			if isTransient(err) {
				continue
			}
			return err
		}
		frame := buf[:n]
		logger.Debug("bluetooth reading", zap.String("packet", fmt.Sprintf("%x", frame)))

		payload, ok, err := eventPayload(frame, code, subevent, isMeta)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		ev := newEvent()
		if err := ev.Unmarshal(payload); err != nil {
			return &GarbageResponseError{Data: payload}
		}
		c.metrics.delivered(code)
		select {
		case in <- ev:
		case <-ctx.Done():
			return nil
		}
	}
}

// eventPayload extracts a copy of the parameters a subscriber decodes from
// frame. ok is false for frames of another code or sub-event.
func eventPayload(frame []byte, code hci.EventCode, subevent hci.LEMetaSubeventCode, isMeta bool) ([]byte, bool, error) {
	var header hci.EventHeader
	if len(frame) < 1 || header.Unmarshal(frame[1:]) != nil {
		return nil, false, &GarbageResponseError{Data: append([]byte(nil), frame...)}
	}
	payload := frame[1+hci.EventHeaderSize:]
	if len(payload) < int(header.ParameterLength) {
		return nil, false, &GarbageResponseError{Data: append([]byte(nil), frame...)}
	}
	payload = payload[:header.ParameterLength]
	if header.Code != code {
		return nil, false, nil
	}
	if isMeta {
		var m hci.LEMeta
		if err := m.Unmarshal(payload); err != nil {
			return nil, false, &GarbageResponseError{Data: append([]byte(nil), payload...)}
		}
		if m.Subevent != subevent {
			return nil, false, nil
		}
		payload = m.Data
	}
	return append([]byte(nil), payload...), true, nil
}

// forward moves events from in to out through an unbounded queue. out is
// closed once in is closed and drained, or as soon as ctx is done.
func forward(ctx context.Context, in <-chan hci.EventParameter, out chan<- hci.EventParameter) {
	defer close(out)
	var pending []hci.EventParameter
	for {
		var send chan<- hci.EventParameter
		var next hci.EventParameter
		if len(pending) > 0 {
			send = out
			next = pending[0]
		} else if in == nil {
			return
		}
		select {
		case ev, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			pending = append(pending, ev)
		case send <- next:
			pending[0] = nil
			pending = pending[1:]
		case <-ctx.Done():
			return
		}
	}
}
