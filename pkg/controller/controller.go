// Package controller correlates HCI commands with the events a controller
// emits in response, over a raw HCI socket whose kernel filter it borrows for
// the duration of each operation.
package controller

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Socket is the subset of a raw HCI socket the controller needs.
// GetFilter and SetFilter exchange the kernel struct hci_filter verbatim.
type Socket interface {
	Read(p []byte) (int, error)
	WriteAll(p []byte) error
	Poll(timeout time.Duration) (bool, error)
	GetFilter() ([]byte, error)
	SetFilter(b []byte) error
}

// Controller issues requests and subscriptions against one socket. The
// socket filter is shared kernel state, so every operation holds the
// controller's guard from filter install until restore; requests run one at
// a time and a live subscription blocks requests until it is closed.
//
// The caller owns the socket. Use a single Controller per socket.
type Controller struct {
	sock  Socket
	guard chan struct{}

	logger      *zap.Logger
	metrics     *Metrics
	timeout     time.Duration
	maxAttempts int
	pollStep    time.Duration
}

func New(sock Socket, opts ...Option) *Controller {
	c := &Controller{
		sock:        sock,
		guard:       make(chan struct{}, 1),
		logger:      zap.L(),
		timeout:     DefaultTimeout,
		maxAttempts: DefaultMaxAttempts,
		pollStep:    DefaultPollStep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) acquire(ctx context.Context) error {
	select {
	case c.guard <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) release() {
	<-c.guard
}
