package controller

import (
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultTimeout matches the customary one second HCI command timeout.
	DefaultTimeout = time.Second
	// DefaultMaxAttempts bounds the number of frames examined per request.
	DefaultMaxAttempts = 10
	// DefaultPollStep is subtracted from the remaining timeout after every
	// poll, regardless of how long the poll actually took.
	DefaultPollStep = 10 * time.Millisecond

	subscriptionPollInterval = 100 * time.Millisecond
)

type Option func(*Controller)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithDefaultTimeout sets the timeout used by requests that don't pass
// WithTimeout.
func WithDefaultTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.timeout = d
	}
}

func WithMaxAttempts(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

func WithPollStep(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.pollStep = d
		}
	}
}

type requestConfig struct {
	timeout time.Duration
}

type RequestOption func(*requestConfig)

// WithTimeout overrides the timeout of a single request. Zero disables
// polling and blocks on the socket until a frame arrives. Such a wait is
// still bounded by the attempt count, and by a fixed cap on reads that
// return a transient error or an unrelated event.
func WithTimeout(d time.Duration) RequestOption {
	return func(r *requestConfig) {
		r.timeout = d
	}
}

func (c *Controller) requestConfig(opts []RequestOption) requestConfig {
	cfg := requestConfig{timeout: c.timeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
