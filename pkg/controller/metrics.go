package controller

import (
	"errors"
	"time"

	"github.com/muxable/hcisocket/pkg/hci"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts request outcomes, discarded frames and subscription
// deliveries. A nil *Metrics records nothing.
type Metrics struct {
	Requests            *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	DiscardedFrames     *prometheus.CounterVec
	SubscriptionEvents  *prometheus.CounterVec
	ActiveSubscriptions prometheus.Gauge
}

func NewMetrics() *Metrics {
	return &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hci",
				Subsystem: "controller",
				Name:      "requests_total",
				Help:      "Total number of device requests by opcode and result",
			},
			[]string{"opcode", "result"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "hci",
				Subsystem: "controller",
				Name:      "request_duration_seconds",
				Help:      "Device request duration in seconds, filter install to restore",
				Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"opcode"},
		),

		DiscardedFrames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hci",
				Subsystem: "controller",
				Name:      "discarded_frames_total",
				Help:      "Event frames read while awaiting a response that did not belong to it",
				// reason is one of opcode, subevent, address, status, unrelated
			},
			[]string{"event", "reason"},
		),

		SubscriptionEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hci",
				Subsystem: "subscription",
				Name:      "events_total",
				Help:      "Events delivered to subscriptions",
			},
			[]string{"event"},
		),

		ActiveSubscriptions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "hci",
				Subsystem: "subscription",
				Name:      "active",
				Help:      "Number of subscriptions currently holding the socket",
			},
		),
	}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.Requests,
		m.RequestDuration,
		m.DiscardedFrames,
		m.SubscriptionEvents,
		m.ActiveSubscriptions,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) observeRequest(opcode hci.Opcode, start time.Time, err error) {
	if m == nil {
		return
	}
	op := opcode.String()
	m.Requests.WithLabelValues(op, resultLabel(err)).Inc()
	m.RequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *Metrics) discarded(code hci.EventCode, reason string) {
	if m == nil {
		return
	}
	m.DiscardedFrames.WithLabelValues(code.String(), reason).Inc()
}

func (m *Metrics) delivered(code hci.EventCode) {
	if m == nil {
		return
	}
	m.SubscriptionEvents.WithLabelValues(code.String()).Inc()
}

func (m *Metrics) subscriptionStarted() {
	if m == nil {
		return
	}
	m.ActiveSubscriptions.Inc()
}

func (m *Metrics) subscriptionEnded() {
	if m == nil {
		return
	}
	m.ActiveSubscriptions.Dec()
}

func resultLabel(err error) string {
	var (
		status  hci.Error
		garbage *GarbageResponseError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTimedOut):
		return "timeout"
	case errors.As(err, &status):
		return "status"
	case errors.As(err, &garbage):
		return "garbage"
	default:
		return "error"
	}
}
