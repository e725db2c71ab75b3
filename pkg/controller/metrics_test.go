package controller

import (
	"errors"
	"fmt"
	"testing"

	"github.com/muxable/hcisocket/pkg/hci"
	"github.com/stretchr/testify/assert"
)

func TestResultLabel(t *testing.T) {
	for want, err := range map[string]error{
		"ok":      nil,
		"timeout": &FilterRestoreError{Err: ErrTimedOut, RestoreErr: errors.New("EPERM")},
		"status":  fmt.Errorf("reset: %w", hci.ErrHardwareFailure),
		"garbage": &GarbageResponseError{Data: []byte{1}},
		"error":   errors.New("EBADF"),
	} {
		assert.Equal(t, want, resultLabel(err))
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.discarded(hci.EventCodeCommandComplete, "opcode")
		m.delivered(hci.EventCodeLEMeta)
		m.subscriptionStarted()
		m.subscriptionEnded()
	})
}

func TestGarbageResponseError(t *testing.T) {
	err := &GarbageResponseError{Data: []byte{0x04, 0x0E}}
	assert.Equal(t, "hci: garbage response [04 0E]", err.Error())
}
