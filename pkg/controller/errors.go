package controller

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// ErrTimedOut is returned when no correlated event arrived within the
// timeout budget or the attempt limit.
var ErrTimedOut = errors.New("hci: timed out waiting for event")

// GarbageResponseError carries a frame or payload that could not be decoded.
type GarbageResponseError struct {
	Data []byte
}

func (e *GarbageResponseError) Error() string {
	return fmt.Sprintf("hci: garbage response [% X]", e.Data)
}

// SocketOptionError is a rejected filter get or set.
type SocketOptionError struct {
	Op  string
	Err error
}

func (e *SocketOptionError) Error() string {
	return fmt.Sprintf("hci: %s filter: %v", e.Op, e.Err)
}

func (e *SocketOptionError) Unwrap() error {
	return e.Err
}

// FilterRestoreError reports an operation that failed and whose previous
// filter could not be put back afterwards.
type FilterRestoreError struct {
	Err        error
	RestoreErr error
}

func (e *FilterRestoreError) Error() string {
	return "hci: could not restore filter: " + multierr.Combine(e.Err, e.RestoreErr).Error()
}

// Unwrap returns the failure of the operation itself.
func (e *FilterRestoreError) Unwrap() error {
	return e.Err
}

// Errors returns both the operation failure and the restore failure.
func (e *FilterRestoreError) Errors() []error {
	return multierr.Errors(multierr.Combine(e.Err, e.RestoreErr))
}

// Is lets errors.Is see the restore failure as well as the wrapped one.
func (e *FilterRestoreError) Is(target error) bool {
	return errors.Is(e.RestoreErr, target)
}
