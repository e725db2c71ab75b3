//go:build linux
// +build linux

package socket

import (
	"fmt"
	"io"
	"sync"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

func ioR(t, nr, size uintptr) uintptr {
	return (2 << 30) | (t << 8) | nr | (size << 16)
}

func ioW(t, nr, size uintptr) uintptr {
	return (1 << 30) | (t << 8) | nr | (size << 16)
}

func ioctl(fd, op, arg uintptr) error {
	if _, _, ep := unix.Syscall(unix.SYS_IOCTL, fd, op, arg); ep != 0 {
		return ep
	}
	return nil
}

const (
	ioctlSize     = 4
	hciMaxDevices = 16
	typHCI        = 72 // 'H'

	solHCI    = 0 // SOL_HCI
	hciFilter = 2 // HCI_FILTER

	// FilterSize is sizeof(struct hci_filter) including tail padding.
	FilterSize = 16

	pollErrors = int16(unix.POLLHUP | unix.POLLNVAL | unix.POLLERR)
	pollDataIn = int16(unix.POLLIN)
)

var (
	hciUpDevice      = ioW(typHCI, 201, ioctlSize) // HCIDEVUP
	hciGetDeviceList = ioR(typHCI, 210, ioctlSize) // HCIGETDEVLIST
)

type devListRequest struct {
	devNum     uint16
	devRequest [hciMaxDevices]struct {
		id  uint16
		opt uint32
	}
}

// Socket is a raw HCI socket bound to one controller. Unlike the user
// channel, the raw channel honours the kernel event filter and leaves the
// device under control of the kernel.
type Socket struct {
	fd     int
	dev    int
	closed chan struct{}
	cmu    sync.Mutex
	rmu    sync.Mutex
	wmu    sync.Mutex
}

// NewSocket returns a raw HCI socket of the specified device id.
// If id is -1, the first available HCI device is returned.
func NewSocket(id int) (*Socket, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.BTPROTO_HCI)
	if err != nil {
		return nil, errors.Wrap(err, "can't create socket")
	}

	if id != -1 {
		s, err := open(fd, id)
		if err != nil {
			unix.Close(fd)
			return nil, err
		}
		return s, nil
	}

	req := devListRequest{devNum: hciMaxDevices}
	if err = ioctl(uintptr(fd), hciGetDeviceList, uintptr(unsafe.Pointer(&req))); err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "can't get device list")
	}
	var msg string
	for i := 0; i < int(req.devNum); i++ {
		id := int(req.devRequest[i].id)
		s, err := open(fd, id)
		if err == nil {
			return s, nil
		}
		msg = msg + fmt.Sprintf("(hci%d: %s)", id, err)
	}
	unix.Close(fd)
	return nil, errors.Errorf("no devices available: %s", msg)
}

func open(fd, id int) (*Socket, error) {
	// The raw channel needs the device up.
	if err := ioctl(uintptr(fd), hciUpDevice, uintptr(id)); err != nil && err != unix.EALREADY {
		return nil, errors.Wrap(err, "can't up device")
	}

	sa := unix.SockaddrHCI{Dev: uint16(id), Channel: unix.HCI_CHANNEL_RAW}
	if err := unix.Bind(fd, &sa); err != nil {
		return nil, errors.Wrap(err, "can't bind socket to hci raw channel")
	}

	zap.L().Debug("bluetooth socket opened", zap.Int("device", id), zap.Int("fd", fd))
	return &Socket{fd: fd, dev: id, closed: make(chan struct{})}, nil
}

// Device returns the controller index the socket is bound to.
func (s *Socket) Device() int {
	return s.dev
}

func (s *Socket) isOpen() bool {
	select {
	case <-s.closed:
		return false
	default:
		return true
	}
}

// Read reads one packet. Errors keep their errno so callers can detect
// EAGAIN and EINTR.
func (s *Socket) Read(p []byte) (int, error) {
	if !s.isOpen() {
		return 0, io.EOF
	}
	s.rmu.Lock()
	defer s.rmu.Unlock()
	n, err := unix.Read(s.fd, p)
	if err != nil {
		return 0, errors.Wrap(err, "can't read hci socket")
	}
	return n, nil
}

func (s *Socket) Write(p []byte) (int, error) {
	if !s.isOpen() {
		return 0, io.EOF
	}
	s.wmu.Lock()
	defer s.wmu.Unlock()
	n, err := unix.Write(s.fd, p)
	if err != nil {
		return n, errors.Wrap(err, "can't write hci socket")
	}
	return n, nil
}

// WriteAll writes p completely, retrying short writes, EAGAIN and EINTR.
func (s *Socket) WriteAll(p []byte) error {
	if !s.isOpen() {
		return io.EOF
	}
	s.wmu.Lock()
	defer s.wmu.Unlock()
	for len(p) > 0 {
		n, err := unix.Write(s.fd, p)
		if err == unix.EAGAIN || err == unix.EINTR {
			continue
		}
		if err != nil {
			return errors.Wrap(err, "can't write hci socket")
		}
		p = p[n:]
	}
	return nil
}

// Poll waits up to timeout for the socket to become readable. A negative
// timeout blocks indefinitely.
func (s *Socket) Poll(timeout time.Duration) (bool, error) {
	if !s.isOpen() {
		return false, io.EOF
	}
	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
	}
	pfds := []unix.PollFd{{Fd: int32(s.fd), Events: pollDataIn}}
	if _, err := unix.Poll(pfds, ms); err != nil {
		return false, errors.Wrap(err, "can't poll hci socket")
	}
	evts := pfds[0].Revents
	switch {
	case evts&pollErrors != 0:
		zap.L().Debug("hci socket error", zap.Int16("revents", evts))
		return false, io.EOF
	case evts&pollDataIn != 0:
		return true, nil
	default:
		return false, nil
	}
}

// GetFilter returns the raw struct hci_filter currently installed.
func (s *Socket) GetFilter() ([]byte, error) {
	buf := make([]byte, FilterSize)
	l := uint32(len(buf))
	_, _, e := unix.Syscall6(unix.SYS_GETSOCKOPT, uintptr(s.fd), solHCI, hciFilter,
		uintptr(unsafe.Pointer(&buf[0])), uintptr(unsafe.Pointer(&l)), 0)
	if e != 0 {
		return nil, errors.Wrap(e, "can't get hci filter")
	}
	return buf[:l], nil
}

// SetFilter installs a raw struct hci_filter.
func (s *Socket) SetFilter(b []byte) error {
	if len(b) == 0 {
		return errors.New("empty hci filter")
	}
	_, _, e := unix.Syscall6(unix.SYS_SETSOCKOPT, uintptr(s.fd), solHCI, hciFilter,
		uintptr(unsafe.Pointer(&b[0])), uintptr(len(b)), 0)
	if e != 0 {
		return errors.Wrap(e, "can't set hci filter")
	}
	return nil
}

// Close releases the socket without waiting for an in-flight Read, so it
// can be used to abandon a blocked request. The shutdown wakes a reader
// parked in the kernel where the protocol supports it.
func (s *Socket) Close() error {
	s.cmu.Lock()
	defer s.cmu.Unlock()
	if !s.isOpen() {
		return nil
	}
	close(s.closed)
	_ = unix.Shutdown(s.fd, unix.SHUT_RDWR)
	return errors.Wrap(unix.Close(s.fd), "can't close hci socket")
}
