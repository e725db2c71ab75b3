package controller

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/muxable/hcisocket/pkg/hci"
	"golang.org/x/sys/unix"
)

type pollResult struct {
	readable bool
	err      error
}

// fakeSocket replays scripted frames. Poll results and read errors are
// consumed before frames; without a scripted poll the socket is readable
// whenever a frame is queued.
type fakeSocket struct {
	mu sync.Mutex

	frames   [][]byte
	polls    []pollResult
	readErrs []error

	pollCalls    int
	pollTimeouts []time.Duration
	reads        int

	filter        []byte
	filterHistory [][]byte
	getErr        error
	setErr        error
	setErrAt      int
	setCalls      int

	writes  [][]byte
	onWrite func(s *fakeSocket, p []byte)
}

var initialFilter = Filter{TypeMask: 0x10, EventMask: [2]uint32{0xFFFFFFFF, 0x1}, Opcode: 0x0C03}

func newFakeSocket(frames ...[]byte) *fakeSocket {
	b, _ := initialFilter.MarshalBinary()
	return &fakeSocket{frames: frames, filter: b}
}

func (s *fakeSocket) push(frames ...[]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, frames...)
}

func (s *fakeSocket) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if len(s.readErrs) > 0 {
		err := s.readErrs[0]
		s.readErrs = s.readErrs[1:]
		return 0, err
	}
	if len(s.frames) == 0 {
		return 0, unix.EAGAIN
	}
	n := copy(p, s.frames[0])
	s.frames = s.frames[1:]
	return n, nil
}

func (s *fakeSocket) WriteAll(p []byte) error {
	s.mu.Lock()
	s.writes = append(s.writes, append([]byte(nil), p...))
	onWrite := s.onWrite
	s.mu.Unlock()
	if onWrite != nil {
		onWrite(s, p)
	}
	return nil
}

func (s *fakeSocket) Poll(timeout time.Duration) (bool, error) {
	s.mu.Lock()
	s.pollCalls++
	s.pollTimeouts = append(s.pollTimeouts, timeout)
	if len(s.polls) > 0 {
		r := s.polls[0]
		s.polls = s.polls[1:]
		s.mu.Unlock()
		return r.readable, r.err
	}
	ready := len(s.frames) > 0 || len(s.readErrs) > 0
	s.mu.Unlock()
	if ready {
		return true, nil
	}
	if timeout > time.Millisecond {
		timeout = time.Millisecond
	}
	time.Sleep(timeout)
	return false, nil
}

func (s *fakeSocket) GetFilter() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	return append([]byte(nil), s.filter...), nil
}

func (s *fakeSocket) SetFilter(b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCalls++
	if s.setErr != nil && (s.setErrAt == 0 || s.setErrAt == s.setCalls) {
		return s.setErr
	}
	s.filter = append([]byte(nil), b...)
	s.filterHistory = append(s.filterHistory, s.filter)
	return nil
}

func (s *fakeSocket) currentFilter() Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	var f Filter
	_ = f.UnmarshalBinary(s.filter)
	return f
}

func (s *fakeSocket) written() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.writes...)
}

func commandComplete(op hci.Opcode, ret ...byte) []byte {
	params := []byte{1, 0, 0}
	binary.LittleEndian.PutUint16(params[1:], uint16(op))
	return hci.EncodeEvent(hci.EventCodeCommandComplete, append(params, ret...))
}

func commandStatus(status uint8, op hci.Opcode) []byte {
	p := hci.CommandStatus{Status: status, NumCommandPackets: 1, CommandOpcode: op}
	b, _ := p.Marshal()
	return hci.EncodeEvent(hci.EventCodeCommandStatus, b)
}

func leMeta(sub hci.LEMetaSubeventCode, data ...byte) []byte {
	return hci.EncodeEvent(hci.EventCodeLEMeta, append([]byte{byte(sub)}, data...))
}
