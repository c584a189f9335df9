package rebase

import (
	"bytes"
	"sync"
)

// Stream is the io.WriteCloser form of Rebase. Region boundaries can fall
// anywhere, so input is buffered and rewritten on Close.
type Stream struct {
	opts Options

	mu     sync.Mutex
	in     bytes.Buffer
	out    []byte
	stats  Stats
	closed bool
}

func NewStream(opts Options) *Stream {
	return &Stream{opts: opts}
}

func (s *Stream) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	return s.in.Write(p)
}

func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.out, s.stats = Rebase(s.in.Bytes(), s.opts)
	s.in.Reset()
	return nil
}

// Bytes returns the rebased output; it is nil until Close.
func (s *Stream) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out
}

func (s *Stream) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
