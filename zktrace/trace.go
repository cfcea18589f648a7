// Package zktrace provides an opt-in sink for raw protocol frames, for
// callers debugging a session against real hardware. Nothing in this module
// writes trace data anywhere on its own; a Sink must be supplied explicitly
// via zkclient.WithTrace, replacing the unconditional /tmp debug dump the
// original implementation used (see spec.md §9 and DESIGN.md).
package zktrace

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Sink receives one call per frame crossing the wire. dir is "in" or "out".
type Sink interface {
	Frame(dir string, raw []byte)
}

// NoopSink discards every frame. It is the default when a Client is built
// without WithTrace.
type NoopSink struct{}

// Frame implements Sink.
func (NoopSink) Frame(string, []byte) {}

// WriterSink writes a hex dump of every frame to w, one line per frame,
// guarded by a mutex since frames may arrive from goroutines driving
// multiple Clients concurrently.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink wraps w as a Sink.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Frame implements Sink.
func (s *WriterSink) Frame(dir string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "%s %s % x\n", time.Now().Format(time.RFC3339Nano), dir, raw)
}
