// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"io"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Make sure that Sink can be registered on an hclog intercept logger.
var _ hclog.SinkAdapter = &Sink{}

// Sink is a destination for log records with its own minimum severity.
type Sink struct {
	destination string
	threshold   Level
	formatter   *Formatter
	out         io.Writer
}

// NewSink returns a sink writing the records at threshold or above to out.
// destination is a human readable description used for introspection only.
func NewSink(destination string, out io.Writer, threshold Level, formatter *Formatter) *Sink {
	if formatter == nil {
		formatter = NewFormatter(nil)
	}

	return &Sink{
		destination: destination,
		threshold:   threshold,
		formatter:   formatter,
		out:         out,
	}
}

// Destination describes where the sink writes to.
func (s *Sink) Destination() string {
	return s.destination
}

// Threshold returns the minimum level forwarded by the sink.
func (s *Sink) Threshold() Level {
	return s.threshold
}

// Formatter returns the formatter used to render lines.
func (s *Sink) Formatter() *Formatter {
	return s.formatter
}

// Accept implements hclog.SinkAdapter, the record is timestamped with the formatter clock.
func (s *Sink) Accept(name string, level hclog.Level, msg string, args ...interface{}) {
	s.write(s.formatter.Now(), name, level, msg, args...)
}

// write renders and writes a record created at ts if it passes the sink threshold.
func (s *Sink) write(ts time.Time, name string, level hclog.Level, msg string, args ...interface{}) {
	if !s.threshold.enabled(level) {
		return
	}

	// write errors cannot be reported anywhere useful from here
	_, _ = s.out.Write(s.formatter.Format(ts, name, levelFromHCLog(level), msg, args...))
}

// syncWriter serializes the writes of every sink sharing the same destination,
// so each line reaches the underlying writer in one piece.
type syncWriter struct {
	lock sync.Mutex
	out  io.Writer
}

func newSyncWriter(out io.Writer) *syncWriter {
	if sw, ok := out.(*syncWriter); ok {
		return sw
	}

	return &syncWriter{out: out}
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.out.Write(p)
}
