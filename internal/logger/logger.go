// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"io"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

var (
	// nullLogger is a logger that discards all log messages.
	nullLogger = newChannel(&hclog.LoggerOptions{Level: hclog.Off}, time.Now)
)

// Logger describes the interface that must be implemented by all loggers
type Logger interface {
	// WithName returns a new Logger instance with the specified name.
	WithName(name string) Logger

	// SetLevel updates the logger level.
	SetLevel(level Level)

	// Trace emit a message and key/value pairs at the TRACE level.
	Trace(msg string, args ...interface{})

	// Debug emit a message and key/value pairs at the DEBUG level.
	Debug(msg string, args ...interface{})

	// Info emit a message and key/value pairs at the INFO level.
	Info(msg string, args ...interface{})

	// Warn emit a message and key/value pairs at the WARN level.
	Warn(msg string, args ...interface{})

	// Error emit a message and key/value pairs at the ERROR level.
	Error(msg string, args ...interface{})

	// Log emit a message and key/value pairs at the given level.
	Log(level Level, msg string, args ...interface{})
}

// Make sure that Channel is a Logger.
var _ Logger = &Channel{}

// Channel is a named Logger that fans out every record passing its own level
// to the attached sinks. A record is timestamped once and every sink renders
// that same time. Loggers derived with WithName share the sinks and the level
// of the channel they come from.
type Channel struct {
	log   hclog.InterceptLogger
	state *channelState
}

// channelState is shared between a channel and all its named children.
type channelState struct {
	name string
	now  func() time.Time
	// parent receives every record of the channel when propagation is on.
	parent *Channel

	lock  sync.RWMutex
	sinks []*Sink
}

func newChannel(opts *hclog.LoggerOptions, now func() time.Time) *Channel {
	opts.Output = io.Discard
	state := &channelState{name: opts.Name, now: now}

	log := hclog.NewInterceptLogger(opts)
	log.RegisterSink(&fanout{state: state})
	return &Channel{
		log:   log,
		state: state,
	}
}

// NewLogger creates a new logger instance writing every record at INFO or
// above to writer.
func NewLogger(writer io.Writer) Logger {
	formatter := NewFormatter(time.Now)
	channel := newChannel(&hclog.LoggerOptions{
		Level: INFO.convertedLevel(),
	}, time.Now)
	channel.AddSink(NewSink("writer", newSyncWriter(writer), TRACE, formatter))

	return channel
}

// Name returns the name the channel has been registered with.
func (c *Channel) Name() string {
	return c.state.name
}

// Propagate reports whether records are also forwarded to the root channel sinks.
func (c *Channel) Propagate() bool {
	return c.state.parent != nil
}

// Level returns the current minimum level accepted by the channel.
func (c *Channel) Level() Level {
	return levelFromHCLog(c.log.GetLevel())
}

// Sinks returns a snapshot of the sinks attached to the channel.
func (c *Channel) Sinks() []*Sink {
	c.state.lock.RLock()
	defer c.state.lock.RUnlock()

	sinks := make([]*Sink, len(c.state.sinks))
	copy(sinks, c.state.sinks)
	return sinks
}

// AddSink attaches sink to the channel and to all the loggers derived from it.
func (c *Channel) AddSink(sink *Sink) {
	c.state.lock.Lock()
	defer c.state.lock.Unlock()

	c.state.sinks = append(c.state.sinks, sink)
}

func (c *Channel) WithName(name string) Logger {
	return &Channel{
		log:   c.log.ResetNamedIntercept(name),
		state: c.state,
	}
}

func (c *Channel) SetLevel(level Level) {
	c.log.SetLevel(level.convertedLevel())
}

func (c *Channel) Log(level Level, msg string, args ...interface{}) {
	converted := level.convertedLevel()
	if converted < c.log.GetLevel() {
		return
	}

	c.log.Log(converted, msg, args...)
}

func (c *Channel) Trace(msg string, args ...interface{}) {
	c.Log(TRACE, msg, args...)
}

func (c *Channel) Debug(msg string, args ...interface{}) {
	c.Log(DEBUG, msg, args...)
}

func (c *Channel) Info(msg string, args ...interface{}) {
	c.Log(INFO, msg, args...)
}

func (c *Channel) Warn(msg string, args ...interface{}) {
	c.Log(WARN, msg, args...)
}

func (c *Channel) Error(msg string, args ...interface{}) {
	c.Log(ERROR, msg, args...)
}

// fanout is the only sink registered on the hclog logger of a channel.
// It reads the clock once per record and hands the same time to every sink
// of the channel and, when propagating, to the sinks of the parent.
type fanout struct {
	state *channelState
}

func (f *fanout) Accept(name string, level hclog.Level, msg string, args ...interface{}) {
	ts := f.state.now()
	f.state.dispatch(ts, name, level, msg, args...)
	if f.state.parent != nil {
		// the parent level is bypassed, only its sinks thresholds apply
		f.state.parent.state.dispatch(ts, name, level, msg, args...)
	}
}

func (s *channelState) dispatch(ts time.Time, name string, level hclog.Level, msg string, args ...interface{}) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	for _, sink := range s.sinks {
		sink.write(ts, name, level, msg, args...)
	}
}
