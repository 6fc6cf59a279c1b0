// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	// DefaultFilePath is the file the persistent sink of a default channel appends to.
	DefaultFilePath = "sample.log"
	// RootChannelName is the name of the channel returned by Registry.Root.
	RootChannelName = "root"

	// StdoutStream selects the process standard output for console sinks.
	StdoutStream = "stdout"
	// StderrStream selects the process standard error for console sinks.
	StderrStream = "stderr"

	logFilePermissions = 0o644
)

var (
	// ErrOpenLogFile wraps failures while opening the file of a file sink.
	ErrOpenLogFile = errors.New("cannot open log file")
	// ErrInvalidSink is returned for sink options that cannot be turned into a sink.
	ErrInvalidSink = errors.New("invalid sink")
	// ErrCloseRegistry wraps the failures collected while closing the registry files.
	ErrCloseRegistry = errors.New("cannot close log files")
)

// SinkType identifies the kind of destination of a sink.
type SinkType string

const (
	// FileSink appends lines to a file.
	FileSink SinkType = "file"
	// ConsoleSink writes lines to the process standard output or error.
	ConsoleSink SinkType = "console"
)

// SinkOptions describes a sink to attach to a channel.
type SinkOptions struct {
	Type SinkType
	// Path is the file to append to for FileSink.
	Path string
	// Stream is StdoutStream or StderrStream for ConsoleSink; empty means StderrStream.
	Stream string
	Level  Level
}

// ChannelOptions describes how a channel is set up the first time it is initialized.
type ChannelOptions struct {
	Level     Level
	Propagate bool
	Sinks     []SinkOptions
}

// DefaultChannelOptions returns the setup used by Initialize: the channel accepts
// DEBUG and above, does not propagate, appends ERROR and above to sample.log and
// writes INFO and above to standard error.
func DefaultChannelOptions() ChannelOptions {
	return ChannelOptions{
		Level:     DEBUG,
		Propagate: false,
		Sinks: []SinkOptions{
			{Type: FileSink, Path: DefaultFilePath, Level: ERROR},
			{Type: ConsoleSink, Stream: StderrStream, Level: INFO},
		},
	}
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithTimeFn sets the clock used to timestamp the lines of every channel.
func WithTimeFn(timeFn func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.timeFn = timeFn
	}
}

// WithConsole sets the writers used by console sinks in place of os.Stdout and os.Stderr.
func WithConsole(stdout, stderr io.Writer) RegistryOption {
	return func(r *Registry) {
		r.streams[StdoutStream] = newSyncWriter(stdout)
		r.streams[StderrStream] = newSyncWriter(stderr)
	}
}

// Registry maps channel names to channels and owns the files they write to.
// Every channel is set up at most once for the lifetime of the registry.
type Registry struct {
	timeFn  func() time.Time
	streams map[string]*syncWriter

	lock     sync.Mutex
	channels map[string]*registryEntry
	files    map[string]*logFile

	rootOnce sync.Once
	root     *Channel
}

type registryEntry struct {
	once    sync.Once
	channel *Channel
	err     error
}

type logFile struct {
	file   *os.File
	writer *syncWriter
	// refs counts the sinks set up on the file.
	refs int
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	registry := &Registry{
		timeFn: time.Now,
		streams: map[string]*syncWriter{
			StdoutStream: newSyncWriter(os.Stdout),
			StderrStream: newSyncWriter(os.Stderr),
		},
		channels: make(map[string]*registryEntry),
		files:    make(map[string]*logFile),
	}

	for _, opt := range opts {
		opt(registry)
	}
	return registry
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	return NewRegistry()
})

// Default returns the process wide registry, creating it on first use.
func Default() *Registry {
	return defaultRegistry()
}

// Initialize sets up the channel name in the process wide registry with
// DefaultChannelOptions and returns it.
func Initialize(name string) (*Channel, error) {
	return Default().Initialize(name)
}

// Initialize returns the channel registered as name, setting it up with
// DefaultChannelOptions if this is the first request for it.
func (r *Registry) Initialize(name string) (*Channel, error) {
	return r.InitializeWith(name, DefaultChannelOptions())
}

// InitializeWith returns the channel registered as name. The first successful
// call attaches the sinks described by opts; later calls return the same channel
// and ignore opts. When the setup fails the error is returned to every caller
// waiting on it and the name is left free for a later attempt.
func (r *Registry) InitializeWith(name string, opts ChannelOptions) (*Channel, error) {
	r.lock.Lock()
	entry, found := r.channels[name]
	if !found {
		entry = new(registryEntry)
		r.channels[name] = entry
	}
	r.lock.Unlock()

	entry.once.Do(func() {
		entry.channel, entry.err = r.setupChannel(name, opts)
		if entry.err != nil {
			r.lock.Lock()
			if r.channels[name] == entry {
				delete(r.channels, name)
			}
			r.lock.Unlock()
		}
	})

	return entry.channel, entry.err
}

// Channel returns the channel already registered as name.
func (r *Registry) Channel(name string) (*Channel, bool) {
	r.lock.Lock()
	entry, found := r.channels[name]
	r.lock.Unlock()
	if !found {
		return nil, false
	}

	// wait for a concurrent setup to complete
	entry.once.Do(func() {})
	return entry.channel, entry.err == nil && entry.channel != nil
}

// Root returns the root channel. It receives the records of the channels
// initialized with Propagate set. It has no sinks until a channel named
// RootChannelName is initialized, which attaches its sinks to this same
// channel, or until some are added with AddSink.
func (r *Registry) Root() *Channel {
	r.rootOnce.Do(func() {
		r.root = newChannel(&hclog.LoggerOptions{
			Name:  RootChannelName,
			Level: WARN.convertedLevel(),
		}, r.timeFn)
	})

	return r.root
}

// newSink builds a sink from opts sharing formatter. For file sinks it also
// returns the path of the file reference it acquired.
func (r *Registry) newSink(opts SinkOptions, formatter *Formatter) (*Sink, string, error) {
	switch opts.Type {
	case FileSink:
		if opts.Path == "" {
			return nil, "", fmt.Errorf("%w: missing path for %s sink", ErrInvalidSink, opts.Type)
		}

		writer, absPath, err := r.openFile(opts.Path)
		if err != nil {
			return nil, "", err
		}
		return NewSink(string(FileSink)+":"+opts.Path, writer, opts.Level, formatter), absPath, nil
	case ConsoleSink:
		stream := opts.Stream
		if stream == "" {
			stream = StderrStream
		}

		writer, found := r.streams[stream]
		if !found {
			return nil, "", fmt.Errorf("%w: unknown console stream %q", ErrInvalidSink, opts.Stream)
		}
		return NewSink(string(ConsoleSink)+":"+stream, writer, opts.Level, formatter), "", nil
	default:
		return nil, "", fmt.Errorf("%w: unknown type %q", ErrInvalidSink, opts.Type)
	}
}

// Close closes every file opened by the registry sinks.
func (r *Registry) Close() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	errs := make([]error, 0)
	for path, file := range r.files {
		file.writer.lock.Lock()
		if err := file.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
		}
		file.writer.lock.Unlock()
		delete(r.files, path)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrCloseRegistry, errors.Join(errs...))
	}
	return nil
}

func (r *Registry) setupChannel(name string, opts ChannelOptions) (*Channel, error) {
	formatter := NewFormatter(r.timeFn)
	sinks := make([]*Sink, 0, len(opts.Sinks))
	acquired := make([]string, 0, len(opts.Sinks))
	for _, sinkOpts := range opts.Sinks {
		sink, absPath, err := r.newSink(sinkOpts, formatter)
		if err != nil {
			r.releaseFiles(acquired)
			return nil, err
		}
		if absPath != "" {
			acquired = append(acquired, absPath)
		}
		sinks = append(sinks, sink)
	}

	var channel *Channel
	if name == RootChannelName {
		channel = r.Root()
		channel.SetLevel(opts.Level)
	} else {
		channel = newChannel(&hclog.LoggerOptions{
			Name:  name,
			Level: opts.Level.convertedLevel(),
		}, r.timeFn)
		if opts.Propagate {
			channel.state.parent = r.Root()
		}
	}

	for _, sink := range sinks {
		channel.AddSink(sink)
	}

	return channel, nil
}

// openFile returns the shared writer for path, opening the file in append mode
// the first time it is requested. Every call takes a reference on the file.
func (r *Registry) openFile(path string) (*syncWriter, string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w %q: %w", ErrOpenLogFile, path, err)
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if file, found := r.files[absPath]; found {
		file.refs++
		return file.writer, absPath, nil
	}

	file, err := os.OpenFile(absPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFilePermissions)
	if err != nil {
		return nil, "", fmt.Errorf("%w %q: %w", ErrOpenLogFile, path, err)
	}

	writer := newSyncWriter(file)
	r.files[absPath] = &logFile{file: file, writer: writer, refs: 1}
	return writer, absPath, nil
}

// releaseFiles drops the references taken by a failed channel setup, closing
// the files no other channel is using.
func (r *Registry) releaseFiles(paths []string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	for _, path := range paths {
		file, found := r.files[path]
		if !found {
			continue
		}

		file.refs--
		if file.refs > 0 {
			continue
		}

		// nothing was written through the file, a close error has no consequence
		_ = file.file.Close()
		delete(r.files, path)
	}
}
