// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mia-platform/chanlog/internal/logger"
)

const (
	NameField   = "name"
	SinksField  = "sinks"
	TypeField   = "type"
	PathField   = "path"
	StreamField = "stream"
	LevelField  = "level"
)

var (
	// ErrParsing reports failures that occur while decoding channel files.
	ErrParsing = errors.New("error parsing")
	// ErrInvalidChannel reports a channel definition that cannot be turned into channel options.
	ErrInvalidChannel = errors.New("invalid channel")
)

// ChannelConfig holds the definition of a named channel and its sinks.
type ChannelConfig struct {
	Name      string       `json:"name" yaml:"name"`
	Level     string       `json:"level,omitempty" yaml:"level,omitempty"`
	Propagate bool         `json:"propagate,omitempty" yaml:"propagate,omitempty"`
	Sinks     []SinkConfig `json:"sinks" yaml:"sinks"`
}

// SinkConfig holds the definition of a single sink of a channel.
type SinkConfig struct {
	Type   string `json:"type" yaml:"type"`
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
	Stream string `json:"stream,omitempty" yaml:"stream,omitempty"`
	Level  string `json:"level,omitempty" yaml:"level,omitempty"`
}

// Options validates the configuration and converts it to the options used by
// the registry to set up the channel. Missing levels default to DEBUG for the
// channel, ERROR for file sinks and INFO for console sinks.
func (c *ChannelConfig) Options() (logger.ChannelOptions, error) {
	errorsList := make([]string, 0)
	if c.Name == "" {
		errorsList = append(errorsList, fmt.Sprintf("missing field '%s'", NameField))
	}

	channelLevel, err := parseLevel(c.Level, logger.DEBUG)
	if err != nil {
		errorsList = append(errorsList, fmt.Sprintf("field '%s': %s", LevelField, err))
	}

	if len(c.Sinks) == 0 {
		errorsList = append(errorsList, fmt.Sprintf("missing field '%s'", SinksField))
	}

	sinks := make([]logger.SinkOptions, 0, len(c.Sinks))
	for idx, sink := range c.Sinks {
		sinkOptions, sinkErrors := sink.options()
		for _, sinkError := range sinkErrors {
			errorsList = append(errorsList, fmt.Sprintf("%s[%d]: %s", SinksField, idx, sinkError))
		}
		sinks = append(sinks, sinkOptions)
	}

	if len(errorsList) > 0 {
		return logger.ChannelOptions{}, fmt.Errorf("%w %q: %s", ErrInvalidChannel, c.Name, strings.Join(errorsList, "; "))
	}

	return logger.ChannelOptions{
		Level:     channelLevel,
		Propagate: c.Propagate,
		Sinks:     sinks,
	}, nil
}

// options validates the sink fields returning the list of problems found.
func (s SinkConfig) options() (logger.SinkOptions, []string) {
	errorsList := []string{}
	opts := logger.SinkOptions{Type: logger.SinkType(strings.ToLower(s.Type))}

	defaultLevel := logger.INFO
	switch opts.Type {
	case logger.FileSink:
		defaultLevel = logger.ERROR
		if s.Path == "" {
			errorsList = append(errorsList, fmt.Sprintf("missing field '%s' for file sink", PathField))
		}
		opts.Path = s.Path
	case logger.ConsoleSink:
		opts.Stream = strings.ToLower(s.Stream)
		if opts.Stream == "" {
			opts.Stream = logger.StderrStream
		}
		if opts.Stream != logger.StdoutStream && opts.Stream != logger.StderrStream {
			errorsList = append(errorsList, fmt.Sprintf("unknown value '%s' in field '%s'", s.Stream, StreamField))
		}
	case "":
		errorsList = append(errorsList, fmt.Sprintf("missing field '%s'", TypeField))
	default:
		errorsList = append(errorsList, fmt.Sprintf("unknown value '%s' in field '%s'", s.Type, TypeField))
	}

	level, err := parseLevel(s.Level, defaultLevel)
	if err != nil {
		errorsList = append(errorsList, fmt.Sprintf("field '%s': %s", LevelField, err))
	}
	opts.Level = level

	return opts, errorsList
}

func parseLevel(value string, defaultLevel logger.Level) (logger.Level, error) {
	if value == "" {
		return defaultLevel, nil
	}

	return logger.ParseLevel(value)
}

// NewChannelConfigsFromPath parses the file at path and returns the channel
// configurations it contains, one for every YAML document. It reports failures
// encountered while reading or decoding the data.
func NewChannelConfigsFromPath(path string) ([]*ChannelConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	configs := make([]*ChannelConfig, 0)
	seen := make(map[string]struct{})
	for {
		config := new(ChannelConfig)
		err := decoder.Decode(&config)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return nil, fmt.Errorf("%w %q: %w", ErrParsing, path, err)
		}

		// Skip empty documents.
		if config == nil {
			continue
		}

		if _, err := config.Options(); err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrParsing, path, err)
		}

		if _, found := seen[config.Name]; found {
			return nil, fmt.Errorf("%w %q: channel %q defined more than once", ErrParsing, path, config.Name)
		}
		seen[config.Name] = struct{}{}

		configs = append(configs, config)
	}

	return configs, nil
}
