// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package config

import (
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/chanlog/internal/logger"
)

func TestNewChannelConfigsFromPath(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		path                   string
		expectedChannelConfigs []*ChannelConfig
		expectedError          error
		expectedErrorMessage   string
	}{
		"valid yaml file with one channel": {
			path: filepath.Join("testdata", "one.yaml"),
			expectedChannelConfigs: []*ChannelConfig{
				{
					Name:  "app",
					Level: "DEBUG",
					Sinks: []SinkConfig{
						{Type: "file", Path: "sample.log", Level: "ERROR"},
						{Type: "console", Stream: "stderr", Level: "INFO"},
					},
				},
			},
		},
		"valid yaml file with multiple channels and empty documents": {
			path: filepath.Join("testdata", "multiple.yaml"),
			expectedChannelConfigs: []*ChannelConfig{
				{
					Name: "app",
					Sinks: []SinkConfig{
						{Type: "file", Path: "sample.log"},
						{Type: "console"},
					},
				},
				{
					Name:      "audit",
					Level:     "info",
					Propagate: true,
					Sinks: []SinkConfig{
						{Type: "console", Stream: "stdout", Level: "warn"},
					},
				},
			},
		},
		"missing file": {
			path:          filepath.Join("testdata", "missing.yaml"),
			expectedError: syscall.ENOENT,
		},
		"unknown field": {
			path:                 filepath.Join("testdata", "unknown-field.yaml"),
			expectedError:        ErrParsing,
			expectedErrorMessage: "field format not found",
		},
		"invalid sinks": {
			path:                 filepath.Join("testdata", "invalid-sink.yaml"),
			expectedError:        ErrInvalidChannel,
			expectedErrorMessage: "unknown value 'syslog' in field 'type'",
		},
		"duplicated channel": {
			path:                 filepath.Join("testdata", "duplicated.yaml"),
			expectedError:        ErrParsing,
			expectedErrorMessage: `channel "app" defined more than once`,
		},
	}

	for testName, test := range testCases {
		t.Run(testName, func(t *testing.T) {
			t.Parallel()

			configs, err := NewChannelConfigsFromPath(test.path)
			if test.expectedError != nil {
				require.ErrorIs(t, err, test.expectedError)
				if test.expectedErrorMessage != "" {
					assert.ErrorContains(t, err, test.expectedErrorMessage)
				}
				assert.Nil(t, configs)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expectedChannelConfigs, configs)
		})
	}
}

func TestChannelConfigOptions(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		config               ChannelConfig
		expectedOptions      logger.ChannelOptions
		expectedErrorMessage string
	}{
		"defaults applied to missing levels": {
			config: ChannelConfig{
				Name: "app",
				Sinks: []SinkConfig{
					{Type: "file", Path: "sample.log"},
					{Type: "CONSOLE"},
				},
			},
			expectedOptions: logger.DefaultChannelOptions(),
		},
		"explicit values": {
			config: ChannelConfig{
				Name:      "audit",
				Level:     "warn",
				Propagate: true,
				Sinks: []SinkConfig{
					{Type: "console", Stream: "STDOUT", Level: "trace"},
				},
			},
			expectedOptions: logger.ChannelOptions{
				Level:     logger.WARN,
				Propagate: true,
				Sinks: []logger.SinkOptions{
					{Type: logger.ConsoleSink, Stream: logger.StdoutStream, Level: logger.TRACE},
				},
			},
		},
		"missing name and sinks": {
			config:               ChannelConfig{},
			expectedErrorMessage: `invalid channel "": missing field 'name'; missing field 'sinks'`,
		},
		"invalid levels": {
			config: ChannelConfig{
				Name:  "app",
				Level: "loud",
				Sinks: []SinkConfig{{Type: "console", Level: "quiet"}},
			},
			expectedErrorMessage: `field 'level': unknown log level: "loud"; sinks[0]: field 'level': unknown log level: "quiet"`,
		},
		"sink without type": {
			config: ChannelConfig{
				Name:  "app",
				Sinks: []SinkConfig{{Path: "sample.log"}},
			},
			expectedErrorMessage: "sinks[0]: missing field 'type'",
		},
		"file sink without path": {
			config: ChannelConfig{
				Name:  "app",
				Sinks: []SinkConfig{{Type: "file"}},
			},
			expectedErrorMessage: "sinks[0]: missing field 'path' for file sink",
		},
	}

	for testName, test := range testCases {
		t.Run(testName, func(t *testing.T) {
			t.Parallel()

			opts, err := test.config.Options()
			if test.expectedErrorMessage != "" {
				require.ErrorIs(t, err, ErrInvalidChannel)
				assert.ErrorContains(t, err, test.expectedErrorMessage)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expectedOptions, opts)
		})
	}
}
