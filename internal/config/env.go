// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/mia-platform/chanlog/internal/logger"
)

var (
	ErrEnvVariablesNotValid = errors.New("environment variables not valid")
)

// EnvConfig holds the environment configuration of the default channel.
type EnvConfig struct {
	Channel       string `env:"LOG_CHANNEL" envDefault:"app"`
	FilePath      string `env:"LOG_FILE_PATH" envDefault:"sample.log"`
	FileLevel     string `env:"LOG_FILE_LEVEL" envDefault:"ERROR"`
	ConsoleLevel  string `env:"LOG_CONSOLE_LEVEL" envDefault:"INFO"`
	ConsoleStream string `env:"LOG_CONSOLE_STREAM" envDefault:"stderr"`
	Propagate     bool   `env:"LOG_PROPAGATE" envDefault:"false"`
}

// LoadChannelConfig reads the default channel definition from the environment.
// Without any variable set the result describes a channel named "app" that
// appends ERROR and above to sample.log and writes INFO and above to stderr.
func LoadChannelConfig() (*ChannelConfig, error) {
	var envVars EnvConfig
	if err := env.Parse(&envVars); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEnvVariablesNotValid, err.Error())
	}

	config := envVars.toChannelConfig()
	if _, err := config.Options(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEnvVariablesNotValid, err)
	}

	return config, nil
}

func (e EnvConfig) toChannelConfig() *ChannelConfig {
	return &ChannelConfig{
		Name:      e.Channel,
		Level:     logger.DEBUG.String(),
		Propagate: e.Propagate,
		Sinks: []SinkConfig{
			{Type: string(logger.FileSink), Path: e.FilePath, Level: e.FileLevel},
			{Type: string(logger.ConsoleSink), Stream: e.ConsoleStream, Level: e.ConsoleLevel},
		},
	}
}
