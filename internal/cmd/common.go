// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mia-platform/chanlog/internal/config"
	"github.com/mia-platform/chanlog/internal/logger"
)

var (
	errNoMessage      = errors.New("no message provided")
	errInvalidLevel   = errors.New("invalid level provided")
	errUnknownChannel = errors.New("unknown channel")

	// serverGetter returns the log relay server, it can be overridden for testing purposes.
	serverGetter = newServer
)

// handleError will do custom print error handling based on the type of error received.
// it will return nil if the command must return 0 exit code, otherwise it will return
// the original error.
func handleError(cmd *cobra.Command, err error) error {
	switch {
	case errors.Is(err, errNoMessage):
		_ = cmd.Usage() // do not check error as we cannot do much about it
		return nil
	case errors.Is(err, errInvalidLevel):
		cmd.PrintErrln(err)
		_ = cmd.Usage() // do not check error as we cannot do much about it
		return err
	default:
		cmd.PrintErrln(err)
		return err
	}
}

// SetupDefaultChannel initializes in the registry found in ctx the channel
// described by the environment, and returns it.
func SetupDefaultChannel(ctx context.Context) (*logger.Channel, error) {
	channelConfig, err := config.LoadChannelConfig()
	if err != nil {
		return nil, err
	}

	return initializeChannel(logger.RegistryFromContext(ctx), channelConfig)
}

// loadChannels initializes in registry every channel defined in the file at path.
func loadChannels(registry *logger.Registry, path string) error {
	if path == "" {
		return nil
	}

	channelConfigs, err := config.NewChannelConfigsFromPath(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("channels file %q: %w", path, err)
	}

	for _, channelConfig := range channelConfigs {
		if _, err := initializeChannel(registry, channelConfig); err != nil {
			return err
		}
	}

	return nil
}

func initializeChannel(registry *logger.Registry, channelConfig *config.ChannelConfig) (*logger.Channel, error) {
	opts, err := channelConfig.Options()
	if err != nil {
		return nil, err
	}

	return registry.InitializeWith(channelConfig.Name, opts)
}

// channelFromContext returns the channel registered as name, or the logger
// stored in ctx when name is empty.
func channelFromContext(ctx context.Context, name string) (logger.Logger, error) {
	if name == "" {
		return logger.FromContext(ctx), nil
	}

	channel, found := logger.RegistryFromContext(ctx).Channel(name)
	if !found {
		return nil, fmt.Errorf("%w: %s", errUnknownChannel, name)
	}

	return channel, nil
}

// channelName returns the name of log when it is a registry channel.
func channelName(log logger.Logger) string {
	if named, ok := log.(interface{ Name() string }); ok {
		return named.Name()
	}

	return ""
}
