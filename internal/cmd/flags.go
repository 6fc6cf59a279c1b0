// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mia-platform/chanlog/internal/logger"
)

const (
	channelsFileFlagName  = "channels-file"
	channelsFileFlagShort = "f"
	channelsFileFlagUsage = "Path to a YAML file containing additional channel definitions"

	channelFlagName  = "channel"
	channelFlagShort = "c"
	channelFlagUsage = "Name of the channel to use instead of the default one"

	levelFlagName     = "level"
	levelFlagShort    = "l"
	levelFlagUsage    = "Level of the message (possible values: TRACE, DEBUG, INFO, WARN, ERROR)"
	defaultLevelValue = "INFO"
)

// channelFlags holds the flags selecting the channels shared by all the commands.
type channelFlags struct {
	channelsFile string
	channel      string
}

// addFlags registers the CLI flags on cmd.
func (f *channelFlags) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.channelsFile, channelsFileFlagName, channelsFileFlagShort, "", channelsFileFlagUsage)
	cmd.Flags().StringVarP(&f.channel, channelFlagName, channelFlagShort, "", channelFlagUsage)
}

// emitFlags holds the flags for the "emit" command.
type emitFlags struct {
	channelFlags
	level string
}

// addFlags registers the CLI flags on cmd.
func (f *emitFlags) addFlags(cmd *cobra.Command) {
	f.channelFlags.addFlags(cmd)
	cmd.Flags().StringVarP(&f.level, levelFlagName, levelFlagShort, defaultLevelValue, levelFlagUsage)
}

// toOptions converts the emit flags to emitOptions enriching it with the passed arguments.
func (f *emitFlags) toOptions(args []string) (*emitOptions, error) {
	level, err := logger.ParseLevel(f.level)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errInvalidLevel, f.level)
	}

	return &emitOptions{
		message:      strings.Join(args, " "),
		level:        level,
		channel:      f.channel,
		channelsFile: f.channelsFile,
	}, nil
}

// serveFlags holds the flags for the "serve" command.
type serveFlags struct {
	channelFlags
}

// toOptions converts the serve flags to serveOptions.
func (f *serveFlags) toOptions() *serveOptions {
	return &serveOptions{
		channel:      f.channel,
		channelsFile: f.channelsFile,
		serverGetter: serverGetter,
	}
}
