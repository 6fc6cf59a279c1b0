// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

const (
	emitCmdUsage = "emit MESSAGE..."
	emitCmdShort = "write a message through a logging channel"
	emitCmdLong  = `Write a message through a logging channel.
	The message is written at the selected level and reaches every sink of the
	channel whose threshold accepts that level. Without any configuration the
	channel is named "app": ERROR and above are appended to sample.log, INFO and
	above are written to the standard error.

	Additional channels can be defined in a YAML file, one channel per document.`

	emitCmdExample = `# Write an error on the default channel, it reaches the console and sample.log
	chanlog emit --level ERROR failed

	# Write through a channel defined in a file
	chanlog emit -f channels.yaml -c audit --level WARN user removed`

	serveCmdUsage = "serve"
	serveCmdShort = "start the log relay server"
	serveCmdLong  = `Start the log relay server.
	The server accepts log records as JSON documents on POST /logs and writes them
	through the named channel, or the default one when no channel is set. The
	listening address is configured with the HTTP_HOST and HTTP_PORT environment
	variables.`

	serveCmdExample = `# Start the server on port 8080
	HTTP_PORT=8080 chanlog serve

	# Start the server with additional channels
	chanlog serve --channels-file channels.yaml`
)

// EmitCmd returns the Cobra command that writes a message through a channel.
func EmitCmd() *cobra.Command {
	flags := &emitFlags{}
	cmd := &cobra.Command{
		Use:     emitCmdUsage,
		Short:   heredoc.Doc(emitCmdShort),
		Long:    heredoc.Doc(emitCmdLong),
		Example: heredoc.Doc(emitCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.toOptions(args)
			if err != nil {
				return handleError(cmd, err)
			}

			if err := opts.validate(); err != nil {
				return handleError(cmd, err)
			}

			if err := opts.execute(cmd.Context()); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	return cmd
}

// ServeCmd returns the Cobra command that starts the log relay server.
func ServeCmd() *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:     serveCmdUsage,
		Short:   heredoc.Doc(serveCmdShort),
		Long:    heredoc.Doc(serveCmdLong),
		Example: heredoc.Doc(serveCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		Args: func(cmd *cobra.Command, args []string) error {
			err := cobra.NoArgs(cmd, args)
			if err != nil {
				cmd.PrintErrln(err)
				_ = cmd.Usage()
			}

			return err
		},
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := flags.toOptions()
			if err := opts.execute(cmd.Context()); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	return cmd
}
