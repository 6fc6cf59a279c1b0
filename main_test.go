// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/chanlog/internal/logger"
)

func TestRootCommand(t *testing.T) {
	Version = "test"
	BuildDate = "2024-06-01"

	dir := t.TempDir()
	t.Setenv("LOG_FILE_PATH", filepath.Join(dir, "sample.log"))

	registry := logger.NewRegistry(logger.WithConsole(io.Discard, io.Discard))
	t.Cleanup(func() {
		assert.NoError(t, registry.Close())
	})

	cmd := rootCmd()
	buffer := new(bytes.Buffer)
	cmd.SetOut(buffer)

	ctx := logger.WithRegistry(t.Context(), registry)
	cmd.SetArgs([]string{"--log-level", "WARN", "version"})
	err := cmd.ExecuteContext(ctx)
	require.NoError(t, err)

	lines := strings.Split(buffer.String(), "\n")
	assert.Len(t, lines, 2) // version output + empty line
	assert.Equal(t, versionString(Version, BuildDate, runtime.Version())+"\n", buffer.String())

	// version does not set up any channel
	_, found := registry.Channel("app")
	assert.False(t, found)
	_, err = os.Stat(filepath.Join(dir, "sample.log"))
	require.ErrorIs(t, err, os.ErrNotExist)

	buffer.Reset()
	BuildDate = ""
	cmd.SetArgs([]string{"--log-level", "WARN", "version"})
	err = cmd.ExecuteContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, versionString(Version, "", runtime.Version())+"\n", buffer.String())
}

func TestRootCommandEmit(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "sample.log")
	t.Setenv("LOG_FILE_PATH", filePath)

	stderr := new(bytes.Buffer)
	registry := logger.NewRegistry(logger.WithConsole(io.Discard, stderr))
	t.Cleanup(func() {
		assert.NoError(t, registry.Close())
	})
	ctx := logger.WithRegistry(t.Context(), registry)

	cmd := rootCmd()
	cmd.SetArgs([]string{"emit", "started"})
	require.NoError(t, cmd.ExecuteContext(ctx))
	assert.Contains(t, stderr.String(), " | INFO | app | started\n")

	data, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Empty(t, data)

	cmd = rootCmd()
	cmd.SetArgs([]string{"emit", "--level", "ERROR", "failed"})
	require.NoError(t, cmd.ExecuteContext(ctx))
	assert.Equal(t, 1, strings.Count(stderr.String(), " | ERROR | app | failed\n"))

	data, err = os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} \| ERROR \| app \| failed\n$`, string(data))

	channel, found := registry.Channel("app")
	require.True(t, found)
	assert.Len(t, channel.Sinks(), 2)

	// the root log level flag raises the channel threshold
	cmd = rootCmd()
	cmd.SetArgs([]string{"--log-level", "ERROR", "emit", "--level", "WARN", "silenced"})
	require.NoError(t, cmd.ExecuteContext(ctx))
	assert.NotContains(t, stderr.String(), "silenced")
}
