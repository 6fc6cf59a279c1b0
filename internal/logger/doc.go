// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package logger wraps the underlying logging stack behind a consistent interface.
// It owns the process-wide registry of named channels, each one fanning its records
// out to a set of sinks that filter by their own severity threshold and share a
// single line formatter. Loggers are made available through context helpers.
package logger
