// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
)

var (
	// ErrUnknownLevel is returned by ParseLevel for unrecognized level names.
	ErrUnknownLevel = errors.New("unknown log level")
)

//go:generate ${TOOLS_BIN}/stringer -type=Level
type Level int

const (
	ERROR Level = iota
	WARN
	INFO
	DEBUG
	TRACE
)

// ParseLevel returns the Level matching the case insensitive name.
// WARNING is read as WARN, CRITICAL and FATAL as ERROR.
func ParseLevel(level string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return TRACE, nil
	case "DEBUG":
		return DEBUG, nil
	case "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR", "CRITICAL", "FATAL":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
	}
}

// LevelFromString is like ParseLevel but falls back to INFO for unknown names.
func LevelFromString(level string) Level {
	parsed, _ := ParseLevel(level)
	return parsed
}

func (l Level) convertedLevel() hclog.Level {
	switch l {
	case TRACE:
		return hclog.Trace
	case DEBUG:
		return hclog.Debug
	case INFO:
		return hclog.Info
	case WARN:
		return hclog.Warn
	case ERROR:
		return hclog.Error
	default:
		return hclog.Info
	}
}

// levelFromHCLog maps a record level received from hclog back to a Level.
func levelFromHCLog(level hclog.Level) Level {
	switch level {
	case hclog.Trace:
		return TRACE
	case hclog.Debug:
		return DEBUG
	case hclog.Warn:
		return WARN
	case hclog.Error:
		return ERROR
	default:
		return INFO
	}
}

// enabled reports whether a record at level passes a threshold set at l.
func (l Level) enabled(level hclog.Level) bool {
	return level >= l.convertedLevel()
}
