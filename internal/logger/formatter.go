// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// TimestampLayout is the layout used for the timestamp column of every line.
	TimestampLayout = "2006-01-02 15:04:05"

	fieldSeparator = " | "
	missingValue   = "EXTRA_VALUE_AT_END"
)

// Formatter renders log records as single text lines in the form
// "<timestamp> | <LEVEL> | <channel> | <message>". A single instance is meant
// to be shared by all the sinks of a channel.
type Formatter struct {
	timeFn func() time.Time
}

// NewFormatter returns a Formatter reading the record time from timeFn.
// A nil timeFn means time.Now.
func NewFormatter(timeFn func() time.Time) *Formatter {
	if timeFn == nil {
		timeFn = time.Now
	}

	return &Formatter{timeFn: timeFn}
}

// Now returns the current time read from the formatter clock.
func (f *Formatter) Now() time.Time {
	return f.timeFn()
}

// Format returns the newline terminated line for a record created at ts.
// Key/value pairs in args are appended after the message as " key=value".
func (f *Formatter) Format(ts time.Time, name string, level Level, msg string, args ...interface{}) []byte {
	buf := new(bytes.Buffer)
	buf.WriteString(ts.Format(TimestampLayout))
	buf.WriteString(fieldSeparator)
	buf.WriteString(level.String())
	buf.WriteString(fieldSeparator)
	buf.WriteString(name)
	buf.WriteString(fieldSeparator)
	buf.WriteString(msg)

	for idx := 0; idx < len(args); idx += 2 {
		key := fmt.Sprint(args[idx])
		value := missingValue
		if idx+1 < len(args) {
			value = formatValue(args[idx+1])
		} else {
			key, value = missingValue, formatValue(args[idx])
		}

		buf.WriteByte(' ')
		buf.WriteString(key)
		buf.WriteByte('=')
		buf.WriteString(value)
	}

	buf.WriteByte('\n')
	return buf.Bytes()
}

func formatValue(value interface{}) string {
	var str string
	switch typed := value.(type) {
	case nil:
		return "<nil>"
	case string:
		str = typed
	case error:
		str = typed.Error()
	case fmt.Stringer:
		str = typed.String()
	default:
		str = fmt.Sprintf("%v", typed)
	}

	if str == "" || strings.ContainsAny(str, " \t\r\n\"=") {
		return strconv.Quote(str)
	}
	return str
}
