// Package slogx provides slog.Attr constructors shared across the codebase.
package slogx

import (
	"fmt"
	"log/slog"
)

// KeyLoggerName is the attribute key identifying which component logged a
// record.
const KeyLoggerName = "logger"

// Error returns an attribute with key "error" and the error's message.
func Error(err error) slog.Attr {
	return slog.String("error", err.Error())
}

// ByteString returns an attribute holding value as a string.
func ByteString(key string, value []byte) slog.Attr {
	return slog.String(key, string(value))
}

// Stringer returns an attribute holding value.String().
func Stringer(key string, value fmt.Stringer) slog.Attr {
	return slog.String(key, value.String())
}

// LoggerName returns the component-name attribute under KeyLoggerName.
func LoggerName(name string) slog.Attr {
	return slog.String(KeyLoggerName, name)
}

// Model returns an attribute with key "model" for the model identifier a log
// record concerns.
func Model(name string) slog.Attr {
	return slog.String("model", name)
}
