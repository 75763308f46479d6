// Package logging wires the server's structured logging through a single
// choke point so every component gets a named logger and the configured
// level applies uniformly.
package logging

import (
	golog "github.com/ipfs/go-log/v2"
)

// Logger returns a named structured logger for component. Components
// should call this once at construction time and hold onto the result,
// matching the one-logger-per-subsystem convention used throughout.
func Logger(component string) *golog.ZapEventLogger {
	return golog.Logger(component)
}

// SetLevel sets the level of every logger created through this package
// ("debug", "info", "warn", "error", "fatal"). Call once at startup from
// the parsed config.
func SetLevel(level string) error {
	return golog.SetLogLevel("*", level)
}
