package logger

import (
	"strings"
	"sync"
)

// Levels accepted in the log_level setting.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	console     *Logger
	consoleOnce sync.Once
)

// Get returns the process-wide console logger. Only the first call's level
// takes effect.
func Get(level string) *Logger {
	consoleOnce.Do(func() {
		console = newZapLogger(level)
	})
	return console
}

// ValidLevel reports whether level names one of the supported levels,
// ignoring case and surrounding space. An empty level means the default.
func ValidLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", DebugLevel, InfoLevel, WarnLevel, ErrorLevel:
		return true
	}
	return false
}
