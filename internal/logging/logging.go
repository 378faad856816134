// Package logging provides the small leveled stderr logger dupecat uses for
// non-fatal diagnostics (skipped files, broken symlinks, failed links),
// dialed up or down via an environment variable.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Level is a logging verbosity level, ordered from least to most verbose.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// ParseLevel parses the DUPECAT_LOG_LEVEL values ("error", "warn", "info",
// "debug"), defaulting to LevelError for anything unrecognized or empty.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	default:
		return LevelError
	}
}

// Logger writes level-gated lines to an underlying *log.Logger.
type Logger struct {
	level Level
	out   *log.Logger
}

// New creates a Logger writing to w, gated at level.
func New(w io.Writer, level Level) *Logger {
	return &Logger{level: level, out: log.New(w, "", 0)}
}

// FromEnv builds a Logger from DUPECAT_LOG_LEVEL, writing to stderr. This is
// the constructor cmd/dupecat uses at start-up.
func FromEnv() *Logger {
	return New(os.Stderr, ParseLevel(os.Getenv("DUPECAT_LOG_LEVEL")))
}

func (l *Logger) log(level Level, tag, format string, args ...any) {
	if l == nil || level > l.level {
		return
	}
	l.out.Printf("%s: %s", tag, fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...any) { l.log(LevelError, "error", format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(LevelWarn, "warn", format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.log(LevelInfo, "info", format, args...) }
func (l *Logger) Debugf(format string, args ...any) { l.log(LevelDebug, "debug", format, args...) }
