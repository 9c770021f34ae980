package klog

import (
	"log"
	"strings"
)

// Level is a logging severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel parses a case-insensitive level name, defaulting to
// LevelInfo for anything unrecognized.
func ParseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// StdLogger is a leveled Logger backed by the standard library's log
// package, with each line tagged by severity.
type StdLogger struct {
	level Level
}

// NewStdLogger creates a StdLogger at the given level.
func NewStdLogger(level string) *StdLogger {
	return &StdLogger{level: ParseLevel(level)}
}

func (l *StdLogger) shouldLog(level Level) bool {
	return level >= l.level
}

func (l *StdLogger) Debugf(format string, v ...any) {
	if l.shouldLog(LevelDebug) {
		log.Printf("[DEBUG] "+format, v...)
	}
}

func (l *StdLogger) Infof(format string, v ...any) {
	if l.shouldLog(LevelInfo) {
		log.Printf("[INFO] "+format, v...)
	}
}

func (l *StdLogger) Warnf(format string, v ...any) {
	if l.shouldLog(LevelWarn) {
		log.Printf("[WARN] "+format, v...)
	}
}

func (l *StdLogger) Errorf(format string, v ...any) {
	if l.shouldLog(LevelError) {
		log.Printf("[ERROR] "+format, v...)
	}
}

func (l *StdLogger) Fatalf(format string, v ...any) {
	log.Fatalf("[FATAL] "+format, v...)
}
