package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// Logger wraps the standard logger with level filtering.
type Logger struct {
	*log.Logger
}

var std = &Logger{log.New(os.Stdout, "", log.LstdFlags)}

// Level is the minimum severity a message needs to be emitted.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

var levelNames = [...]string{
	DebugLevel: "DEBUG",
	InfoLevel:  "INFO",
	WarnLevel:  "WARN",
	ErrorLevel: "ERROR",
}

var currentLevel = InfoLevel

// Initialize sets the global level from a string such as "debug" or "warn".
// Unknown or empty input falls back to info. Debug also enables file:line.
func Initialize(level string) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		currentLevel = DebugLevel
		std.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
		return
	case "warn", "warning":
		currentLevel = WarnLevel
	case "error":
		currentLevel = ErrorLevel
	default:
		currentLevel = InfoLevel
	}
	std.SetFlags(log.Ldate | log.Ltime)
}

func (l *Logger) log(level Level, format string, v ...interface{}) {
	if level < currentLevel {
		return
	}
	l.SetPrefix(fmt.Sprintf("[%s] ", levelNames[level]))
	l.Output(3, fmt.Sprintf(format, v...))
}

// Package-level helpers
func Debug(format string, v ...interface{}) { std.log(DebugLevel, format, v...) }
func Info(format string, v ...interface{})  { std.log(InfoLevel, format, v...) }
func Warn(format string, v ...interface{})  { std.log(WarnLevel, format, v...) }
func Error(format string, v ...interface{}) { std.log(ErrorLevel, format, v...) }

// Fatal logs at error level and exits with status 1.
func Fatal(format string, v ...interface{}) {
	std.log(ErrorLevel, format, v...)
	os.Exit(1)
}
