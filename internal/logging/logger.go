// Package logging provides the leveled logger shared by every deskfs package.
package logging

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents different logging levels
type LogLevel int

const (
	// LevelError only logs errors
	LevelError LogLevel = iota
	// LevelWarn logs warnings and errors
	LevelWarn
	// LevelInfo logs general information, warnings and errors
	LevelInfo
	// LevelDebug logs detailed debug information and all above
	LevelDebug
	// LevelTrace logs very detailed trace information and all above
	LevelTrace
)

var levelNames = map[LogLevel]string{
	LevelError: "ERROR",
	LevelWarn:  "WARN",
	LevelInfo:  "INFO",
	LevelDebug: "DEBUG",
	LevelTrace: "TRACE",
}

// String returns the upper-case level name.
func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "INFO"
}

// ParseLevel maps a level name (case-insensitive) to a LogLevel.
// Unknown names fall back to LevelInfo.
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LevelError
	case "WARN", "WARNING":
		return LevelWarn
	case "DEBUG":
		return LevelDebug
	case "TRACE":
		return LevelTrace
	default:
		return LevelInfo
	}
}

// levelState is shared between a logger and every logger derived from it
// through WithPrefix, so SetLevel on the root reaches all of them.
type levelState struct {
	mu    sync.RWMutex
	level LogLevel
	zap   zap.AtomicLevel
}

func (s *levelState) set(level LogLevel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = level
	s.zap.SetLevel(toZapLevel(level))
}

func (s *levelState) get() LogLevel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.level
}

func toZapLevel(level LogLevel) zapcore.Level {
	switch level {
	case LevelError:
		return zapcore.ErrorLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelInfo:
		return zapcore.InfoLevel
	default:
		// Trace is emitted through zap's debug level.
		return zapcore.DebugLevel
	}
}

// Logger provides structured logging capabilities
type Logger struct {
	prefix string
	state  *levelState
	sugar  *zap.SugaredLogger
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// GetLogger returns the default logger instance
func GetLogger() *Logger {
	once.Do(func() {
		defaultLogger = NewLogger("deskfs")

		if level := os.Getenv("LOG_LEVEL"); level != "" {
			defaultLogger.SetLevel(ParseLevel(level))
		}
	})
	return defaultLogger
}

// NewLogger creates a new logger with the given prefix writing to stderr.
// Terminal output goes to stdout, so logs must never share it.
func NewLogger(prefix string) *Logger {
	return NewLoggerTo(prefix, zapcore.Lock(os.Stderr))
}

// NewLoggerTo creates a logger writing console-encoded lines to ws.
func NewLoggerTo(prefix string, ws zapcore.WriteSyncer) *Logger {
	state := &levelState{
		level: LevelWarn,
		zap:   zap.NewAtomicLevelAt(zapcore.WarnLevel),
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), ws, state.zap)
	base := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2)).Named(prefix)

	return &Logger{
		prefix: prefix,
		state:  state,
		sugar:  base.Sugar(),
	}
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level LogLevel) {
	l.state.set(level)
}

// Level returns the current logging level.
func (l *Logger) Level() LogLevel {
	return l.state.get()
}

// shouldLog determines if a message at the given level should be logged
func (l *Logger) shouldLog(level LogLevel) bool {
	return level <= l.state.get()
}

// log performs the actual logging
func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if !l.shouldLog(level) {
		return
	}

	switch level {
	case LevelError:
		l.sugar.Errorf(format, args...)
	case LevelWarn:
		l.sugar.Warnf(format, args...)
	case LevelInfo:
		l.sugar.Infof(format, args...)
	case LevelDebug:
		l.sugar.Debugf(format, args...)
	case LevelTrace:
		l.sugar.Debugf("[TRACE] "+format, args...)
	}
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

// Trace logs a trace message
func (l *Logger) Trace(format string, args ...interface{}) {
	l.log(LevelTrace, format, args...)
}

// WithPrefix creates a new logger with an additional prefix. The derived
// logger shares the level of its parent.
func (l *Logger) WithPrefix(prefix string) *Logger {
	return &Logger{
		prefix: l.prefix + "." + prefix,
		state:  l.state,
		sugar:  l.sugar.Named(prefix),
	}
}

// Sync flushes buffered log entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}
