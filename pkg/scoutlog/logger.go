// Package scoutlog is Scout's structured, leveled logger, backed by
// go.uber.org/zap rather than a hand-rolled io.Writer formatter.
package scoutlog

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents the logging level, ordered DEBUG < INFO < WARN <
// ERROR < FATAL.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a --log-level flag value, case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return DEBUG, nil
	case "info":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	case "fatal":
		return FATAL, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case INFO:
		return zapcore.InfoLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	case FATAL:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// Config holds logger configuration. UseJSON selects zap's production
// (JSON) encoder over its development (console) encoder.
type Config struct {
	Level   Level
	Prefix  string
	UseJSON bool
}

// DefaultConfig returns the harness's default logger configuration:
// INFO level, console-formatted, prefixed "scout".
func DefaultConfig() *Config {
	return &Config{Level: INFO, Prefix: "scout", UseJSON: false}
}

// Logger is Scout's leveled logger. Each method takes a printf-style
// format string and is backed by a zap.SugaredLogger.
type Logger struct {
	sugar *zap.SugaredLogger
	level Level
}

// NewLogger builds a Logger from config (nil uses DefaultConfig()).
func NewLogger(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}

	var encoderCfg zapcore.EncoderConfig
	var encoder zapcore.Encoder
	if config.UseJSON {
		encoderCfg = zap.NewProductionEncoderConfig()
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), config.Level.zapLevel())
	zl := zap.New(core).Named(config.Prefix)

	return &Logger{sugar: zl.Sugar(), level: config.Level}
}

func (l *Logger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// Fatal logs at FATAL and terminates the process.
func (l *Logger) Fatal(format string, args ...interface{}) { l.sugar.Fatalf(format, args...) }

// With returns a Logger with the given run-scoped key/value pairs
// attached to every subsequent entry (e.g. a run_id correlation field).
func (l *Logger) With(keyValues ...interface{}) *Logger {
	return &Logger{sugar: l.sugar.With(keyValues...), level: l.level}
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error { return l.sugar.Sync() }
