// Package logger is the host-side zap logger, with optional rotation
// through lumberjack.
package logger

import (
	"fmt"
	"os"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	Logger *zap.Logger
)

type LogLevel int8

const (
	DebugLevel LogLevel = iota - 1
	InfoLevel
	WarnLevel
	ErrorLevel
)

// Options configure InitLogger. An empty File logs to the console only.
type Options struct {
	Level      LogLevel
	File       string
	Color      bool
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// ParseLevel maps "debug", "info", "warn" and "error" to a LogLevel
func ParseLevel(s string) (LogLevel, error) {
	switch s {
	case "debug":
		return DebugLevel, nil
	case "", "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	}
	return InfoLevel, fmt.Errorf("unknown log level %q", s)
}

func newEncoder(color bool) zapcore.Encoder {
	levelEncoder := zapcore.CapitalLevelEncoder
	if color {
		levelEncoder = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:       "message",
		LevelKey:         "level",
		TimeKey:          "time",
		CallerKey:        "caller",
		EncodeLevel:      levelEncoder,
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		ConsoleSeparator: " ",
	})
}

func newFileCore(encoder zapcore.Encoder, level zapcore.Level, opts Options) zapcore.Core {
	logFile := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		LocalTime:  true,
	}
	return zapcore.NewCore(encoder, zapcore.AddSync(logFile), level)
}

// InitLogger builds the global logger from opts
func InitLogger(opts Options) {
	level := zapcore.Level(opts.Level)
	cores := []zapcore.Core{
		zapcore.NewCore(newEncoder(opts.Color), zapcore.Lock(os.Stderr), level),
	}
	if opts.File != "" {
		// no color escapes in files
		cores = append(cores, newFileCore(newEncoder(false), level, opts))
	}
	Use(zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1)))
}

// Use installs an existing logger, e.g. an observer in tests
func Use(l *zap.Logger) {
	Logger = l
}

// Sync flushes buffered entries
func Sync() error {
	if Logger == nil {
		return nil
	}
	return Logger.Sync()
}

// DebugSink adapts the logger to core.SetDebugWriter
func DebugSink(msg string) {
	if Logger != nil {
		Logger.Sugar().Debug(msg)
	}
}

func Infof(format string, args ...interface{}) {
	if Logger != nil {
		Logger.Sugar().Infof(format, args...)
	}
}

func Debugf(format string, args ...interface{}) {
	if Logger != nil {
		Logger.Sugar().Debugf(format, args...)
	}
}

func Warnf(format string, args ...interface{}) {
	if Logger != nil {
		Logger.Sugar().Warnf(format, args...)
	}
}

func Errorf(format string, args ...interface{}) {
	if Logger != nil {
		Logger.Sugar().Errorf(format, args...)
	}
}
