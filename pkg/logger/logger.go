package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Console formats
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Log stays a no-op logger until Init is called, so library code can log from tests
var Log = zap.NewNop()

// Options selects level, console format and optional JSON log file
type Options struct {
	Level  string
	Format string // console (default) or json
	File   string // empty disables file output
}

// Init replaces the global logger. Console output goes to stderr, stdout carries digest JSON.
func Init(opts Options) error {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	var consoleEncoder zapcore.Encoder
	switch opts.Format {
	case "", FormatConsole:
		consoleEncoder = zapcore.NewConsoleEncoder(encoderConfig)
	case FormatJSON:
		consoleEncoder = zapcore.NewJSONEncoder(encoderConfig)
	default:
		return fmt.Errorf("unknown log format %q", opts.Format)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), level),
	}

	if opts.File != "" {
		file, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(file), level))
	}

	Log = zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)

	return nil
}

// ParseLevel accepts debug, info, warn and error; empty means info
func ParseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	switch l, err := zapcore.ParseLevel(level); {
	case err != nil:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	case l > zapcore.ErrorLevel:
		return zapcore.InfoLevel, fmt.Errorf("log level %q is not allowed", level)
	default:
		return l, nil
	}
}

// Sync flushes any buffered log entries
func Sync() {
	_ = Log.Sync()
}

// Info logs info message
func Info(msg string, fields ...zap.Field) {
	Log.Info(msg, fields...)
}

// Debug logs debug message
func Debug(msg string, fields ...zap.Field) {
	Log.Debug(msg, fields...)
}

// Warn logs warning message
func Warn(msg string, fields ...zap.Field) {
	Log.Warn(msg, fields...)
}

// Error logs error message
func Error(msg string, fields ...zap.Field) {
	Log.Error(msg, fields...)
}

// Fatal logs fatal message and exits
func Fatal(msg string, fields ...zap.Field) {
	Log.Fatal(msg, fields...)
}
