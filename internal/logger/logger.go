// Package logger carries a zap SugaredLogger through context.Context so every
// pipeline stage logs through the logger configured by the CLI.
package logger

import (
	"context"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type loggerKey struct{}

// WithLogger stores log in ctx.
func WithLogger(ctx context.Context, log *zap.SugaredLogger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey{}, log)
}

// GetLogger returns the logger stored in ctx, or nil.
func GetLogger(ctx context.Context) *zap.SugaredLogger {
	if ctx == nil {
		return nil
	}
	log, _ := ctx.Value(loggerKey{}).(*zap.SugaredLogger)
	return log
}

// FromContext is like GetLogger but never returns nil: a no-op logger is
// returned when ctx carries none, so library code can log unconditionally.
func FromContext(ctx context.Context) *zap.SugaredLogger {
	if log := GetLogger(ctx); log != nil {
		return log
	}
	return zap.NewNop().Sugar()
}

// New builds a console logger writing to w at the given level.
func New(w io.Writer, level zapcore.LevelEnabler, opts ...zap.Option) *zap.SugaredLogger {
	encoderCfg := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "ts",
		NameKey:        "logger",
		EncodeLevel:    SymbolLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("15:04:05"),
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(w), level)
	return zap.New(core, opts...).Sugar()
}

// LevelFlag adapts a textual --log-level value to zapcore.LevelEnabler. The
// flag is read on every call, so the level can be set after the logger is
// built.
type LevelFlag struct {
	Level string
}

// Enabled implements zapcore.LevelEnabler.
func (l *LevelFlag) Enabled(level zapcore.Level) bool {
	return ParseLevel(l.Level).Enabled(level)
}

// ParseLevel maps a level name to a zapcore level; unknown names mean info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// SymbolLevelEncoder prints a one-character marker instead of the level name.
func SymbolLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch l {
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.ErrorLevel, zapcore.FatalLevel:
		enc.AppendString("✗")
	case zapcore.WarnLevel:
		enc.AppendString("⚠")
	case zapcore.DebugLevel:
		enc.AppendString("·")
	default:
		enc.AppendString("ℹ")
	}
}
