package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options describes the logger of one hiremind process.
type Options struct {
	// Service is stamped on every entry so API and CLI logs can share a sink.
	Service string
	JSON    bool
	Debug   bool
}

// New builds the process logger. Stack traces are attached only in debug mode.
func New(opts Options) (*zap.Logger, error) {
	return opts.config().Build()
}

func (o Options) config() zap.Config {
	level := zapcore.InfoLevel
	if o.Debug {
		level = zapcore.DebugLevel
	}

	encoding := "console"
	if o.JSON {
		encoding = "json"
	}

	var initial map[string]interface{}
	if o.Service != "" {
		initial = map[string]interface{}{FieldService: o.Service}
	}

	return zap.Config{
		Encoding:          encoding,
		Level:             zap.NewAtomicLevelAt(level),
		DisableStacktrace: !o.Debug,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		InitialFields:     initial,
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:     "msg",
			LevelKey:       "level",
			TimeKey:        "time",
			CallerKey:      "caller",
			StacktraceKey:  "stacktrace",
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.RFC3339TimeEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		},
	}
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// WithFields attaches fields to l, falling back to a no-op logger when l is nil.
func WithFields(l *zap.Logger, fields ...zap.Field) *zap.Logger {
	l = OrNop(l)
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}
