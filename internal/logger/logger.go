// Package logger wraps zap into the structured Logger interface used
// throughout the pool, worker, and collector packages, adapted from
// the platform-wide logging helper used across the rest of the stack.
package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kcenon/threadmon/internal/config"
	"github.com/kcenon/threadmon/internal/svccontext"
)

// ZapLogger implements svccontext.Logger on top of a zap.SugaredLogger,
// carrying a set of structured fields that WithFields layers onto new
// instances without mutating the parent.
type ZapLogger struct {
	logger *zap.SugaredLogger
	fields map[string]interface{}
}

// New builds a ZapLogger from cfg. Format "json" uses zap's production
// encoder; anything else uses the development (console, colorized)
// encoder.
func New(cfg config.LoggerConfig) *ZapLogger {
	var zapConfig zap.Config
	if cfg.Format == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	switch cfg.Level {
	case "debug":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	if cfg.OutputPath == "" || cfg.OutputPath == "stdout" {
		zapConfig.OutputPaths = []string{"stdout"}
	} else {
		zapConfig.OutputPaths = []string{cfg.OutputPath}
	}

	built, err := zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}

	return &ZapLogger{logger: built.Sugar(), fields: make(map[string]interface{})}
}

func (l *ZapLogger) flatten() []interface{} {
	out := make([]interface{}, 0, len(l.fields)*2)
	for k, v := range l.fields {
		out = append(out, k, v)
	}
	return out
}

// Log implements svccontext.Logger, routing by level to the
// corresponding zap sugared method.
func (l *ZapLogger) Log(level svccontext.LogLevel, message string) {
	sugared := l.logger.With(l.flatten()...)
	switch level {
	case svccontext.LevelCritical, svccontext.LevelError:
		sugared.Error(message)
	case svccontext.LevelWarning:
		sugared.Warn(message)
	case svccontext.LevelDebug, svccontext.LevelTrace:
		sugared.Debug(message)
	default:
		sugared.Info(message)
	}
}

// LogWithLocation attaches source location fields before delegating to Log.
func (l *ZapLogger) LogWithLocation(level svccontext.LogLevel, message, file string, line int, function string) {
	l.WithFields(map[string]interface{}{
		"file":     file,
		"line":     line,
		"function": function,
	}).Log(level, message)
}

// IsEnabled always reports true; zap's own level gate decides whether
// a given call is actually written.
func (l *ZapLogger) IsEnabled(level svccontext.LogLevel) bool { return true }

// Flush syncs the underlying zap logger.
func (l *ZapLogger) Flush() { _ = l.logger.Sync() }

// WithFields returns a new ZapLogger carrying fields merged atop the
// receiver's existing fields.
func (l *ZapLogger) WithFields(fields map[string]interface{}) *ZapLogger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &ZapLogger{logger: l.logger, fields: merged}
}

// WithContext extracts common correlation values from ctx into fields.
func (l *ZapLogger) WithContext(ctx context.Context) *ZapLogger {
	fields := make(map[string]interface{})
	for _, key := range []string{"requestID", "correlationID", "traceID"} {
		if v := ctx.Value(key); v != nil {
			fields[key] = v
		}
	}
	return l.WithFields(fields)
}

var _ svccontext.Logger = (*ZapLogger)(nil)
