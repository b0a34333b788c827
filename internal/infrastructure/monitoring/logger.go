package monitoring

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/turtacn/riskscore360/internal/config"
	"github.com/turtacn/riskscore360/pkg/constants"
	"github.com/turtacn/riskscore360/pkg/logger"
)

// ZapLogger implements logger.Logger on top of zap. Its level can be
// changed at runtime, e.g. on configuration reload.
type ZapLogger struct {
	*zap.Logger
	level zap.AtomicLevel
}

// NewZapLogger builds a logger writing JSON (or console) entries to cfg.OutputPath.
func NewZapLogger(cfg *config.LogConfig) (*ZapLogger, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	atomic := zap.NewAtomicLevelAt(level)

	output := cfg.OutputPath
	if output == "" {
		output = "stdout"
	}
	sink, _, err := zap.Open(output)
	if err != nil {
		return nil, err
	}

	encoder := zapcore.NewJSONEncoder(encoderConfig)
	if cfg.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, sink, atomic)
	return &ZapLogger{
		Logger: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel)),
		level:  atomic,
	}, nil
}

// NewZapLoggerFromCore wraps an existing core, mainly for tests using zaptest/observer.
func NewZapLoggerFromCore(core zapcore.Core) *ZapLogger {
	return &ZapLogger{Logger: zap.New(core), level: zap.NewAtomicLevelAt(zapcore.DebugLevel)}
}

// SetLevel changes the minimum enabled level. Unknown levels are ignored.
func (l *ZapLogger) SetLevel(level string) {
	if parsed, err := zapcore.ParseLevel(level); err == nil {
		l.level.SetLevel(parsed)
	}
}

func (l *ZapLogger) Debug(ctx context.Context, msg string, fields ...logger.Fields) {
	l.Logger.Debug(msg, convertFields(ctx, fields...)...)
}

func (l *ZapLogger) Info(ctx context.Context, msg string, fields ...logger.Fields) {
	l.Logger.Info(msg, convertFields(ctx, fields...)...)
}

func (l *ZapLogger) Warn(ctx context.Context, msg string, fields ...logger.Fields) {
	l.Logger.Warn(msg, convertFields(ctx, fields...)...)
}

func (l *ZapLogger) Error(ctx context.Context, msg string, err error, fields ...logger.Fields) {
	l.Logger.Error(msg, append(convertFields(ctx, fields...), zap.Error(err))...)
}

func (l *ZapLogger) Fatal(ctx context.Context, msg string, err error, fields ...logger.Fields) {
	l.Logger.Fatal(msg, append(convertFields(ctx, fields...), zap.Error(err))...)
}

func (l *ZapLogger) WithFields(fields logger.Fields) logger.Logger {
	return &ZapLogger{Logger: l.Logger.With(convertFields(context.Background(), fields)...), level: l.level}
}

func (l *ZapLogger) WithComponent(component string) logger.Logger {
	return &ZapLogger{Logger: l.Logger.With(zap.String("component", component)), level: l.level}
}

// convertFields lifts request and trace IDs from ctx and flattens fields.
func convertFields(ctx context.Context, fields ...logger.Fields) []zap.Field {
	zapFields := make([]zap.Field, 0, 4)
	if ctx != nil {
		if requestID, ok := ctx.Value(constants.ContextKeyRequestID).(string); ok && requestID != "" {
			zapFields = append(zapFields, zap.String("request_id", requestID))
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			zapFields = append(zapFields, zap.String("trace_id", sc.TraceID().String()))
		} else if traceID, ok := ctx.Value(constants.ContextKeyTraceID).(string); ok && traceID != "" {
			zapFields = append(zapFields, zap.String("trace_id", traceID))
		}
	}

	for _, f := range fields {
		for k, v := range f {
			zapFields = append(zapFields, zap.Any(k, v))
		}
	}
	return zapFields
}
