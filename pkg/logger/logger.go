// Package logger provides structured logging capabilities for the RiskScore-360 service.
// The Logger interface is implemented by the zap adapter in internal/infrastructure/monitoring.
package logger

import (
	"context"
	"time"
)

// ================================================================================
// Logger Interface
// ================================================================================

// Fields is a set of key-value pairs attached to a log entry
type Fields map[string]interface{}

// Logger defines the interface for structured logging
type Logger interface {
	// Debug logs a debug message
	Debug(ctx context.Context, msg string, fields ...Fields)

	// Info logs an informational message
	Info(ctx context.Context, msg string, fields ...Fields)

	// Warn logs a warning message
	Warn(ctx context.Context, msg string, fields ...Fields)

	// Error logs an error message
	Error(ctx context.Context, msg string, err error, fields ...Fields)

	// Fatal logs a fatal message and exits the application
	Fatal(ctx context.Context, msg string, err error, fields ...Fields)

	// WithFields creates a new logger with additional fields
	WithFields(fields Fields) Logger

	// WithComponent creates a new logger for a specific component
	WithComponent(component string) Logger
}

// merge flattens several field sets into one. Later keys win.
func merge(fields ...Fields) Fields {
	out := make(Fields)
	for _, f := range fields {
		for k, v := range f {
			out[k] = v
		}
	}
	return out
}

// ================================================================================
// Performance Logging
// ================================================================================

// SlowOperationThreshold is the duration above which StartOperation logs a warning
const SlowOperationThreshold = time.Second

// StartOperation returns a function that logs the elapsed time of an operation
func StartOperation(ctx context.Context, l Logger, operation string) func(Fields) {
	start := time.Now()
	return func(extra Fields) {
		duration := time.Since(start)
		f := merge(Fields{
			"operation":   operation,
			"duration_ms": duration.Milliseconds(),
		}, extra)
		if duration > SlowOperationThreshold {
			l.Warn(ctx, "Slow operation detected", f)
			return
		}
		l.Debug(ctx, "Operation completed", f)
	}
}
