// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// PrincipalIDKey is the context key for the authenticated principal ID
	PrincipalIDKey contextKey = "principal_id"
	// TenantSlugKey is the context key for the resolved tenant slug
	TenantSlugKey contextKey = "tenant_slug"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = &Logger{Logger: newLogger.With(slog.String("request_id", requestID))}
	}

	if principalID, ok := ctx.Value(PrincipalIDKey).(string); ok && principalID != "" {
		newLogger = &Logger{Logger: newLogger.With(slog.String("principal_id", principalID))}
	}

	if slug, ok := ctx.Value(TenantSlugKey).(string); ok && slug != "" {
		newLogger = &Logger{Logger: newLogger.With(slog.String("tenant_slug", slug))}
	}

	return newLogger
}

// WithTenant returns a logger bound to a tenant slug.
func (l *Logger) WithTenant(slug string) *Logger {
	return &Logger{Logger: l.With(slog.String("tenant_slug", slug))}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// JobStarted logs the start of a scheduled job run.
func (l *Logger) JobStarted(jobName string, tenantSlug string) {
	l.Info("job_started",
		slog.String("job", jobName),
		slog.String("tenant_slug", tenantSlug),
	)
}

// JobFinished logs the outcome of a scheduled job run.
func (l *Logger) JobFinished(jobName string, tenantSlug string, processed int, err error) {
	if err != nil {
		l.Error("job_failed",
			slog.String("job", jobName),
			slog.String("tenant_slug", tenantSlug),
			slog.Int("records_processed", processed),
			slog.String("error", err.Error()),
		)
		return
	}
	l.Info("job_finished",
		slog.String("job", jobName),
		slog.String("tenant_slug", tenantSlug),
		slog.Int("records_processed", processed),
	)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}
