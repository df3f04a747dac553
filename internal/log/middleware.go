package log

import (
	"context"
	"log/slog"
	"net/http"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// NewContext returns ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts a logger from the request context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// Middleware creates HTTP middleware that adds a logger to the request context
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), logger)))
		})
	}
}

// RequestIDMiddleware adds the request ID to the logger in context
func RequestIDMiddleware(extractRequestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := FromContext(r.Context()).With(FieldRequestID, extractRequestID(r))
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), logger)))
		})
	}
}

// StructuredLogger provides structured logging methods with context awareness
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogExpenseChanged records a successful write to a user's expenses.
func (sl *StructuredLogger) LogExpenseChanged(ctx context.Context, op, uid, id, desc string, amountCents int64) {
	fields := NewFields().
		WithExpense(id, desc, amountCents).
		WithUser(uid).
		WithOperation(op)

	sl.logger.WithComponent(ComponentExpense).InfoContext(ctx, "Expense "+op+" succeeded", fields.ToSlice()...)
}

// LogAuth records a login or logout.
func (sl *StructuredLogger) LogAuth(ctx context.Context, op, provider, uid string) {
	fields := NewFields().
		WithUser(uid).
		WithOperation(op)
	fields[FieldProvider] = provider

	sl.logger.WithComponent(ComponentAuth).InfoContext(ctx, "User "+op, fields.ToSlice()...)
}

// LogFiltersChanged records a new filter state for uid. Empty dates mean
// the bound is cleared.
func (sl *StructuredLogger) LogFiltersChanged(ctx context.Context, uid, text, sortBy, startDate, endDate string) {
	fields := NewFields().
		WithUser(uid).
		WithOperation(OpFilter)
	fields["text"] = text
	fields["sort_by"] = sortBy
	fields["start_date"] = startDate
	fields["end_date"] = endDate

	sl.logger.WithComponent(ComponentFilters).InfoContext(ctx, "Filters changed", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation)

	sl.logger.WithComponent(component).ErrorContext(ctx, msg, allFields.ToSlice()...)
}
