// Package logger provides structured logging for the application using log/slog.
// It configures the process-wide JSON logger and carries request-scoped loggers
// through context.Context so that every log line of a request shares its trace ID.
package logger
