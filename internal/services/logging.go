package services

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// maxLoggedFields caps how many failing question ids go into one log line.
const maxLoggedFields = 10

// ServiceLogger records one line per service operation, with the level
// picked from the error class: caller mistakes are warnings, missing forms
// are info and everything else is an error.
type ServiceLogger struct {
	logger *slog.Logger
}

type LogConfig struct {
	Service   string
	Component string
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", config.Service, "component", config.Component),
	}
}

// outcome classifies err into a log level and a short status label.
func outcome(err error) (slog.Level, string) {
	switch {
	case err == nil:
		return slog.LevelInfo, "success"
	case errors.Is(err, ErrFormAccessDenied), errors.Is(err, ErrFormNotOwned):
		return slog.LevelWarn, "access_denied"
	case IsUnauthorized(err):
		return slog.LevelWarn, "unauthorized"
	case IsValidation(err):
		return slog.LevelWarn, "rejected"
	case IsNotFound(err):
		return slog.LevelInfo, "not_found"
	default:
		return slog.LevelError, "error"
	}
}

func (l *ServiceLogger) LogOperation(ctx context.Context, operation, userID, resourceID, resourceType string, duration time.Duration, err error) {
	level, status := outcome(err)

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("user_id", userID),
		slog.String("resource_id", resourceID),
		slog.String("resource_type", resourceType),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		attrs = append(attrs, errorDetails(err)...)
	}

	l.logger.LogAttrs(ctx, level, operation+" "+status, attrs...)
}

// errorDetails adds the structured parts of typed errors: failing fields for
// validation errors, action and reason for refused permissions.
func errorDetails(err error) []slog.Attr {
	var (
		validationErrs ValidationErrors
		permErr        *PermissionError
	)
	switch {
	case errors.As(err, &validationErrs):
		fields := make([]string, 0, min(len(validationErrs), maxLoggedFields))
		for i, e := range validationErrs {
			if i == maxLoggedFields {
				break
			}
			fields = append(fields, e.Field)
		}
		return []slog.Attr{
			slog.Int("validation_errors_count", len(validationErrs)),
			slog.Any("fields", fields),
		}
	case errors.As(err, &permErr):
		return []slog.Attr{
			slog.String("permission_action", permErr.Action),
			slog.String("permission_reason", permErr.Reason),
		}
	}
	return nil
}

// OperationLogger times a single operation; call LogResult when it ends.
type OperationLogger struct {
	logger    *ServiceLogger
	operation string
	userID    string
	startTime time.Time
	ctx       context.Context
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation, userID string) *OperationLogger {
	return &OperationLogger{
		logger:    l,
		operation: operation,
		userID:    userID,
		startTime: time.Now(),
		ctx:       ctx,
	}
}

func (ol *OperationLogger) LogResult(resourceID, resourceType string, err error) {
	ol.logger.LogOperation(ol.ctx, ol.operation, ol.userID, resourceID, resourceType, time.Since(ol.startTime), err)
}
