package services

import (
	"errors"
	"fmt"

	apperrors "github.com/formify/form-service/internal/errors"
	"github.com/formify/form-service/internal/submission"
)

var (
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden - insufficient permissions")
	ErrBadRequest   = errors.New("bad request")

	// ErrFormNotFound is shared with the submission pipeline so remote and
	// local submitters report a missing form the same way.
	ErrFormNotFound = submission.ErrFormNotFound
	// ErrFormAccessDenied is returned when a stranger opens a private form.
	// Handlers answer it like a missing form.
	ErrFormAccessDenied = errors.New("access denied to form")
	ErrFormNotOwned     = errors.New("form belongs to another user")

	ErrUnsupportedExportType = errors.New("unsupported export format")
)

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// PermissionError explains why an owner-only action was refused.
type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID string `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("user %q cannot %s %s %s: %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

func (pe *PermissionError) Unwrap() error {
	return ErrForbidden
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrFormNotFound)
}

// IsUnauthorized reports a missing session or a refused permission.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrFormAccessDenied) ||
		errors.Is(err, ErrFormNotOwned)
}

// IsValidation reports input the caller has to fix before retrying.
func IsValidation(err error) bool {
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrUnsupportedExportType) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}
