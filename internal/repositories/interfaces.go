package repositories

import (
	"context"
	"time"

	"github.com/formify/form-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type FormFilters struct {
	Access    *models.FormAccess `json:"access"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`    // "created_at", "updated_at", "title"
	SortOrder string             `json:"sort_order"` // "asc", "desc"
}

type ResponseFilters struct {
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

// ===== REPOSITORIES =====

// FormRepository stores forms together with their questions and options.
type FormRepository interface {
	Create(ctx context.Context, form *models.Form) error
	// GetByID loads the form with questions and options in display order.
	GetByID(ctx context.Context, id string) (*models.Form, error)
	ListByOwner(ctx context.Context, ownerID string, filters FormFilters) ([]*models.Form, int64, error)
	UpdateAccess(ctx context.Context, id string, access models.FormAccess) error
	Delete(ctx context.Context, id string) error
}

// ResponseRepository stores submitted responses and their answers.
type ResponseRepository interface {
	// Create inserts the response and all of its answers in one transaction.
	Create(ctx context.Context, response *models.FormResponse) error
	// ListByForm returns responses newest first, answers preloaded.
	ListByForm(ctx context.Context, formID string, filters ResponseFilters) ([]*models.FormResponse, int64, error)
	CountByForm(ctx context.Context, formID string) (int64, error)
}
