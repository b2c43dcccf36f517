package postgres

import (
	"context"
	"fmt"

	"github.com/formify/form-service/internal/models"
	"github.com/formify/form-service/internal/repositories"
	"gorm.io/gorm"
)

type ResponsePostgreSQL struct {
	db *gorm.DB
}

func NewResponsePostgreSQL(db *gorm.DB) repositories.ResponseRepository {
	return &ResponsePostgreSQL{db: db}
}

// Create inserts the response and its answers atomically
func (r *ResponsePostgreSQL) Create(ctx context.Context, response *models.FormResponse) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		answers := response.Answers
		response.Answers = nil
		if err := tx.Create(response).Error; err != nil {
			return fmt.Errorf("failed to create response: %w", err)
		}

		for i := range answers {
			answers[i].ResponseID = response.ID
		}
		if len(answers) > 0 {
			if err := tx.Create(&answers).Error; err != nil {
				return fmt.Errorf("failed to create answers: %w", err)
			}
		}
		response.Answers = answers
		return nil
	})
}

// ListByForm lists a form's responses, newest first
func (r *ResponsePostgreSQL) ListByForm(ctx context.Context, formID string, filters repositories.ResponseFilters) ([]*models.FormResponse, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.FormResponse{}).Where("form_id = ?", formID)
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count responses: %w", err)
	}

	query = query.Order("created_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var responses []*models.FormResponse
	if err := query.Preload("Answers").Find(&responses).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list responses: %w", err)
	}
	return responses, total, nil
}

func (r *ResponsePostgreSQL) CountByForm(ctx context.Context, formID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.FormResponse{}).Where("form_id = ?", formID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count responses: %w", err)
	}
	return count, nil
}
