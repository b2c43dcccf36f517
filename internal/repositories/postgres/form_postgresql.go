package postgres

import (
	"context"
	"fmt"

	"github.com/formify/form-service/internal/models"
	"github.com/formify/form-service/internal/repositories"
	"gorm.io/gorm"
)

type FormPostgreSQL struct {
	db *gorm.DB
}

func NewFormPostgreSQL(db *gorm.DB) repositories.FormRepository {
	return &FormPostgreSQL{db: db}
}

// Create inserts the form, its questions and their options
func (f *FormPostgreSQL) Create(ctx context.Context, form *models.Form) error {
	return f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(form).Error; err != nil {
			return fmt.Errorf("failed to create form: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a form with ordered questions and options
func (f *FormPostgreSQL) GetByID(ctx context.Context, id string) (*models.Form, error) {
	var form models.Form
	err := f.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"order" ASC`)
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"order" ASC`)
		}).
		First(&form, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	// the database order is not stable for equal values
	form.Questions = models.SortedQuestions(form.Questions)
	return &form, nil
}

// ListByOwner lists an owner's forms without their questions
func (f *FormPostgreSQL) ListByOwner(ctx context.Context, ownerID string, filters repositories.FormFilters) ([]*models.Form, int64, error) {
	query := f.db.WithContext(ctx).Model(&models.Form{}).Where("owner_id = ?", ownerID)
	if filters.Access != nil {
		query = query.Where("access = ?", *filters.Access)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count forms: %w", err)
	}

	query = query.Order(formSortClause(filters.SortBy, filters.SortOrder))
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var forms []*models.Form
	if err := query.Find(&forms).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list forms: %w", err)
	}
	return forms, total, nil
}

func (f *FormPostgreSQL) UpdateAccess(ctx context.Context, id string, access models.FormAccess) error {
	result := f.db.WithContext(ctx).Model(&models.Form{}).Where("id = ?", id).Update("access", access)
	if result.Error != nil {
		return fmt.Errorf("failed to update form access: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete soft-deletes the form. Questions stay for existing responses.
func (f *FormPostgreSQL) Delete(ctx context.Context, id string) error {
	result := f.db.WithContext(ctx).Delete(&models.Form{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete form: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func formSortClause(sortBy, sortOrder string) string {
	column := "created_at"
	switch sortBy {
	case "updated_at", "title":
		column = sortBy
	}
	direction := "DESC"
	if sortOrder == "asc" {
		direction = "ASC"
	}
	return column + " " + direction
}
