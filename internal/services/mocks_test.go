package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/formify/form-service/internal/cache"
	"github.com/formify/form-service/internal/models"
	"github.com/formify/form-service/internal/repositories"
	"github.com/stretchr/testify/mock"
)

// MockFormRepository is a mock implementation of FormRepository
type MockFormRepository struct {
	mock.Mock
}

func (m *MockFormRepository) Create(ctx context.Context, form *models.Form) error {
	args := m.Called(ctx, form)
	return args.Error(0)
}

func (m *MockFormRepository) GetByID(ctx context.Context, id string) (*models.Form, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Form), args.Error(1)
}

func (m *MockFormRepository) ListByOwner(ctx context.Context, ownerID string, filters repositories.FormFilters) ([]*models.Form, int64, error) {
	args := m.Called(ctx, ownerID, filters)
	return args.Get(0).([]*models.Form), args.Get(1).(int64), args.Error(2)
}

func (m *MockFormRepository) UpdateAccess(ctx context.Context, id string, access models.FormAccess) error {
	args := m.Called(ctx, id, access)
	return args.Error(0)
}

func (m *MockFormRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockResponseRepository is a mock implementation of ResponseRepository
type MockResponseRepository struct {
	mock.Mock
}

func (m *MockResponseRepository) Create(ctx context.Context, response *models.FormResponse) error {
	args := m.Called(ctx, response)
	return args.Error(0)
}

func (m *MockResponseRepository) ListByForm(ctx context.Context, formID string, filters repositories.ResponseFilters) ([]*models.FormResponse, int64, error) {
	args := m.Called(ctx, formID, filters)
	return args.Get(0).([]*models.FormResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockResponseRepository) CountByForm(ctx context.Context, formID string) (int64, error) {
	args := m.Called(ctx, formID)
	return args.Get(0).(int64), args.Error(1)
}

// memoryCache is an in-process CacheService with the same JSON round trip
// as the redis implementation.
type memoryCache struct {
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = data
	return nil
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	data, ok := c.entries[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func (c *memoryCache) DeletePattern(_ context.Context, _ string) error {
	c.entries = make(map[string][]byte)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

var (
	owner     = models.Session{UserID: "0b6a4c1e-1111-4c4c-8c8c-000000000001", Name: "owner"}
	stranger  = models.Session{UserID: "0b6a4c1e-2222-4c4c-8c8c-000000000002", Name: "stranger"}
	anonymous = models.Session{}
)

// surveyForm is a form with one question of each commonly used kind.
func surveyForm(access models.FormAccess) *models.Form {
	return &models.Form{
		ID:      "form-1",
		OwnerID: owner.UserID,
		Title:   "Team <b>survey</b>",
		Access:  access,
		Questions: []models.Question{
			{ID: "name", Text: "Your name", Type: models.QuestionTypeShortText, Required: true, Order: 0},
			{ID: "age", Text: "Age", Type: models.QuestionTypeNumber, Order: 1},
			{ID: "remote", Text: "Remote?", Type: models.QuestionTypeBoolean, Order: 2},
			{ID: "start", Text: "Start date", Type: models.QuestionTypeDate, Order: 3},
			{ID: "team", Text: "Team", Type: models.QuestionTypeSingleChoice, Required: true, Order: 4, Options: []models.Option{
				{ID: "t1", Text: "Platform", Order: 0},
				{ID: "t2", Text: "Product", Order: 1},
			}},
			{ID: "langs", Text: "Languages", Type: models.QuestionTypeMultipleChoice, Order: 5, Options: []models.Option{
				{ID: "go", Text: "Go", Order: 0},
				{ID: "rs", Text: "Rust", Order: 1},
			}},
		},
	}
}
