package services

import (
	"context"
	"errors"
	"testing"

	"github.com/formify/form-service/internal/events"
	"github.com/formify/form-service/internal/models"
	"github.com/formify/form-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestFormService(repo *MockFormRepository, c *memoryCache, pub *events.MockEventPublisher) FormService {
	cfg := FormServiceConfig{Logger: testLogger()}
	if c != nil {
		cfg.Cache = c
	}
	if pub != nil {
		cfg.Publisher = pub
	}
	return NewFormService(repo, cfg)
}

func TestFormService_Create(t *testing.T) {
	repo := &MockFormRepository{}
	pub := events.NewMockEventPublisher(testLogger())
	svc := newTestFormService(repo, nil, pub)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(f *models.Form) bool {
		return f.OwnerID == owner.UserID && len(f.Questions) == 2
	})).Return(nil).Once()

	req := &CreateFormRequest{
		ID:    "client-id",
		Title: "Feedback",
		Questions: []QuestionDefinitionRequest{
			{ID: "q1", Text: "How was it?", Type: "paragraph"},
			{Text: "Pick one", Type: "single_choice", Required: true, Options: []OptionDefinitionRequest{{Text: "Good"}, {Text: "Bad"}}},
		},
	}

	form, err := svc.Create(context.Background(), owner, req)

	require.NoError(t, err)
	assert.NotEqual(t, "client-id", form.ID)
	assert.NotEqual(t, "q1", form.Questions[0].ID)
	assert.Equal(t, form.ID, form.Questions[1].FormID)
	assert.Equal(t, form.Questions[1].ID, form.Questions[1].Options[0].QuestionID)
	assert.Equal(t, models.FormAccessPrivate, form.Access)
	assert.Equal(t, models.QuestionTypeSingleChoice, form.Questions[1].Type)
	repo.AssertExpectations(t)

	published := pub.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventFormCreated, published[0].Type)
}

func TestFormService_CreateRejectsInvalidDefinition(t *testing.T) {
	repo := &MockFormRepository{}
	svc := newTestFormService(repo, nil, nil)

	_, err := svc.Create(context.Background(), owner, &CreateFormRequest{
		Title: "Broken",
		Questions: []QuestionDefinitionRequest{
			{ID: "q1", Text: "Choose", Type: "SINGLE_CHOICE"},
			{ID: "q1", Text: "Again", Type: "SHORT_TEXT"},
		},
	})

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, IsValidation(err))
	byField := verrs.ByField()
	assert.Contains(t, byField, "questions[0].options")
	assert.Contains(t, byField, "questions[1].id")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFormService_CreateRequiresSession(t *testing.T) {
	svc := newTestFormService(&MockFormRepository{}, nil, nil)
	_, err := svc.Create(context.Background(), anonymous, &CreateFormRequest{Title: "x"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestFormService_GetVisibility(t *testing.T) {
	tests := []struct {
		name    string
		access  models.FormAccess
		session models.Session
		wantErr error
	}{
		{"private owner", models.FormAccessPrivate, owner, nil},
		{"private stranger", models.FormAccessPrivate, stranger, ErrFormAccessDenied},
		{"private anonymous", models.FormAccessPrivate, anonymous, ErrFormAccessDenied},
		{"by link anonymous", models.FormAccessByLink, anonymous, nil},
		{"public stranger", models.FormAccessPublic, stranger, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockFormRepository{}
			repo.On("GetByID", mock.Anything, "form-1").Return(surveyForm(tt.access), nil)
			svc := newTestFormService(repo, nil, nil)

			form, err := svc.Get(context.Background(), tt.session, "form-1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, form)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "form-1", form.ID)
		})
	}
}

func TestFormService_GetNotFound(t *testing.T) {
	repo := &MockFormRepository{}
	repo.On("GetByID", mock.Anything, "missing").Return(nil, gorm.ErrRecordNotFound)
	svc := newTestFormService(repo, nil, nil)

	_, err := svc.Get(context.Background(), owner, "missing")

	assert.ErrorIs(t, err, ErrFormNotFound)
	assert.True(t, IsNotFound(err))
}

func TestFormService_GetUsesCache(t *testing.T) {
	repo := &MockFormRepository{}
	repo.On("GetByID", mock.Anything, "form-1").Return(surveyForm(models.FormAccessPublic), nil).Once()
	c := newMemoryCache()
	svc := newTestFormService(repo, c, nil)

	first, err := svc.Get(context.Background(), owner, "form-1")
	require.NoError(t, err)
	second, err := svc.Get(context.Background(), owner, "form-1")
	require.NoError(t, err)

	assert.Equal(t, first.Questions, second.Questions)
	assert.Contains(t, c.entries, "form:form-1")
	repo.AssertExpectations(t)
}

func TestFormService_UpdateAccess(t *testing.T) {
	repo := &MockFormRepository{}
	repo.On("GetByID", mock.Anything, "form-1").Return(surveyForm(models.FormAccessPrivate), nil)
	repo.On("UpdateAccess", mock.Anything, "form-1", models.FormAccessPublic).Return(nil).Once()
	c := newMemoryCache()
	pub := events.NewMockEventPublisher(testLogger())
	svc := newTestFormService(repo, c, pub)

	form, err := svc.UpdateAccess(context.Background(), owner, "form-1", models.FormAccessPublic)

	require.NoError(t, err)
	assert.Equal(t, models.FormAccessPublic, form.Access)
	assert.NotContains(t, c.entries, "form:form-1")
	require.Len(t, pub.GetPublishedEvents(), 1)
	assert.Equal(t, events.EventFormAccessChanged, pub.GetPublishedEvents()[0].Type)
}

func TestFormService_UpdateAccessOwnerOnly(t *testing.T) {
	repo := &MockFormRepository{}
	repo.On("GetByID", mock.Anything, "form-1").Return(surveyForm(models.FormAccessPublic), nil)
	svc := newTestFormService(repo, nil, nil)

	_, err := svc.UpdateAccess(context.Background(), stranger, "form-1", models.FormAccessPrivate)

	assert.ErrorIs(t, err, ErrFormNotOwned)
	assert.ErrorIs(t, err, ErrForbidden)
	repo.AssertNotCalled(t, "UpdateAccess", mock.Anything, mock.Anything, mock.Anything)
}

func TestFormService_UpdateAccessRejectsUnknownLevel(t *testing.T) {
	svc := newTestFormService(&MockFormRepository{}, nil, nil)
	_, err := svc.UpdateAccess(context.Background(), owner, "form-1", "SECRET")
	assert.True(t, IsValidation(err))
}

func TestFormService_Delete(t *testing.T) {
	repo := &MockFormRepository{}
	repo.On("GetByID", mock.Anything, "form-1").Return(surveyForm(models.FormAccessPrivate), nil)
	repo.On("Delete", mock.Anything, "form-1").Return(nil).Once()
	pub := events.NewMockEventPublisher(testLogger())
	svc := newTestFormService(repo, newMemoryCache(), pub)

	require.NoError(t, svc.Delete(context.Background(), owner, "form-1"))
	repo.AssertExpectations(t)
	require.Len(t, pub.GetPublishedEvents(), 1)
	assert.Equal(t, events.EventFormDeleted, pub.GetPublishedEvents()[0].Type)
}

func TestFormService_DeleteRepositoryFailure(t *testing.T) {
	repo := &MockFormRepository{}
	repo.On("GetByID", mock.Anything, "form-1").Return(surveyForm(models.FormAccessPrivate), nil)
	repo.On("Delete", mock.Anything, "form-1").Return(errors.New("connection reset"))
	svc := newTestFormService(repo, nil, nil)

	err := svc.Delete(context.Background(), owner, "form-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestFormService_ListMineClampsLimit(t *testing.T) {
	repo := &MockFormRepository{}
	repo.On("ListByOwner", mock.Anything, owner.UserID, repositories.FormFilters{Limit: 20}).
		Return([]*models.Form{surveyForm(models.FormAccessPrivate)}, int64(1), nil).Once()
	svc := newTestFormService(repo, nil, nil)

	list, err := svc.ListMine(context.Background(), owner, repositories.FormFilters{Limit: 1000})

	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, 20, list.Limit)
	repo.AssertExpectations(t)
}

func TestFormService_Schema(t *testing.T) {
	repo := &MockFormRepository{}
	repo.On("GetByID", mock.Anything, "form-1").Return(surveyForm(models.FormAccessByLink), nil)
	svc := newTestFormService(repo, nil, nil)

	schema, err := svc.Schema(context.Background(), anonymous, "form-1")

	require.NoError(t, err)
	require.Len(t, schema.Rules, 6)
	assert.Equal(t, "name", schema.Rules[0].QuestionID)
	assert.True(t, schema.Rules[0].Required)
	assert.Equal(t, "", schema.Defaults["name"])
	assert.Nil(t, schema.Defaults["age"])
	assert.Equal(t, false, schema.Defaults["remote"])
	assert.Equal(t, []string{}, schema.Defaults["langs"])
}

func TestFormService_Validate(t *testing.T) {
	repo := &MockFormRepository{}
	repo.On("GetByID", mock.Anything, "form-1").Return(surveyForm(models.FormAccessPublic), nil)
	svc := newTestFormService(repo, nil, nil)

	errs, err := svc.Validate(context.Background(), anonymous, "form-1", map[string]any{"name": "", "team": "t1", "age": "abc"})

	require.NoError(t, err)
	byField := errs.ByField()
	assert.Equal(t, "field required", byField["name"])
	assert.Equal(t, "enter a number", byField["age"])
	assert.NotContains(t, byField, "team")
}

func TestFormService_OpenAPI(t *testing.T) {
	repo := &MockFormRepository{}
	repo.On("GetByID", mock.Anything, "form-1").Return(surveyForm(models.FormAccessPublic), nil)
	repo.On("GetByID", mock.Anything, "form-2").Return(surveyForm(models.FormAccessPrivate), nil)
	svc := newTestFormService(repo, nil, nil)

	doc, err := svc.OpenAPI(context.Background(), anonymous, "form-1")
	require.NoError(t, err)
	values := doc.Components.Schemas["Values"].Value
	assert.Equal(t, []string{"name", "team"}, values.Required)
	assert.Len(t, values.Properties, 6)

	_, err = svc.OpenAPI(context.Background(), stranger, "form-2")
	assert.ErrorIs(t, err, ErrFormAccessDenied)
}
