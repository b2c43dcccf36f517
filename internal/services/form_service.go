package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/formify/form-service/internal/cache"
	"github.com/formify/form-service/internal/events"
	"github.com/formify/form-service/internal/formapi"
	"github.com/formify/form-service/internal/formschema"
	"github.com/formify/form-service/internal/models"
	"github.com/formify/form-service/internal/repositories"
	"github.com/formify/form-service/internal/validator"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const formCachePrefix = "form:"

type formService struct {
	repo      repositories.FormRepository
	cache     cache.CacheService
	cacheTTL  time.Duration
	publisher events.EventPublisher
	registry  *formschema.Registry
	validator *validator.Validator
	logger    *slog.Logger
	opLogger  *ServiceLogger
}

type FormServiceConfig struct {
	Cache     cache.CacheService // optional
	CacheTTL  time.Duration
	Publisher events.EventPublisher // optional
	Registry  *formschema.Registry
	Validator *validator.Validator
	Logger    *slog.Logger
}

func NewFormService(repo repositories.FormRepository, cfg FormServiceConfig) FormService {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Registry == nil {
		cfg.Registry = formschema.NewRegistry(formschema.WithLogger(cfg.Logger))
	}
	if cfg.Validator == nil {
		cfg.Validator = validator.Default()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &formService{
		repo:      repo,
		cache:     cfg.Cache,
		cacheTTL:  cfg.CacheTTL,
		publisher: cfg.Publisher,
		registry:  cfg.Registry,
		validator: cfg.Validator,
		logger:    cfg.Logger,
		opLogger:  NewServiceLogger(cfg.Logger, LogConfig{Service: "form-service", Component: "forms"}),
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *formService) Create(ctx context.Context, session models.Session, req *CreateFormRequest) (form *models.Form, err error) {
	op := s.opLogger.WithOperation(ctx, "create_form", session.UserID)
	defer func() {
		id := ""
		if form != nil {
			id = form.ID
		}
		op.LogResult(id, "form", err)
	}()

	if !session.Authenticated() {
		return nil, ErrUnauthorized
	}
	if req == nil {
		return nil, fmt.Errorf("%w: empty form definition", ErrBadRequest)
	}

	form = req.ToForm()
	if errs := s.validator.Definition().ValidateForm(form); len(errs) > 0 {
		return nil, errs
	}
	if err := s.validator.Validate(form); err != nil {
		return nil, err
	}
	assignFreshIDs(form)
	form.OwnerID = session.UserID

	if err := s.repo.Create(ctx, form); err != nil {
		return nil, fmt.Errorf("failed to create form: %w", err)
	}

	s.publish(ctx, events.NewEvent(events.EventFormCreated, events.FormCreatedEvent{
		FormID:        form.ID,
		OwnerID:       form.OwnerID,
		Title:         form.Title,
		QuestionCount: len(form.Questions),
	}))
	return form, nil
}

func (s *formService) Get(ctx context.Context, session models.Session, id string) (*models.Form, error) {
	form, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.CanView(form) {
		return nil, ErrFormAccessDenied
	}
	return form, nil
}

func (s *formService) ListMine(ctx context.Context, session models.Session, filters repositories.FormFilters) (*FormListResponse, error) {
	if !session.Authenticated() {
		return nil, ErrUnauthorized
	}
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	forms, total, err := s.repo.ListByOwner(ctx, session.UserID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	return &FormListResponse{Forms: forms, Total: total, Limit: filters.Limit, Offset: filters.Offset}, nil
}

func (s *formService) UpdateAccess(ctx context.Context, session models.Session, id string, access models.FormAccess) (form *models.Form, err error) {
	op := s.opLogger.WithOperation(ctx, "update_form_access", session.UserID)
	defer func() { op.LogResult(id, "form", err) }()

	if !access.Valid() {
		return nil, ValidationErrors{*NewValidationError("access", "must be a valid access level (PRIVATE, BY_LINK, PUBLIC)", access)}
	}
	form, err = s.owned(ctx, session, id, "update")
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateAccess(ctx, id, access); err != nil {
		return nil, s.mapRepoError(err, "failed to update form access")
	}
	s.invalidate(ctx, id)
	form.Access = access

	s.publish(ctx, events.NewEvent(events.EventFormAccessChanged, events.FormAccessChangedEvent{
		FormID:  id,
		OwnerID: form.OwnerID,
		Access:  string(access),
	}))
	return form, nil
}

func (s *formService) Delete(ctx context.Context, session models.Session, id string) (err error) {
	op := s.opLogger.WithOperation(ctx, "delete_form", session.UserID)
	defer func() { op.LogResult(id, "form", err) }()

	form, err := s.owned(ctx, session, id, "delete")
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err, "failed to delete form")
	}
	s.invalidate(ctx, id)

	s.publish(ctx, events.NewEvent(events.EventFormDeleted, events.FormDeletedEvent{
		FormID:  id,
		OwnerID: form.OwnerID,
	}))
	return nil
}

// ===== SCHEMA OPERATIONS =====

func (s *formService) Schema(ctx context.Context, session models.Session, id string) (*FormSchemaResponse, error) {
	form, err := s.Get(ctx, session, id)
	if err != nil {
		return nil, err
	}
	questions := models.SortedQuestions(form.Questions)
	return &FormSchemaResponse{
		FormID:    form.ID,
		Title:     form.Title,
		Questions: questions,
		Rules:     s.registry.BuildSchema(questions).Describe(),
		Defaults:  s.registry.BuildDefaults(questions),
	}, nil
}

// OpenAPI describes the submit and validate endpoints of one form.
func (s *formService) OpenAPI(ctx context.Context, session models.Session, id string) (*openapi3.T, error) {
	form, err := s.Get(ctx, session, id)
	if err != nil {
		return nil, err
	}
	return formapi.Document(form, s.registry), nil
}

func (s *formService) Validate(ctx context.Context, session models.Session, id string, state formschema.FormState) (ValidationErrors, error) {
	form, err := s.Get(ctx, session, id)
	if err != nil {
		return nil, err
	}
	return s.registry.BuildSchema(form.Questions).Validate(state), nil
}

// ===== HELPERS =====

// load fetches a form through the cache. Cache failures only cost a
// database round trip.
func (s *formService) load(ctx context.Context, id string) (*models.Form, error) {
	if s.cache != nil {
		var cached models.Form
		err := s.cache.Get(ctx, formCachePrefix+id, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.WarnContext(ctx, "Form cache read failed", "form_id", id, "error", err)
		}
	}

	form, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, "failed to get form")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, formCachePrefix+id, form, s.cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "Form cache write failed", "form_id", id, "error", err)
		}
	}
	return form, nil
}

func (s *formService) owned(ctx context.Context, session models.Session, id, action string) (*models.Form, error) {
	if !session.Authenticated() {
		return nil, ErrUnauthorized
	}
	form, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.Owns(form) {
		return nil, fmt.Errorf("%w: %w", ErrFormNotOwned, NewPermissionError(session.UserID, id, "form", action, "not owner"))
	}
	return form, nil
}

func (s *formService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, formCachePrefix+id); err != nil {
		s.logger.WarnContext(ctx, "Form cache invalidation failed", "form_id", id, "error", err)
	}
}

func (s *formService) publish(ctx context.Context, event *events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish event", "event_type", event.Type, "error", err)
	}
}

func (s *formService) mapRepoError(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrFormNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// assignFreshIDs gives the form, its questions and options server-generated
// ids. Client-supplied ids are only meaningful inside the request.
func assignFreshIDs(form *models.Form) {
	form.ID = uuid.NewString()
	for i := range form.Questions {
		q := &form.Questions[i]
		q.ID = uuid.NewString()
		q.FormID = form.ID
		for j := range q.Options {
			q.Options[j].ID = uuid.NewString()
			q.Options[j].QuestionID = q.ID
		}
	}
}
