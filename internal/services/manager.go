package services

import (
	"log/slog"
	"time"

	"github.com/formify/form-service/internal/cache"
	"github.com/formify/form-service/internal/events"
	"github.com/formify/form-service/internal/formschema"
	"github.com/formify/form-service/internal/repositories"
	"github.com/formify/form-service/internal/validator"
)

// ServiceManager hands out the services sharing one registry, cache and
// publisher.
type ServiceManager interface {
	Form() FormService
	Response() ResponseService
	Registry() *formschema.Registry
}

type ManagerConfig struct {
	Forms     repositories.FormRepository
	Responses repositories.ResponseRepository
	Cache     cache.CacheService
	CacheTTL  time.Duration
	Publisher events.EventPublisher
	Validator *validator.Validator
	Logger    *slog.Logger
}

type serviceManager struct {
	form     FormService
	response ResponseService
	registry *formschema.Registry
}

func NewServiceManager(cfg ManagerConfig) ServiceManager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Validator == nil {
		cfg.Validator = validator.Default()
	}
	registry := formschema.NewRegistry(
		formschema.WithLogger(cfg.Logger.With("component", "formschema")),
		formschema.WithValidator(cfg.Validator),
	)

	form := NewFormService(cfg.Forms, FormServiceConfig{
		Cache:     cfg.Cache,
		CacheTTL:  cfg.CacheTTL,
		Publisher: cfg.Publisher,
		Registry:  registry,
		Validator: cfg.Validator,
		Logger:    cfg.Logger,
	})
	response := NewResponseService(form, cfg.Responses, ResponseServiceConfig{
		Publisher: cfg.Publisher,
		Registry:  registry,
		Logger:    cfg.Logger,
	})

	return &serviceManager{form: form, response: response, registry: registry}
}

func (m *serviceManager) Form() FormService {
	return m.form
}

func (m *serviceManager) Response() ResponseService {
	return m.response
}

func (m *serviceManager) Registry() *formschema.Registry {
	return m.registry
}
