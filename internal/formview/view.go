// Package formview holds one render of a form: its ordered questions, the
// schema and defaults built for them, the respondent's state and the
// submission pipeline.
package formview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	apperrors "github.com/formify/form-service/internal/errors"
	"github.com/formify/form-service/internal/formschema"
	"github.com/formify/form-service/internal/models"
	"github.com/formify/form-service/internal/submission"
)

var (
	ErrFormLocked      = errors.New("form already submitted")
	ErrUnknownQuestion = errors.New("unknown question")
	ErrNoSubmitter     = errors.New("form view has no submitter")
)

// View is a single render of a form. Schema and defaults are built once in
// New; a changed form needs a new View.
type View struct {
	form      *models.Form
	questions []models.Question
	index     map[string]int
	schema    *formschema.Schema
	pipeline  *submission.Pipeline
	logger    *slog.Logger

	mu          sync.Mutex
	state       formschema.FormState
	fieldErrors map[string]string
	// locked is set under mu before the pipeline reports Submitted.
	locked bool
}

type Option func(*config)

type config struct {
	registry  *formschema.Registry
	submitter submission.Submitter
	notifier  submission.Notifier
	logger    *slog.Logger
}

func WithSubmitter(s submission.Submitter) Option {
	return func(c *config) { c.submitter = s }
}

func WithNotifier(n submission.Notifier) Option {
	return func(c *config) { c.notifier = n }
}

func WithRegistry(r *formschema.Registry) Option {
	return func(c *config) { c.registry = r }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

func New(form *models.Form, opts ...Option) *View {
	cfg := config{
		registry: formschema.Default(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	questions := models.SortedQuestions(form.Questions)
	index := make(map[string]int, len(questions))
	for i, q := range questions {
		if _, dup := index[q.ID]; !dup {
			index[q.ID] = i
		}
	}

	v := &View{
		form:        form,
		questions:   questions,
		index:       index,
		schema:      cfg.registry.BuildSchema(questions),
		state:       cfg.registry.BuildDefaults(questions),
		fieldErrors: make(map[string]string),
		logger:      cfg.logger.With("form_id", form.ID),
	}
	if cfg.submitter != nil {
		v.pipeline = submission.NewPipeline(form.ID, questions, v.lockOnSuccess(cfg.submitter),
			submission.WithNotifier(cfg.notifier),
			submission.WithRegistry(cfg.registry),
			submission.WithLogger(cfg.logger),
		)
	}
	return v
}

// lockOnSuccess locks the state as soon as the submitter accepts the answers,
// so no Set can land between acceptance and the Submitted transition.
func (v *View) lockOnSuccess(next submission.Submitter) submission.Submitter {
	return submission.SubmitterFunc(func(ctx context.Context, req submission.SubmitRequest) (*submission.SubmitResult, error) {
		result, err := next.SubmitAnswers(ctx, req)
		if err == nil {
			v.mu.Lock()
			v.locked = true
			v.mu.Unlock()
		}
		return result, err
	})
}

func (v *View) Form() *models.Form {
	return v.form
}

// Questions returns the questions in display order.
func (v *View) Questions() []models.Question {
	out := make([]models.Question, len(v.questions))
	copy(out, v.questions)
	return out
}

// Options returns the ordered options of a choice question.
func (v *View) Options(questionID string) []models.Option {
	i, ok := v.index[questionID]
	if !ok {
		return nil
	}
	return v.questions[i].Options
}

func (v *View) Schema() *formschema.Schema {
	return v.schema
}

func (v *View) Value(questionID string) (any, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	value, ok := v.state[questionID]
	return value, ok
}

// Set stores a value and returns its inline validation error, if any. The
// value is kept even when it is invalid.
func (v *View) Set(questionID string, value any) error {
	if _, ok := v.index[questionID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	fieldErr := v.schema.ValidateField(questionID, value)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.locked {
		return ErrFormLocked
	}
	v.state[questionID] = value
	if fieldErr != nil {
		v.fieldErrors[questionID] = fieldErr.Error()
	} else {
		delete(v.fieldErrors, questionID)
	}
	return fieldErr
}

// Errors returns the current inline error message per question.
func (v *View) Errors() map[string]string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(map[string]string, len(v.fieldErrors))
	for k, msg := range v.fieldErrors {
		out[k] = msg
	}
	return out
}

// Validate checks the whole state and replaces the inline errors.
func (v *View) Validate() apperrors.ValidationErrors {
	v.mu.Lock()
	defer v.mu.Unlock()
	errs := v.schema.Validate(v.state)
	v.fieldErrors = errs.ByField()
	return errs
}

// State returns a copy of the respondent's current values.
func (v *View) State() formschema.FormState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.Clone()
}

func (v *View) CanSubmit() bool {
	return v.pipeline != nil && v.pipeline.CanSubmit()
}

func (v *View) Status() submission.Status {
	if v.pipeline == nil {
		return submission.StatusIdle
	}
	return v.pipeline.Status()
}

// Submitted reports whether the thank-you state has been reached.
func (v *View) Submitted() bool {
	return v.Status() == submission.StatusSubmitted
}

// Submit validates the whole state and, when it is valid, hands it to the
// pipeline. Validation failures are returned as ValidationErrors and the
// submitter is not called.
func (v *View) Submit(ctx context.Context) (*submission.SubmitResult, error) {
	if v.pipeline == nil {
		return nil, ErrNoSubmitter
	}
	if v.pipeline.Status() == submission.StatusSubmitted {
		return nil, submission.ErrAlreadySubmitted
	}
	if errs := v.Validate(); len(errs) > 0 {
		v.logger.DebugContext(ctx, "Submission blocked by validation", "error_count", len(errs))
		return nil, errs
	}
	return v.pipeline.Submit(ctx, v.State())
}

// Close releases the render. An in-flight submission result is discarded.
func (v *View) Close() {
	if v.pipeline != nil {
		v.pipeline.Close()
	}
}
