package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/formify/form-service/internal/formschema"
	"github.com/formify/form-service/internal/models"
)

var (
	ErrSubmissionInProgress = errors.New("submission already in progress")
	ErrAlreadySubmitted     = errors.New("form already submitted")
	ErrClosed               = errors.New("form view closed")
)

// Status is the submission state of one form render.
type Status int

const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusSubmitted
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSubmitting:
		return "submitting"
	case StatusSubmitted:
		return "submitted"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// SubmitRequest is what the pipeline hands to the Submitter.
type SubmitRequest struct {
	FormID  string                   `json:"formId"`
	Answers []formschema.AnswerInput `json:"answers"`
}

type SubmitResult struct {
	ResponseID string    `json:"responseId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Submitter persists a set of answers for a form.
type Submitter interface {
	SubmitAnswers(ctx context.Context, req SubmitRequest) (*SubmitResult, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, req SubmitRequest) (*SubmitResult, error)

func (f SubmitterFunc) SubmitAnswers(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	return f(ctx, req)
}

// Notifier is told about the outcome of every completed submission attempt.
type Notifier interface {
	Submitted(ctx context.Context, req SubmitRequest, result *SubmitResult)
	Failed(ctx context.Context, req SubmitRequest, err error)
}

// Pipeline normalizes a form state and submits it at most once. A failed
// attempt returns the pipeline to StatusIdle so the respondent can try again;
// a successful one is final.
type Pipeline struct {
	formID    string
	questions []models.Question
	submitter Submitter
	notifier  Notifier
	registry  *formschema.Registry
	logger    *slog.Logger

	mu      sync.Mutex
	status  Status
	lastErr error
	result  *SubmitResult
	closed  bool
}

type Option func(*Pipeline)

func WithNotifier(n Notifier) Option {
	return func(p *Pipeline) {
		if n != nil {
			p.notifier = n
		}
	}
}

func WithRegistry(r *formschema.Registry) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.registry = r
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline creates a pipeline for one render of a form. submitter must
// not be nil.
func NewPipeline(formID string, questions []models.Question, submitter Submitter, opts ...Option) *Pipeline {
	p := &Pipeline{
		formID:    formID,
		questions: questions,
		submitter: submitter,
		notifier:  MultiNotifier{},
		registry:  formschema.Default(),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("form_id", formID)
	return p
}

// Submit normalizes state and sends it to the submitter. While a submission
// is in flight further calls fail with ErrSubmissionInProgress without
// reaching the submitter.
func (p *Pipeline) Submit(ctx context.Context, state formschema.FormState) (*SubmitResult, error) {
	p.mu.Lock()
	switch {
	case p.closed:
		p.mu.Unlock()
		return nil, ErrClosed
	case p.status == StatusSubmitting:
		p.mu.Unlock()
		return nil, ErrSubmissionInProgress
	case p.status == StatusSubmitted:
		p.mu.Unlock()
		return nil, ErrAlreadySubmitted
	}
	p.status = StatusSubmitting
	p.lastErr = nil
	p.mu.Unlock()

	req := SubmitRequest{
		FormID:  p.formID,
		Answers: p.registry.NormalizeAnswers(state, p.questions),
	}
	p.logger.DebugContext(ctx, "Submitting answers", "answer_count", len(req.Answers))

	result, err := p.submitter.SubmitAnswers(ctx, req)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.logger.DebugContext(ctx, "Discarding submission result for closed view", "error", err)
		return result, err
	}
	if err != nil {
		p.status = StatusIdle
		p.lastErr = err
		p.mu.Unlock()

		p.logger.WarnContext(ctx, "Submission failed", "error", err)
		p.notifier.Failed(ctx, req, err)
		return nil, fmt.Errorf("submit answers: %w", err)
	}
	p.status = StatusSubmitted
	p.result = result
	p.mu.Unlock()

	p.notifier.Submitted(ctx, req, result)
	return result, nil
}

// CanSubmit reports whether a submit control should be enabled.
func (p *Pipeline) CanSubmit() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.closed && p.status == StatusIdle
}

func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// LastError returns the error of the most recent failed attempt, cleared
// when a new attempt starts.
func (p *Pipeline) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Result returns the submitter's result once the form has been submitted.
func (p *Pipeline) Result() *SubmitResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// Close marks the render as gone. A submission still in flight completes but
// its outcome is not applied or notified.
func (p *Pipeline) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}
