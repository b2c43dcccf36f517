package submission

import (
	"context"
	"log/slog"
	"time"

	"github.com/formify/form-service/internal/events"
)

// LogNotifier writes submission outcomes to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Submitted(ctx context.Context, req SubmitRequest, result *SubmitResult) {
	attrs := []any{"form_id", req.FormID, "answer_count", len(req.Answers)}
	if result != nil {
		attrs = append(attrs, "response_id", result.ResponseID)
	}
	n.Logger.InfoContext(ctx, "Form submitted", attrs...)
}

func (n LogNotifier) Failed(ctx context.Context, req SubmitRequest, err error) {
	n.Logger.ErrorContext(ctx, "Form submission failed",
		"form_id", req.FormID,
		"answer_count", len(req.Answers),
		"error", err)
}

// EventNotifier publishes response.submitted and response.failed events.
// Publishing failures are logged and never reach the respondent.
type EventNotifier struct {
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewEventNotifier(publisher events.EventPublisher, logger *slog.Logger) *EventNotifier {
	return &EventNotifier{publisher: publisher, logger: logger}
}

func (n *EventNotifier) Submitted(ctx context.Context, req SubmitRequest, result *SubmitResult) {
	payload := events.ResponseSubmittedEvent{
		FormID:      req.FormID,
		AnswerCount: len(req.Answers),
		SubmittedAt: time.Now().UTC(),
	}
	if result != nil {
		payload.ResponseID = result.ResponseID
		if !result.CreatedAt.IsZero() {
			payload.SubmittedAt = result.CreatedAt
		}
	}
	n.publish(ctx, events.NewEvent(events.EventResponseSubmitted, payload))
}

func (n *EventNotifier) Failed(ctx context.Context, req SubmitRequest, err error) {
	n.publish(ctx, events.NewEvent(events.EventResponseFailed, events.ResponseFailedEvent{
		FormID:      req.FormID,
		AnswerCount: len(req.Answers),
		Error:       err.Error(),
	}))
}

func (n *EventNotifier) publish(ctx context.Context, event *events.Event) {
	if err := n.publisher.PublishEvent(ctx, event); err != nil {
		n.logger.WarnContext(ctx, "Failed to publish submission event",
			"event_type", event.Type,
			"error", err)
	}
}

// MultiNotifier fans out to every notifier in order.
type MultiNotifier []Notifier

func (m MultiNotifier) Submitted(ctx context.Context, req SubmitRequest, result *SubmitResult) {
	for _, n := range m {
		n.Submitted(ctx, req, result)
	}
}

func (m MultiNotifier) Failed(ctx context.Context, req SubmitRequest, err error) {
	for _, n := range m {
		n.Failed(ctx, req, err)
	}
}
