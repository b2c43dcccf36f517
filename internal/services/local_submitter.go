package services

import (
	"context"

	"github.com/formify/form-service/internal/models"
	"github.com/formify/form-service/internal/repositories"
	"github.com/formify/form-service/internal/submission"
)

// LocalSubmitter drives the services in-process on behalf of one session.
// It satisfies the same contracts as the HTTP client, so a form view can be
// backed by either.
type LocalSubmitter struct {
	Forms     FormService
	Responses ResponseService
	Session   models.Session
}

var (
	_ submission.FormFetcher      = (*LocalSubmitter)(nil)
	_ submission.Submitter        = (*LocalSubmitter)(nil)
	_ submission.ResponsesFetcher = (*LocalSubmitter)(nil)
)

func (l *LocalSubmitter) GetForm(ctx context.Context, id string) (*models.Form, error) {
	form, err := l.Forms.Get(ctx, l.Session, id)
	if err != nil {
		if IsUnauthorized(err) {
			return nil, submission.ErrFormNotFound
		}
		return nil, err
	}
	return form, nil
}

func (l *LocalSubmitter) SubmitAnswers(ctx context.Context, req submission.SubmitRequest) (*submission.SubmitResult, error) {
	return l.Responses.Submit(ctx, l.Session, req.FormID, &SubmitResponseRequest{Answers: req.Answers})
}

func (l *LocalSubmitter) ListResponses(ctx context.Context, formID string) ([]models.FormResponse, error) {
	list, err := l.Responses.List(ctx, l.Session, formID, repositories.ResponseFilters{Limit: 500})
	if err != nil {
		return nil, err
	}
	out := make([]models.FormResponse, 0, len(list.Responses))
	for _, r := range list.Responses {
		out = append(out, *r)
	}
	return out, nil
}
