package submission

import (
	"context"
	"errors"

	"github.com/formify/form-service/internal/models"
)

// ErrFormNotFound is returned by a FormFetcher when the form does not exist
// or is not visible to the caller.
var ErrFormNotFound = errors.New("form not found")

// FormFetcher loads a form definition for rendering.
type FormFetcher interface {
	GetForm(ctx context.Context, id string) (*models.Form, error)
}

// ResponsesFetcher lists the stored responses of a form, newest first.
type ResponsesFetcher interface {
	ListResponses(ctx context.Context, formID string) ([]models.FormResponse, error)
}
