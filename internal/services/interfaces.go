package services

import (
	"context"
	"io"
	"time"

	"github.com/formify/form-service/internal/formdef"
	"github.com/formify/form-service/internal/formschema"
	"github.com/formify/form-service/internal/models"
	"github.com/formify/form-service/internal/repositories"
	"github.com/formify/form-service/internal/submission"
	"github.com/getkin/kin-openapi/openapi3"
)

// ===== SERVICE INTERFACES =====

type FormService interface {
	Create(ctx context.Context, session models.Session, req *CreateFormRequest) (*models.Form, error)
	// Get returns the form if the session may view it.
	Get(ctx context.Context, session models.Session, id string) (*models.Form, error)
	ListMine(ctx context.Context, session models.Session, filters repositories.FormFilters) (*FormListResponse, error)
	UpdateAccess(ctx context.Context, session models.Session, id string, access models.FormAccess) (*models.Form, error)
	Delete(ctx context.Context, session models.Session, id string) error

	Schema(ctx context.Context, session models.Session, id string) (*FormSchemaResponse, error)
	Validate(ctx context.Context, session models.Session, id string, state formschema.FormState) (ValidationErrors, error)
	OpenAPI(ctx context.Context, session models.Session, id string) (*openapi3.T, error)
}

type ResponseService interface {
	Submit(ctx context.Context, session models.Session, formID string, req *SubmitResponseRequest) (*submission.SubmitResult, error)
	// List is restricted to the form owner.
	List(ctx context.Context, session models.Session, formID string, filters repositories.ResponseFilters) (*ResponseListResponse, error)
	BuildTable(ctx context.Context, session models.Session, formID string) (*ResponseTable, error)
	Export(ctx context.Context, session models.Session, formID string, format ExportFormat, w io.Writer) error
}

// ===== REQUEST / RESPONSE TYPES =====

// CreateFormRequest has the same shape as a form definition file.
type CreateFormRequest = formdef.Definition

type QuestionDefinitionRequest = formdef.QuestionDefinition

type OptionDefinitionRequest = formdef.OptionDefinition

type UpdateAccessRequest struct {
	Access models.FormAccess `json:"access" validate:"required,form_access"`
}

type FormListResponse struct {
	Forms  []*models.Form `json:"forms"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// FormSchemaResponse gives a client everything needed to render a form.
type FormSchemaResponse struct {
	FormID    string                      `json:"formId"`
	Title     string                      `json:"title"`
	Questions []models.Question           `json:"questions"`
	Rules     []formschema.RuleDescriptor `json:"rules"`
	Defaults  formschema.FormState        `json:"defaults"`
}

// SubmitResponseRequest carries either normalized answers or raw values.
// Raw values are validated and normalized server-side.
type SubmitResponseRequest struct {
	Answers []formschema.AnswerInput `json:"answers"`
	Values  formschema.FormState     `json:"values"`
}

type ResponseListResponse struct {
	Responses []*models.FormResponse `json:"responses"`
	Total     int64                  `json:"total"`
	Limit     int                    `json:"limit"`
	Offset    int                    `json:"offset"`
}

type TableColumn struct {
	QuestionID string              `json:"questionId"`
	Title      string              `json:"title"`
	Type       models.QuestionType `json:"type"`
}

type TableRow struct {
	ResponseID  string    `json:"responseId"`
	SubmittedAt time.Time `json:"submittedAt"`
	Cells       []string  `json:"cells"`
}

// ResponseTable is the answers grid: one column per question in display
// order, one row per response, newest first.
type ResponseTable struct {
	FormID  string        `json:"formId"`
	Title   string        `json:"title"`
	Columns []TableColumn `json:"columns"`
	Rows    []TableRow    `json:"rows"`
}

type ExportFormat string

const (
	ExportXLSX ExportFormat = "xlsx"
	ExportCSV  ExportFormat = "csv"
)

func (f ExportFormat) ContentType() string {
	switch f {
	case ExportXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ExportCSV:
		return "text/csv"
	}
	return "application/octet-stream"
}
