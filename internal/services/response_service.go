package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/formify/form-service/internal/events"
	"github.com/formify/form-service/internal/formschema"
	"github.com/formify/form-service/internal/models"
	"github.com/formify/form-service/internal/repositories"
	"github.com/formify/form-service/internal/submission"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/xuri/excelize/v2"
)

const exportSheetName = "Responses"

type responseService struct {
	forms     FormService
	repo      repositories.ResponseRepository
	publisher events.EventPublisher
	registry  *formschema.Registry
	sanitizer *bluemonday.Policy
	logger    *slog.Logger
	opLogger  *ServiceLogger
	now       func() time.Time
}

type ResponseServiceConfig struct {
	Publisher events.EventPublisher // optional
	Registry  *formschema.Registry
	Logger    *slog.Logger
}

func NewResponseService(forms FormService, repo repositories.ResponseRepository, cfg ResponseServiceConfig) ResponseService {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Registry == nil {
		cfg.Registry = formschema.NewRegistry(formschema.WithLogger(cfg.Logger))
	}
	return &responseService{
		forms:     forms,
		repo:      repo,
		publisher: cfg.Publisher,
		registry:  cfg.Registry,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    cfg.Logger,
		opLogger:  NewServiceLogger(cfg.Logger, LogConfig{Service: "form-service", Component: "responses"}),
		now:       time.Now,
	}
}

// ===== SUBMISSION =====

func (s *responseService) Submit(ctx context.Context, session models.Session, formID string, req *SubmitResponseRequest) (result *submission.SubmitResult, err error) {
	op := s.opLogger.WithOperation(ctx, "submit_response", session.UserID)
	defer func() {
		id := formID
		if result != nil {
			id = result.ResponseID
		}
		op.LogResult(id, "response", err)
	}()

	if req == nil {
		return nil, fmt.Errorf("%w: empty submission", ErrBadRequest)
	}

	form, err := s.forms.Get(ctx, session, formID)
	if err != nil {
		return nil, err
	}

	answers := req.Answers
	if len(answers) == 0 && req.Values != nil {
		if errs := s.registry.BuildSchema(form.Questions).Validate(req.Values); len(errs) > 0 {
			s.publishFailure(ctx, formID, 0, errs)
			return nil, errs
		}
		answers = s.registry.NormalizeAnswers(req.Values, form.Questions)
	}
	// no answers is a valid response when nothing is required
	if errs := s.registry.CheckAnswers(form.Questions, answers); len(errs) > 0 {
		s.publishFailure(ctx, formID, len(answers), errs)
		return nil, errs
	}

	response := s.buildResponse(form.ID, session, answers)
	if err := s.repo.Create(ctx, response); err != nil {
		s.publishFailure(ctx, formID, len(answers), err)
		return nil, fmt.Errorf("failed to store response: %w", err)
	}

	s.publish(ctx, events.NewEvent(events.EventResponseSubmitted, events.ResponseSubmittedEvent{
		FormID:       form.ID,
		ResponseID:   response.ID,
		RespondentID: session.UserID,
		AnswerCount:  len(response.Answers),
		SubmittedAt:  response.CreatedAt,
	}))

	return &submission.SubmitResult{ResponseID: response.ID, CreatedAt: response.CreatedAt}, nil
}

// buildResponse converts checked answers into storage rows. Dates were
// already checked, so a parse failure here cannot happen.
func (s *responseService) buildResponse(formID string, session models.Session, answers []formschema.AnswerInput) *models.FormResponse {
	response := &models.FormResponse{
		ID:        uuid.NewString(),
		FormID:    formID,
		CreatedAt: s.now().UTC(),
		Answers:   make([]models.Answer, 0, len(answers)),
	}
	if session.Authenticated() {
		respondent := session.UserID
		response.RespondentID = &respondent
	}

	for _, a := range answers {
		row := models.Answer{
			ID:          uuid.NewString(),
			ResponseID:  response.ID,
			QuestionID:  a.QuestionID,
			TextValue:   a.TextValue,
			BoolValue:   a.BoolValue,
			NumberValue: a.NumberValue,
		}
		if a.DateValue != nil {
			if t, ok := formschema.ParseDate(*a.DateValue); ok {
				row.DateValue = &t
			}
		}
		if a.OptionIDs != nil {
			row.SetOptionIDs(a.OptionIDs)
		}
		response.Answers = append(response.Answers, row)
	}
	return response
}

// ===== READ OPERATIONS =====

func (s *responseService) List(ctx context.Context, session models.Session, formID string, filters repositories.ResponseFilters) (*ResponseListResponse, error) {
	if _, err := s.ownedForm(ctx, session, formID); err != nil {
		return nil, err
	}
	if filters.Limit <= 0 || filters.Limit > 500 {
		filters.Limit = 50
	}

	responses, total, err := s.repo.ListByForm(ctx, formID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	return &ResponseListResponse{Responses: responses, Total: total, Limit: filters.Limit, Offset: filters.Offset}, nil
}

func (s *responseService) BuildTable(ctx context.Context, session models.Session, formID string) (*ResponseTable, error) {
	form, err := s.ownedForm(ctx, session, formID)
	if err != nil {
		return nil, err
	}
	responses, _, err := s.repo.ListByForm(ctx, formID, repositories.ResponseFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	return s.table(form, responses), nil
}

// table lays responses out one column per question in display order.
// Every cell is rendered as plain text with markup stripped.
func (s *responseService) table(form *models.Form, responses []*models.FormResponse) *ResponseTable {
	questions := models.SortedQuestions(form.Questions)
	out := &ResponseTable{
		FormID:  form.ID,
		Title:   s.sanitizer.Sanitize(form.Title),
		Columns: make([]TableColumn, len(questions)),
		Rows:    make([]TableRow, 0, len(responses)),
	}
	for i, q := range questions {
		out.Columns[i] = TableColumn{QuestionID: q.ID, Title: s.sanitizer.Sanitize(q.Text), Type: q.Type}
	}

	for _, resp := range responses {
		byQuestion := make(map[string]*models.Answer, len(resp.Answers))
		for i := range resp.Answers {
			byQuestion[resp.Answers[i].QuestionID] = &resp.Answers[i]
		}
		row := TableRow{ResponseID: resp.ID, SubmittedAt: resp.CreatedAt, Cells: make([]string, len(questions))}
		for i := range questions {
			if a, ok := byQuestion[questions[i].ID]; ok {
				row.Cells[i] = s.sanitizer.Sanitize(formatCell(&questions[i], a))
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func formatCell(q *models.Question, a *models.Answer) string {
	switch {
	case a.TextValue != nil:
		return *a.TextValue
	case a.BoolValue != nil:
		if *a.BoolValue {
			return "Yes"
		}
		return "No"
	case a.NumberValue != nil:
		return strconv.FormatFloat(*a.NumberValue, 'f', -1, 64)
	case a.DateValue != nil:
		return a.DateValue.Format("2006-01-02")
	}

	ids := a.SelectedOptionIDs()
	labels := make([]string, 0, len(ids))
	for _, id := range ids {
		label := id
		for _, opt := range q.Options {
			if opt.ID == id {
				label = opt.Text
				break
			}
		}
		labels = append(labels, label)
	}
	return strings.Join(labels, ", ")
}

// ===== EXPORT =====

func (s *responseService) Export(ctx context.Context, session models.Session, formID string, format ExportFormat, w io.Writer) (err error) {
	op := s.opLogger.WithOperation(ctx, "export_responses", session.UserID)
	defer func() { op.LogResult(formID, "form", err) }()

	if format != ExportXLSX && format != ExportCSV {
		return fmt.Errorf("%w: %q", ErrUnsupportedExportType, format)
	}
	table, err := s.BuildTable(ctx, session, formID)
	if err != nil {
		return err
	}

	switch format {
	case ExportXLSX:
		return writeXLSX(table, w)
	default:
		return writeCSV(table, w)
	}
}

func tableRecords(table *ResponseTable) [][]string {
	header := make([]string, 0, len(table.Columns)+2)
	header = append(header, "Response ID", "Submitted At")
	for _, col := range table.Columns {
		header = append(header, col.Title)
	}

	records := [][]string{header}
	for _, row := range table.Rows {
		record := make([]string, 0, len(row.Cells)+2)
		record = append(record, row.ResponseID, row.SubmittedAt.UTC().Format(time.RFC3339))
		record = append(record, row.Cells...)
		records = append(records, record)
	}
	return records
}

func writeCSV(table *ResponseTable, w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(tableRecords(table)); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

func writeXLSX(table *ResponseTable, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	for r, record := range tableRecords(table) {
		for c, value := range record {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("failed to address cell: %w", err)
			}
			if err := f.SetCellValue(exportSheetName, cell, value); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ===== HELPERS =====

func (s *responseService) ownedForm(ctx context.Context, session models.Session, formID string) (*models.Form, error) {
	if !session.Authenticated() {
		return nil, ErrUnauthorized
	}
	form, err := s.forms.Get(ctx, session, formID)
	if err != nil {
		return nil, err
	}
	if !session.Owns(form) {
		return nil, fmt.Errorf("%w: %w", ErrFormNotOwned, NewPermissionError(session.UserID, formID, "responses", "read", "not owner"))
	}
	return form, nil
}

func (s *responseService) publishFailure(ctx context.Context, formID string, answerCount int, cause error) {
	s.publish(ctx, events.NewEvent(events.EventResponseFailed, events.ResponseFailedEvent{
		FormID:      formID,
		AnswerCount: answerCount,
		Error:       cause.Error(),
	}))
}

func (s *responseService) publish(ctx context.Context, event *events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish event", "event_type", event.Type, "error", err)
	}
}
