package validator

import (
	"fmt"
	"strings"

	"github.com/formify/form-service/internal/errors"
	"github.com/formify/form-service/internal/models"
)

// DefinitionValidator checks the structure of a form definition before it is
// stored: question text, known types, and options only on choice questions.
type DefinitionValidator struct{}

// NewDefinitionValidator creates a new definition validator
func NewDefinitionValidator() *DefinitionValidator {
	return &DefinitionValidator{}
}

// ValidateForm validates a complete form definition and reports every
// problem found, keyed by a dotted path such as "questions[2].options".
func (v *DefinitionValidator) ValidateForm(form *models.Form) errors.ValidationErrors {
	var errs errors.ValidationErrors
	if form == nil {
		return append(errs, *errors.NewValidationError("form", "cannot be nil", nil))
	}

	if strings.TrimSpace(form.Title) == "" {
		errs = append(errs, *errors.NewValidationErrorWithRule("title", "cannot be empty", "required", form.Title))
	}
	if form.Access != "" && !form.Access.Valid() {
		errs = append(errs, *errors.NewValidationErrorWithRule("access", "must be an access level (PRIVATE, BY_LINK, PUBLIC)", "form_access", form.Access))
	}

	questionIDs := make(map[string]bool, len(form.Questions))
	for i := range form.Questions {
		question := &form.Questions[i]
		prefix := fmt.Sprintf("questions[%d]", i)

		if question.ID != "" {
			if questionIDs[question.ID] {
				errs = append(errs, *errors.NewValidationErrorWithRule(prefix+".id", "duplicate question id", "unique", question.ID))
			}
			questionIDs[question.ID] = true
		}

		errs = append(errs, v.ValidateQuestion(prefix, question)...)
	}

	return errs
}

// ValidateQuestion validates a single question definition
func (v *DefinitionValidator) ValidateQuestion(prefix string, question *models.Question) errors.ValidationErrors {
	var errs errors.ValidationErrors

	if strings.TrimSpace(question.Text) == "" {
		errs = append(errs, *errors.NewValidationErrorWithRule(prefix+".text", "cannot be empty", "required", question.Text))
	}

	if !question.Type.Valid() {
		errs = append(errs, *errors.NewValidationErrorWithRule(prefix+".type", fmt.Sprintf("unsupported question type: %s", question.Type), "question_type", question.Type))
		return errs
	}

	isChoice := question.Type == models.QuestionTypeSingleChoice || question.Type == models.QuestionTypeMultipleChoice
	switch {
	case isChoice && len(question.Options) == 0:
		errs = append(errs, *errors.NewValidationErrorWithRule(prefix+".options", "must have at least 1 option", "min", len(question.Options)))
	case !isChoice && len(question.Options) > 0:
		errs = append(errs, *errors.NewValidationErrorWithRule(prefix+".options", fmt.Sprintf("options are not allowed for %s questions", question.Type), "excluded", len(question.Options)))
	}

	optionIDs := make(map[string]bool, len(question.Options))
	for j, option := range question.Options {
		optPrefix := fmt.Sprintf("%s.options[%d]", prefix, j)
		if strings.TrimSpace(option.Text) == "" {
			errs = append(errs, *errors.NewValidationErrorWithRule(optPrefix+".text", "cannot be empty", "required", option.Text))
		}
		if option.ID == "" {
			continue
		}
		if optionIDs[option.ID] {
			errs = append(errs, *errors.NewValidationErrorWithRule(optPrefix+".id", "duplicate option id", "unique", option.ID))
		}
		optionIDs[option.ID] = true
	}

	return errs
}
