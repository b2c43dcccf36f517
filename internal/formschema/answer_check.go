package formschema

import (
	"errors"
	"fmt"
	"math"

	apperrors "github.com/formify/form-service/internal/errors"
	"github.com/formify/form-service/internal/models"
)

var (
	ErrWrongSlot       = errors.New("answer value does not match question type")
	ErrUnknownOption   = errors.New("unknown option")
	ErrSingleSelection = errors.New("choose exactly one option")
	ErrDuplicateAnswer = errors.New("question answered more than once")
)

// CheckAnswers validates already-normalized answers against the questions
// they claim to answer. Errors are keyed by question id; answers that name
// no question are reported as answers[i].questionId.
func (r *Registry) CheckAnswers(questions []models.Question, answers []AnswerInput) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors
	byID := make(map[string]*models.Question, len(questions))
	for i := range questions {
		if _, dup := byID[questions[i].ID]; !dup {
			byID[questions[i].ID] = &questions[i]
		}
	}

	seen := make(map[string]bool, len(answers))
	for i, answer := range answers {
		q, ok := byID[answer.QuestionID]
		if !ok {
			errs = append(errs, *apperrors.NewValidationErrorWithRule(
				fmt.Sprintf("answers[%d].questionId", i), ErrUnknownField.Error(), "exists", answer.QuestionID))
			continue
		}
		if seen[q.ID] {
			errs = append(errs, fieldError(q.ID, ErrDuplicateAnswer, answer.QuestionID))
			continue
		}
		seen[q.ID] = true

		if err := r.CheckAnswer(q, answer); err != nil {
			errs = append(errs, fieldError(q.ID, err, answer))
		}
	}

	for _, q := range models.SortedQuestions(questions) {
		if q.Required && !seen[q.ID] {
			errs = append(errs, fieldError(q.ID, ErrFieldRequired, nil))
			seen[q.ID] = true
		}
	}
	return errs
}

// CheckAnswer validates one answer for q: the populated slot must match the
// question type, selections must reference the question's options, and the
// value must pass the same rule the schema applies to raw input.
func (r *Registry) CheckAnswer(q *models.Question, answer AnswerInput) error {
	qk, ok := r.kinds[q.Type]
	if !ok {
		return nil
	}
	if answer.SlotCount() != 1 || answer.Slot() != qk.slot {
		return ErrWrongSlot
	}

	var value any
	switch qk.slot {
	case SlotText:
		value = *answer.TextValue
	case SlotBool:
		value = *answer.BoolValue
	case SlotNumber:
		n := *answer.NumberValue
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return ErrNotANumber
		}
		value = n
	case SlotDate:
		value = *answer.DateValue
	case SlotOptions:
		for _, id := range answer.OptionIDs {
			if !q.HasOption(id) {
				return ErrUnknownOption
			}
		}
		if q.Type == models.QuestionTypeSingleChoice {
			if len(answer.OptionIDs) != 1 {
				return ErrSingleSelection
			}
			value = answer.OptionIDs[0]
		} else {
			value = answer.OptionIDs
		}
	}

	return qk.check(q.Required)(value)
}

func fieldError(field string, err error, value any) apperrors.ValidationError {
	return *apperrors.NewValidationErrorWithRule(field, err.Error(), ruleTag(err), value)
}
