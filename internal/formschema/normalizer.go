package formschema

import "github.com/formify/form-service/internal/models"

// NormalizeAnswers normalizes state using the default registry.
func NormalizeAnswers(state FormState, questions []models.Question) []AnswerInput {
	return Default().NormalizeAnswers(state, questions)
}

// NormalizeAnswers turns raw state into typed answers, one per answered
// question in display order. Keys without a matching question are dropped.
// It performs no validation: unparseable number text becomes NaN.
func (r *Registry) NormalizeAnswers(state FormState, questions []models.Question) []AnswerInput {
	ordered := models.SortedQuestions(questions)
	known := make(map[string]bool, len(ordered))
	answers := make([]AnswerInput, 0, len(state))

	for _, q := range ordered {
		if known[q.ID] {
			continue
		}
		known[q.ID] = true

		value, ok := state[q.ID]
		if !ok {
			continue
		}
		if answer, ok := r.Normalize(q.ID, q.Type, value); ok {
			answers = append(answers, answer)
		}
	}

	for id := range state {
		if !known[id] {
			r.logger.Debug("dropping value for unknown question", "question_id", id)
		}
	}

	return answers
}
