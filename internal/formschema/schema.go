package formschema

import (
	"fmt"

	apperrors "github.com/formify/form-service/internal/errors"
	"github.com/formify/form-service/internal/models"
)

// Schema is the composite validation schema for a form: one rule per
// question id, kept in question order.
type Schema struct {
	order []string
	rules map[string]Rule
}

// BuildSchema builds a schema using the default registry.
func BuildSchema(questions []models.Question) *Schema {
	return Default().BuildSchema(questions)
}

// BuildSchema produces one rule per question id. A repeated id keeps its
// first position and the last question's rule.
func (r *Registry) BuildSchema(questions []models.Question) *Schema {
	s := &Schema{
		order: make([]string, 0, len(questions)),
		rules: make(map[string]Rule, len(questions)),
	}
	for _, q := range questions {
		if _, seen := s.rules[q.ID]; !seen {
			s.order = append(s.order, q.ID)
		}
		s.rules[q.ID] = r.RuleFor(q.Type, q.Required)
	}
	return s
}

// Len returns the number of fields in the schema.
func (s *Schema) Len() int {
	return len(s.order)
}

// Fields returns the question ids in question order.
func (s *Schema) Fields() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Schema) Rule(questionID string) (Rule, bool) {
	rule, ok := s.rules[questionID]
	return rule, ok
}

// ValidateField checks a single value against its question's rule.
func (s *Schema) ValidateField(questionID string, value any) error {
	rule, ok := s.rules[questionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, questionID)
	}
	return rule.Check(value)
}

// Validate checks every field of the schema against state. Fields missing
// from state are treated as unset; keys that are not in the schema are
// ignored. The result is empty when state is valid.
func (s *Schema) Validate(state FormState) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors
	for _, id := range s.order {
		value := state[id]
		if err := s.rules[id].Check(value); err != nil {
			errs = append(errs, *apperrors.NewValidationErrorWithRule(id, err.Error(), ruleTag(err), value))
		}
	}
	return errs
}

// Describe returns the rule descriptors in question order.
func (s *Schema) Describe() []RuleDescriptor {
	out := make([]RuleDescriptor, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.rules[id].describe(id))
	}
	return out
}
