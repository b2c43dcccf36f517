package formschema

import "github.com/formify/form-service/internal/models"

// FormState holds the respondent's current values keyed by question id.
type FormState map[string]any

// BuildDefaults builds the initial state using the default registry.
func BuildDefaults(questions []models.Question) FormState {
	return Default().BuildDefaults(questions)
}

// BuildDefaults returns a fresh state with every question set to its type's
// default. Number questions are present with a nil value.
func (r *Registry) BuildDefaults(questions []models.Question) FormState {
	state := make(FormState, len(questions))
	for _, q := range questions {
		state[q.ID] = r.DefaultValueFor(q.Type)
	}
	return state
}

// Clone copies the state, including any selection slices, so the copy can
// be handed out without sharing mutable values.
func (s FormState) Clone() FormState {
	if s == nil {
		return nil
	}
	out := make(FormState, len(s))
	for k, v := range s {
		switch x := v.(type) {
		case []string:
			c := make([]string, len(x))
			copy(c, x)
			out[k] = c
		case []any:
			c := make([]any, len(x))
			copy(c, x)
			out[k] = c
		default:
			out[k] = v
		}
	}
	return out
}
