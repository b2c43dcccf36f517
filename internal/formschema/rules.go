package formschema

import (
	"math"
	"time"

	"github.com/formify/form-service/internal/models"
)

// Rule is the validation rule for one question. The zero Rule accepts
// anything.
type Rule struct {
	Type     models.QuestionType
	Required bool
	// Known is false when Type is not a recognized question type and the
	// rule fell back to the permissive check.
	Known bool

	kind   string
	format string
	check  func(value any) error
}

// Check validates a single field value.
func (r Rule) Check(value any) error {
	if r.check == nil {
		return nil
	}
	return r.check(value)
}

// RuleDescriptor is the serializable shape of a Rule, handed to API clients
// so they can render inline checks without running this package.
type RuleDescriptor struct {
	QuestionID string              `json:"questionId"`
	Type       models.QuestionType `json:"type"`
	Kind       string              `json:"kind"`
	Format     string              `json:"format,omitempty"`
	Required   bool                `json:"required"`
	Nullable   bool                `json:"nullable"`
	MinLength  int                 `json:"minLength,omitempty"`
	Message    string              `json:"message,omitempty"`
}

func (r Rule) describe(questionID string) RuleDescriptor {
	d := RuleDescriptor{
		QuestionID: questionID,
		Type:       r.Type,
		Kind:       r.kind,
		Format:     r.format,
		Required:   r.Required,
		Nullable:   !r.Required,
	}
	if !r.Required {
		return d
	}
	switch r.kind {
	case kindString, kindOption:
		d.MinLength = 1
		d.Message = ErrFieldRequired.Error()
	case kindOptions:
		d.MinLength = 1
		d.Message = ErrChooseOption.Error()
	case kindBoolean:
	default:
		d.Message = ErrFieldRequired.Error()
	}
	return d
}

// Value kinds reported in RuleDescriptor.Kind.
const (
	KindString  = "string"
	KindNumber  = "number"
	KindBoolean = "boolean"
	KindOption  = "option"
	KindOptions = "options"
	KindAny     = "any"
)

const (
	kindString  = KindString
	kindNumber  = KindNumber
	kindBoolean = KindBoolean
	kindOption  = KindOption
	kindOptions = KindOptions
	kindAny     = KindAny
)

// optional wraps a base check so that a missing value passes.
func optional(check func(any) error) func(any) error {
	return func(v any) error {
		if v == nil {
			return nil
		}
		return check(v)
	}
}

func textCheck(required bool) func(any) error {
	return func(v any) error {
		if v == nil {
			if required {
				return ErrFieldRequired
			}
			return nil
		}
		s, ok := v.(string)
		if !ok {
			return ErrExpectedText
		}
		if required && len(s) < 1 {
			return ErrFieldRequired
		}
		return nil
	}
}

// formattedTextCheck covers email and phone: blank is allowed unless
// required, anything else must satisfy valid.
func formattedTextCheck(required bool, valid func(string) bool, invalid error) func(any) error {
	return func(v any) error {
		if v == nil {
			if required {
				return ErrFieldRequired
			}
			return nil
		}
		s, ok := v.(string)
		if !ok {
			return ErrExpectedText
		}
		if s == "" {
			if required {
				return ErrFieldRequired
			}
			return nil
		}
		if !valid(s) {
			return invalid
		}
		return nil
	}
}

func numberCheck(required bool) func(any) error {
	return func(v any) error {
		n, set, ok := coerceNumber(v)
		if !ok {
			return ErrNotANumber
		}
		if !set {
			if required {
				return ErrFieldRequired
			}
			return nil
		}
		// infinities parse but cannot be stored or sent as JSON
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return ErrNotANumber
		}
		return nil
	}
}

func dateCheck(required bool) func(any) error {
	return func(v any) error {
		if isBlank(v) {
			if required {
				return ErrFieldRequired
			}
			return nil
		}
		switch x := v.(type) {
		case string:
			if _, ok := ParseDate(x); !ok {
				return ErrInvalidDate
			}
		case time.Time:
			if x.IsZero() {
				return ErrInvalidDate
			}
		default:
			return ErrInvalidDate
		}
		return nil
	}
}

func booleanCheck(required bool) func(any) error {
	check := func(v any) error {
		if v == nil {
			return ErrFieldRequired
		}
		if _, ok := v.(bool); !ok {
			return ErrExpectedBoolean
		}
		return nil
	}
	if required {
		return check
	}
	return optional(check)
}

func selectionCheck(required bool) func(any) error {
	return func(v any) error {
		if v == nil {
			if required {
				return ErrFieldRequired
			}
			return nil
		}
		ids, ok := stringSlice(v)
		if !ok {
			return ErrExpectedSelection
		}
		if required && len(ids) < 1 {
			return ErrChooseOption
		}
		return nil
	}
}

// permissiveCheck is used for question types this build does not know.
func permissiveCheck(required bool) func(any) error {
	return func(v any) error {
		if required && isBlank(v) {
			return ErrFieldRequired
		}
		return nil
	}
}
