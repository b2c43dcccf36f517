package formschema

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/formify/form-service/internal/models"
	"github.com/formify/form-service/internal/validator"
)

// questionKind is everything the package knows about one question type. Schema
// building, default values and normalization all read from the same table.
type questionKind struct {
	kind         string
	format       string
	hasOptions   bool
	slot         AnswerSlot
	check        func(required bool) func(any) error
	defaultValue func() any
	normalize    func(questionID string, value any) (AnswerInput, bool)
}

// Registry maps question types to their validation rule, default value and
// answer slot.
type Registry struct {
	kinds  map[models.QuestionType]questionKind
	logger *slog.Logger
}

type RegistryOption func(*registryConfig)

type registryConfig struct {
	logger    *slog.Logger
	validator *validator.Validator
}

// WithLogger sets the logger used for unknown-type and dropped-key
// diagnostics.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(c *registryConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithValidator sets the validator used for email and phone checks.
func WithValidator(v *validator.Validator) RegistryOption {
	return func(c *registryConfig) {
		if v != nil {
			c.validator = v
		}
	}
}

var (
	defaultRegistryOnce sync.Once
	defaultRegistry     *Registry
)

// Default returns a shared registry with a discarding logger.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := registryConfig{
		logger:    slog.New(slog.DiscardHandler),
		validator: validator.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	v := cfg.validator
	text := questionKind{
		kind:         kindString,
		slot:         SlotText,
		check:        textCheck,
		defaultValue: emptyString,
		normalize:    normalizeText,
	}

	kinds := map[models.QuestionType]questionKind{
		models.QuestionTypeShortText: text,
		models.QuestionTypeParagraph: text,
		models.QuestionTypeEmail: {
			kind:   kindString,
			format: "email",
			slot:   SlotText,
			check: func(required bool) func(any) error {
				return formattedTextCheck(required, v.IsEmail, ErrInvalidEmail)
			},
			defaultValue: emptyString,
			normalize:    normalizeText,
		},
		models.QuestionTypePhone: {
			kind:   kindString,
			format: "e164",
			slot:   SlotText,
			check: func(required bool) func(any) error {
				return formattedTextCheck(required, v.IsPhone, ErrInvalidPhone)
			},
			defaultValue: emptyString,
			normalize:    normalizeText,
		},
		models.QuestionTypeNumber: {
			kind:         kindNumber,
			slot:         SlotNumber,
			check:        numberCheck,
			defaultValue: func() any { return nil },
			normalize:    normalizeNumber,
		},
		models.QuestionTypeDate: {
			kind:         kindString,
			format:       "date",
			slot:         SlotDate,
			check:        dateCheck,
			defaultValue: emptyString,
			normalize:    normalizeDate,
		},
		models.QuestionTypeBoolean: {
			kind:         kindBoolean,
			slot:         SlotBool,
			check:        booleanCheck,
			defaultValue: func() any { return false },
			normalize:    normalizeBool,
		},
		models.QuestionTypeSingleChoice: {
			kind:         kindOption,
			hasOptions:   true,
			slot:         SlotOptions,
			check:        textCheck,
			defaultValue: emptyString,
			normalize:    normalizeSingleChoice,
		},
		models.QuestionTypeMultipleChoice: {
			kind:         kindOptions,
			hasOptions:   true,
			slot:         SlotOptions,
			check:        selectionCheck,
			defaultValue: func() any { return []string{} },
			normalize:    normalizeMultipleChoice,
		},
	}

	return &Registry{kinds: kinds, logger: cfg.logger}
}

// Known reports whether t has an entry in the registry.
func (r *Registry) Known(t models.QuestionType) bool {
	_, ok := r.kinds[t]
	return ok
}

// HasOptions is true only for the choice types.
func (r *Registry) HasOptions(t models.QuestionType) bool {
	return r.kinds[t].hasOptions
}

// RuleFor returns the validation rule for a question type. An unknown type
// gets a permissive rule and a warning, never an error.
func (r *Registry) RuleFor(t models.QuestionType, required bool) Rule {
	qk, ok := r.kinds[t]
	if !ok {
		r.logger.Warn("unknown question type, using permissive rule", "type", string(t), "required", required)
		return Rule{Type: t, Required: required, kind: kindAny, check: permissiveCheck(required)}
	}
	return Rule{
		Type:     t,
		Required: required,
		Known:    true,
		kind:     qk.kind,
		format:   qk.format,
		check:    qk.check(required),
	}
}

// DefaultValueFor returns a fresh default value for a question type. Each
// call returns a new value so callers may mutate it.
func (r *Registry) DefaultValueFor(t models.QuestionType) any {
	qk, ok := r.kinds[t]
	if !ok {
		r.logger.Warn("unknown question type, defaulting to no value", "type", string(t))
		return nil
	}
	return qk.defaultValue()
}

// SlotFor returns the answer slot used by t, or SlotNone for unknown types.
func (r *Registry) SlotFor(t models.QuestionType) AnswerSlot {
	return r.kinds[t].slot
}

// Normalize converts one raw value into an answer for the question type.
// It returns false when the value carries nothing to submit.
func (r *Registry) Normalize(questionID string, t models.QuestionType, value any) (AnswerInput, bool) {
	qk, ok := r.kinds[t]
	if !ok {
		r.logger.Warn("unknown question type, answer dropped", "question_id", questionID, "type", string(t))
		return AnswerInput{}, false
	}
	return qk.normalize(questionID, value)
}

func emptyString() any { return "" }

func normalizeText(questionID string, value any) (AnswerInput, bool) {
	switch x := value.(type) {
	case nil:
		return AnswerInput{}, false
	case string:
		return TextAnswer(questionID, x), true
	default:
		return TextAnswer(questionID, fmt.Sprint(x)), true
	}
}

// normalizeNumber never fails: text that does not parse becomes NaN.
func normalizeNumber(questionID string, value any) (AnswerInput, bool) {
	n, set, ok := coerceNumber(value)
	if !set {
		return AnswerInput{}, false
	}
	if !ok {
		n = math.NaN()
	}
	return NumberAnswer(questionID, n), true
}

func normalizeBool(questionID string, value any) (AnswerInput, bool) {
	b, ok := value.(bool)
	if !ok {
		return AnswerInput{}, false
	}
	return BoolAnswer(questionID, b), true
}

func normalizeDate(questionID string, value any) (AnswerInput, bool) {
	switch x := value.(type) {
	case string:
		if x == "" {
			return AnswerInput{}, false
		}
		return DateAnswer(questionID, x), true
	case time.Time:
		if x.IsZero() {
			return AnswerInput{}, false
		}
		return DateAnswer(questionID, x.Format(time.RFC3339)), true
	}
	return AnswerInput{}, false
}

func normalizeSingleChoice(questionID string, value any) (AnswerInput, bool) {
	id, ok := value.(string)
	if !ok || id == "" {
		return AnswerInput{}, false
	}
	return OptionsAnswer(questionID, id), true
}

func normalizeMultipleChoice(questionID string, value any) (AnswerInput, bool) {
	ids, ok := stringSlice(value)
	if !ok {
		return AnswerInput{}, false
	}
	return OptionsAnswer(questionID, ids...), true
}
