package validator

import (
	"reflect"
	"strings"
	"sync"

	apperrors "github.com/formify/form-service/internal/errors"
	"github.com/formify/form-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator is the main validator instance that combines all validation types
type Validator struct {
	structValidator     *validator.Validate
	definitionValidator *DefinitionValidator
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
)

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:     structValidator,
		definitionValidator: NewDefinitionValidator(),
	}
}

// Default returns a process-wide validator. validator.Validate caches struct
// metadata and is safe for concurrent use, so one instance is shared.
func Default() *Validator {
	defaultOnce.Do(func() {
		defaultValidator = New()
	})
	return defaultValidator
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate performs struct validation and converts failures into
// ValidationErrors.
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Definition returns the form definition validator
func (v *Validator) Definition() *DefinitionValidator {
	return v.definitionValidator
}

// IsEmail reports whether s matches the email grammar.
func (v *Validator) IsEmail(s string) bool {
	return v.structValidator.Var(s, "required,email") == nil
}

// IsPhone reports whether s is an E.164 phone number (+ and up to 15 digits).
func (v *Validator) IsPhone(s string) bool {
	return v.structValidator.Var(s, "required,e164") == nil
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("form_access", validateFormAccess)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	return models.QuestionType(fl.Field().String()).Valid()
}

func validateFormAccess(fl validator.FieldLevel) bool {
	return models.FormAccess(fl.Field().String()).Valid()
}
