package formschema

import "errors"

// Field-level failures. The message text is what a respondent sees next to
// the offending question.
var (
	ErrFieldRequired     = errors.New("field required")
	ErrChooseOption      = errors.New("choose at least one option")
	ErrInvalidEmail      = errors.New("enter a valid email address")
	ErrInvalidPhone      = errors.New("enter a valid phone number")
	ErrNotANumber        = errors.New("enter a number")
	ErrInvalidDate       = errors.New("choose a valid date")
	ErrExpectedText      = errors.New("expected text")
	ErrExpectedBoolean   = errors.New("expected true or false")
	ErrExpectedSelection = errors.New("expected a list of options")

	ErrUnknownField = errors.New("unknown field")
)

var ruleTags = map[error]string{
	ErrFieldRequired:     "required",
	ErrChooseOption:      "min",
	ErrInvalidEmail:      "email",
	ErrInvalidPhone:      "e164",
	ErrNotANumber:        "number",
	ErrInvalidDate:       "date",
	ErrExpectedText:      "string",
	ErrExpectedBoolean:   "boolean",
	ErrExpectedSelection: "array",

	ErrWrongSlot:       "slot",
	ErrUnknownOption:   "oneof",
	ErrSingleSelection: "len",
	ErrDuplicateAnswer: "unique",
}

// ruleTag names the check that produced err, for ValidationError.Rule.
func ruleTag(err error) string {
	for sentinel, tag := range ruleTags {
		if errors.Is(err, sentinel) {
			return tag
		}
	}
	return ""
}
