package formschema

import (
	"math"
	"testing"

	"github.com/formify/form-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func choiceQuestion(id string, t models.QuestionType, required bool, order int, optionIDs ...string) models.Question {
	q := question(id, t, required, order)
	for i, optID := range optionIDs {
		q.Options = append(q.Options, models.Option{ID: optID, Text: "Option " + optID, Order: i})
	}
	return q
}

func TestRegistry_SlotFor(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, SlotText, r.SlotFor(models.QuestionTypeEmail))
	assert.Equal(t, SlotNumber, r.SlotFor(models.QuestionTypeNumber))
	assert.Equal(t, SlotBool, r.SlotFor(models.QuestionTypeBoolean))
	assert.Equal(t, SlotDate, r.SlotFor(models.QuestionTypeDate))
	assert.Equal(t, SlotOptions, r.SlotFor(models.QuestionTypeSingleChoice))
	assert.Equal(t, SlotNone, r.SlotFor("SIGNATURE"))
}

func TestRegistry_CheckAnswer(t *testing.T) {
	r := NewRegistry()
	one := choiceQuestion("one", models.QuestionTypeSingleChoice, true, 0, "a", "b")
	many := choiceQuestion("many", models.QuestionTypeMultipleChoice, true, 1, "a", "b")
	mail := question("mail", models.QuestionTypeEmail, false, 2)
	num := question("num", models.QuestionTypeNumber, true, 3)

	tests := []struct {
		name     string
		question models.Question
		answer   AnswerInput
		wantErr  error
	}{
		{"single choice ok", one, OptionsAnswer("one", "a"), nil},
		{"single choice two ids", one, OptionsAnswer("one", "a", "b"), ErrSingleSelection},
		{"single choice foreign id", one, OptionsAnswer("one", "z"), ErrUnknownOption},
		{"multiple choice ok", many, OptionsAnswer("many", "a", "b"), nil},
		{"multiple choice required empty", many, OptionsAnswer("many"), ErrChooseOption},
		{"wrong slot", many, TextAnswer("many", "a"), ErrWrongSlot},
		{"two slots", mail, AnswerInput{QuestionID: "mail", TextValue: ptr("x"), BoolValue: ptr(true)}, ErrWrongSlot},
		{"email optional empty", mail, TextAnswer("mail", ""), nil},
		{"email malformed", mail, TextAnswer("mail", "nope"), ErrInvalidEmail},
		{"number ok", num, NumberAnswer("num", 4), nil},
		{"number NaN", num, NumberAnswer("num", math.NaN()), ErrNotANumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.CheckAnswer(&tt.question, tt.answer)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegistry_CheckAnswers(t *testing.T) {
	r := NewRegistry()
	questions := []models.Question{
		question("name", models.QuestionTypeShortText, true, 0),
		question("age", models.QuestionTypeNumber, true, 1),
		question("note", models.QuestionTypeParagraph, false, 2),
	}

	errs := r.CheckAnswers(questions, []AnswerInput{
		TextAnswer("name", "Ann"),
		TextAnswer("name", "Bob"),
		TextAnswer("ghost", "boo"),
	})

	require.Len(t, errs, 3)
	byField := errs.ByField()
	assert.Equal(t, ErrDuplicateAnswer.Error(), byField["name"])
	assert.Equal(t, ErrUnknownField.Error(), byField["answers[2].questionId"])
	assert.Equal(t, ErrFieldRequired.Error(), byField["age"])

	assert.Empty(t, r.CheckAnswers(questions, []AnswerInput{
		TextAnswer("name", "Ann"),
		NumberAnswer("age", 31),
	}))
}

func ptr[T any](v T) *T { return &v }
