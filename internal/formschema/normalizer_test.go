package formschema

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/formify/form-service/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAnswers_SlotPerType(t *testing.T) {
	questions := []models.Question{
		question("text", models.QuestionTypeShortText, false, 0),
		question("para", models.QuestionTypeParagraph, false, 1),
		question("mail", models.QuestionTypeEmail, false, 2),
		question("tel", models.QuestionTypePhone, false, 3),
		question("num", models.QuestionTypeNumber, false, 4),
		question("flag", models.QuestionTypeBoolean, false, 5),
		question("day", models.QuestionTypeDate, false, 6),
		question("one", models.QuestionTypeSingleChoice, false, 7),
		question("many", models.QuestionTypeMultipleChoice, false, 8),
	}
	state := FormState{
		"text": "hello",
		"para": "",
		"mail": "ann@example.com",
		"tel":  "+14155552671",
		"num":  "3.5",
		"flag": false,
		"day":  "2024-05-01",
		"one":  "o1",
		"many": []any{"o2", "o3"},
	}

	got := NormalizeAnswers(state, questions)

	want := []AnswerInput{
		TextAnswer("text", "hello"),
		TextAnswer("para", ""),
		TextAnswer("mail", "ann@example.com"),
		TextAnswer("tel", "+14155552671"),
		NumberAnswer("num", 3.5),
		BoolAnswer("flag", false),
		DateAnswer("day", "2024-05-01"),
		OptionsAnswer("one", "o1"),
		OptionsAnswer("many", "o2", "o3"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NormalizeAnswers() mismatch (-want +got):\n%s", diff)
	}
	for _, a := range got {
		assert.Equal(t, 1, a.SlotCount(), a.QuestionID)
	}
}

func TestNormalizeAnswers_OrderAndDroppedKeys(t *testing.T) {
	questions := []models.Question{
		question("b", models.QuestionTypeShortText, false, 2),
		question("a", models.QuestionTypeShortText, false, 1),
	}

	got := NormalizeAnswers(FormState{"a": "1", "b": "2", "ghost": "x"}, questions)

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].QuestionID)
	assert.Equal(t, "b", got[1].QuestionID)
}

func TestNormalizeAnswers_NoValueProducesNoAnswer(t *testing.T) {
	questions := []models.Question{
		question("num", models.QuestionTypeNumber, false, 0),
		question("one", models.QuestionTypeSingleChoice, false, 1),
		question("day", models.QuestionTypeDate, false, 2),
		question("text", models.QuestionTypeShortText, false, 3),
	}

	got := NormalizeAnswers(FormState{"num": nil, "one": "", "day": "", "text": nil}, questions)

	assert.Empty(t, got)
}

func TestNormalizeAnswers_UnparseableNumberIsNaN(t *testing.T) {
	got := NormalizeAnswers(FormState{"n": "abc"}, []models.Question{question("n", models.QuestionTypeNumber, false, 0)})

	require.Len(t, got, 1)
	require.NotNil(t, got[0].NumberValue)
	assert.True(t, math.IsNaN(*got[0].NumberValue))

	_, err := json.Marshal(got)
	assert.Error(t, err)
}

func TestNormalizeAnswers_EmptyMultipleChoice(t *testing.T) {
	got := NormalizeAnswers(FormState{"m": []string{}}, []models.Question{question("m", models.QuestionTypeMultipleChoice, false, 0)})

	require.Len(t, got, 1)
	assert.Equal(t, SlotOptions, got[0].Slot())
	assert.Empty(t, got[0].OptionIDs)

	raw, err := json.Marshal(got[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"questionId":"m","optionIds":[]}`, string(raw))
}

func TestNormalizeAnswers_UnknownTypeDropped(t *testing.T) {
	got := NormalizeAnswers(FormState{"r": 4}, []models.Question{question("r", "RATING", false, 0)})

	assert.Empty(t, got)
}

func TestNormalizeAnswers_DoesNotAliasState(t *testing.T) {
	selection := []string{"o1"}
	got := NormalizeAnswers(FormState{"m": selection}, []models.Question{question("m", models.QuestionTypeMultipleChoice, false, 0)})

	selection[0] = "changed"

	assert.Equal(t, []string{"o1"}, got[0].OptionIDs)
}

func TestAnswerInput_JSON(t *testing.T) {
	tests := []struct {
		name   string
		answer AnswerInput
		want   string
	}{
		{"text", TextAnswer("q1", "hello"), `{"questionId":"q1","textValue":"hello"}`},
		{"bool", BoolAnswer("q1", false), `{"questionId":"q1","boolValue":false}`},
		{"number", NumberAnswer("q1", 0), `{"questionId":"q1","numberValue":0}`},
		{"date", DateAnswer("q1", "2024-01-02"), `{"questionId":"q1","dateValue":"2024-01-02"}`},
		{"options", OptionsAnswer("q1", "a", "b"), `{"questionId":"q1","optionIds":["a","b"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.answer)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(raw))

			var decoded AnswerInput
			require.NoError(t, json.Unmarshal(raw, &decoded))
			assert.Equal(t, tt.answer.Slot(), decoded.Slot())
		})
	}
}
