package formschema

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/formify/form-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRegistry_HasOptions(t *testing.T) {
	r := NewRegistry()
	for _, qt := range models.QuestionTypes {
		want := qt == models.QuestionTypeSingleChoice || qt == models.QuestionTypeMultipleChoice
		assert.Equal(t, want, r.HasOptions(qt), string(qt))
		assert.True(t, r.Known(qt), string(qt))
	}
	assert.False(t, r.HasOptions("RATING"))
	assert.False(t, r.Known("RATING"))
}

func TestRegistry_DefaultValueFor(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, false, r.DefaultValueFor(models.QuestionTypeBoolean))
	assert.Equal(t, []string{}, r.DefaultValueFor(models.QuestionTypeMultipleChoice))
	assert.Nil(t, r.DefaultValueFor(models.QuestionTypeNumber))
	for _, qt := range []models.QuestionType{
		models.QuestionTypeShortText,
		models.QuestionTypeParagraph,
		models.QuestionTypeEmail,
		models.QuestionTypePhone,
		models.QuestionTypeSingleChoice,
		models.QuestionTypeDate,
	} {
		assert.Equal(t, "", r.DefaultValueFor(qt), string(qt))
	}
}

func TestRegistry_DefaultsPassOptionalRules(t *testing.T) {
	r := NewRegistry()
	for _, qt := range models.QuestionTypes {
		rule := r.RuleFor(qt, false)
		assert.NoError(t, rule.Check(r.DefaultValueFor(qt)), string(qt))
	}
}

func TestRegistry_UnknownTypeLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := NewRegistry(WithLogger(logger))

	var rule Rule
	assert.NotPanics(t, func() {
		rule = r.RuleFor("RATING", false)
	})

	assert.False(t, rule.Known)
	assert.NoError(t, rule.Check(5))
	assert.Nil(t, r.DefaultValueFor("RATING"))
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "RATING")
}

func TestRegistry_DefaultMultipleChoiceIsFresh(t *testing.T) {
	r := NewRegistry()

	first := r.DefaultValueFor(models.QuestionTypeMultipleChoice).([]string)
	first = append(first, "o1")
	second := r.DefaultValueFor(models.QuestionTypeMultipleChoice).([]string)

	assert.Len(t, first, 1)
	assert.Empty(t, second)
}

func TestBuildDefaults(t *testing.T) {
	state := BuildDefaults([]models.Question{
		question("b", models.QuestionTypeBoolean, true, 0),
		question("n", models.QuestionTypeNumber, true, 1),
		question("m", models.QuestionTypeMultipleChoice, false, 2),
		question("t", models.QuestionTypeShortText, false, 3),
	})

	assert.Len(t, state, 4)
	assert.Equal(t, false, state["b"])
	value, present := state["n"]
	assert.True(t, present)
	assert.Nil(t, value)
	assert.Equal(t, []string{}, state["m"])
	assert.Equal(t, "", state["t"])

	assert.Empty(t, BuildDefaults(nil))
}

func TestFormState_Clone(t *testing.T) {
	state := FormState{"m": []string{"o1"}, "t": "x"}

	clone := state.Clone()
	clone["m"].([]string)[0] = "o2"
	clone["t"] = "y"

	assert.Equal(t, "o1", state["m"].([]string)[0])
	assert.Equal(t, "x", state["t"])
}
