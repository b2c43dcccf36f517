package formschema

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"github.com/cucumber/godog"
	"github.com/formify/form-service/internal/models"
	"github.com/stretchr/testify/assert"
)

// TestAnswerScenarios runs the form answer feature scenarios.
func TestAnswerScenarios(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "form-answers",
		ScenarioInitializer: initializeAnswerScenario,
		Options: &godog.Options{
			Format:   "progress",
			Paths:    []string{filepath.Join("testdata", "features")},
			Output:   io.Discard,
			Strict:   true,
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

type answerScenarioState struct {
	questions []models.Question
	state     FormState
}

func initializeAnswerScenario(ctx *godog.ScenarioContext) {
	s := &answerScenarioState{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		s.questions = nil
		s.state = FormState{}
		return ctx, nil
	})

	ctx.Step(`^a required "([A-Z_]+)" question "([^"]+)"$`, func(qType, id string) error {
		return s.givenQuestion(qType, id, true)
	})
	ctx.Step(`^an optional "([A-Z_]+)" question "([^"]+)"$`, func(qType, id string) error {
		return s.givenQuestion(qType, id, false)
	})
	ctx.Step(`^an optional question of every type$`, s.givenEveryType)
	ctx.Step(`^the respondent enters false for "([^"]+)"$`, func(id string) error {
		s.state[id] = false
		return nil
	})
	ctx.Step(`^the respondent enters "([^"]*)" for "([^"]+)"$`, func(value, id string) error {
		s.state[id] = value
		return nil
	})
	ctx.Step(`^the respondent selects nothing for "([^"]+)"$`, func(id string) error {
		s.state[id] = []string{}
		return nil
	})
	ctx.Step(`^the respondent keeps the defaults$`, func() error {
		s.state = BuildDefaults(s.questions)
		return nil
	})
	ctx.Step(`^the answers are valid$`, s.thenValid)
	ctx.Step(`^"([^"]+)" fails with "([^"]+)"$`, s.thenFieldFails)
	ctx.Step(`^the normalized answers are:$`, s.thenNormalized)
}

func (s *answerScenarioState) givenQuestion(qType, id string, required bool) error {
	s.questions = append(s.questions, models.Question{
		ID:       id,
		Text:     id,
		Type:     models.QuestionType(qType),
		Required: required,
		Order:    len(s.questions),
	})
	return nil
}

func (s *answerScenarioState) givenEveryType() error {
	for i, qt := range models.QuestionTypes {
		if err := s.givenQuestion(string(qt), fmt.Sprintf("q%d", i), false); err != nil {
			return err
		}
	}
	return nil
}

func (s *answerScenarioState) thenValid() error {
	if errs := BuildSchema(s.questions).Validate(s.state); len(errs) > 0 {
		return fmt.Errorf("expected valid answers, got %v", errs.ByField())
	}
	return nil
}

func (s *answerScenarioState) thenFieldFails(id, message string) error {
	errs := BuildSchema(s.questions).Validate(s.state)
	got, ok := errs.For(id)
	if !ok {
		return fmt.Errorf("expected %q to fail", id)
	}
	if got.Message != message {
		return fmt.Errorf("expected %q, got %q", message, got.Message)
	}
	return nil
}

func (s *answerScenarioState) thenNormalized(doc *godog.DocString) error {
	raw, err := json.Marshal(NormalizeAnswers(s.state, s.questions))
	if err != nil {
		return err
	}
	var rec recorder
	if !assert.JSONEq(&rec, doc.Content, string(raw)) {
		return fmt.Errorf("%s", rec.msg)
	}
	return nil
}

// recorder collects a testify failure message so a step can return it.
type recorder struct {
	msg string
}

func (r *recorder) Errorf(format string, args ...interface{}) {
	r.msg = fmt.Sprintf(format, args...)
}
