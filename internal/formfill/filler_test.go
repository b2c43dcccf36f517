package formfill

import (
	"context"
	"errors"
	"testing"

	"github.com/formify/form-service/internal/formschema"
	"github.com/formify/form-service/internal/formview"
	"github.com/formify/form-service/internal/models"
	"github.com/formify/form-service/internal/submission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDriver struct {
	inputs    []string
	textAreas []string
	confirm   []bool
	selectIdx []int
	multiIdx  [][]int
	infos     []string

	inputPos, textPos, confirmPos, selectPos, multiPos int

	inputValidators []func(string) error
	selectOptions   [][]string
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	s.inputValidators = append(s.inputValidators, cfg.Validator)
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ InputConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	s.selectOptions = append(s.selectOptions, cfg.Options)
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infos = append(s.infos, msg)
	return nil
}

func surveyForm() *models.Form {
	return &models.Form{
		ID:    "form-1",
		Title: "Team survey",
		Questions: []models.Question{
			{ID: "name", Text: "Name", Type: models.QuestionTypeShortText, Required: true, Order: 1},
			{ID: "bio", Text: "Bio", Type: models.QuestionTypeParagraph, Order: 2},
			{ID: "age", Text: "Age", Type: models.QuestionTypeNumber, Order: 3},
			{ID: "remote", Text: "Remote?", Type: models.QuestionTypeBoolean, Required: true, Order: 4},
			{ID: "team", Text: "Team", Type: models.QuestionTypeSingleChoice, Order: 5,
				Options: []models.Option{{ID: "t1", Text: "Core", Order: 1}, {ID: "t2", Text: "Web", Order: 2}}},
			{ID: "langs", Text: "Languages", Type: models.QuestionTypeMultipleChoice, Required: true, Order: 6,
				Options: []models.Option{{ID: "go", Text: "Go", Order: 1}, {ID: "ts", Text: "TypeScript", Order: 2}}},
		},
	}
}

func TestFiller_RunSubmitsNormalizedAnswers(t *testing.T) {
	var got submission.SubmitRequest
	submitter := submission.SubmitterFunc(func(_ context.Context, req submission.SubmitRequest) (*submission.SubmitResult, error) {
		got = req
		return &submission.SubmitResult{ResponseID: "resp-1"}, nil
	})
	view := formview.New(surveyForm(), formview.WithSubmitter(submitter))
	driver := &stubDriver{
		inputs:    []string{"Ann", "41"},
		textAreas: []string{""},
		confirm:   []bool{true},
		selectIdx: []int{2},
		multiIdx:  [][]int{{0, 1}},
	}

	result, err := NewFiller(driver, nil).Run(context.Background(), view)

	require.NoError(t, err)
	assert.Equal(t, "resp-1", result.ResponseID)
	assert.Equal(t, []formschema.AnswerInput{
		formschema.TextAnswer("name", "Ann"),
		formschema.TextAnswer("bio", ""),
		formschema.NumberAnswer("age", 41),
		formschema.BoolAnswer("remote", true),
		formschema.OptionsAnswer("langs", "go", "ts"),
	}, got.Answers)
	assert.Equal(t, []string{"Core", "Web", noAnswerOption}, driver.selectOptions[0])
	assert.Equal(t, "Team survey", driver.infos[0])
	assert.True(t, view.Submitted())
}

func TestFiller_InputValidatorUsesQuestionRule(t *testing.T) {
	view := formview.New(surveyForm())
	driver := &stubDriver{
		inputs:    []string{"Ann", ""},
		textAreas: []string{""},
		confirm:   []bool{false},
		selectIdx: []int{0},
		multiIdx:  [][]int{{0}},
	}

	require.NoError(t, NewFiller(driver, nil).Fill(context.Background(), view))

	require.Len(t, driver.inputValidators, 2)
	assert.ErrorIs(t, driver.inputValidators[0](""), formschema.ErrFieldRequired)
	assert.ErrorIs(t, driver.inputValidators[1]("abc"), formschema.ErrNotANumber)
	assert.NoError(t, driver.inputValidators[1](""))
}

func TestFiller_ReasksInvalidSelection(t *testing.T) {
	view := formview.New(surveyForm())
	driver := &stubDriver{
		inputs:    []string{"Ann", ""},
		textAreas: []string{""},
		confirm:   []bool{false},
		selectIdx: []int{0},
		multiIdx:  [][]int{{}, {1}},
	}

	require.NoError(t, NewFiller(driver, nil).Fill(context.Background(), view))

	assert.Contains(t, driver.infos, "choose at least one option")
	value, _ := view.Value("langs")
	assert.Equal(t, []string{"ts"}, value)
}

func TestFiller_DeclinedRetryReturnsError(t *testing.T) {
	boom := errors.New("server unavailable")
	submitter := submission.SubmitterFunc(func(context.Context, submission.SubmitRequest) (*submission.SubmitResult, error) {
		return nil, boom
	})
	view := formview.New(surveyForm(), formview.WithSubmitter(submitter))
	driver := &stubDriver{
		inputs:    []string{"Ann", ""},
		textAreas: []string{""},
		confirm:   []bool{false, false},
		selectIdx: []int{0},
		multiIdx:  [][]int{{0}},
	}

	_, err := NewFiller(driver, nil).Run(context.Background(), view)

	assert.ErrorIs(t, err, boom)
	assert.False(t, view.Submitted())
	value, _ := view.Value("name")
	assert.Equal(t, "Ann", value)
}
