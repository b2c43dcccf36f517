// Package formfill answers a form from the terminal, one prompt per
// question, using the same rules a browser render would.
package formfill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/formify/form-service/internal/errors"
	"github.com/formify/form-service/internal/formview"
	"github.com/formify/form-service/internal/models"
	"github.com/formify/form-service/internal/submission"
)

const (
	noAnswerOption = "(no answer)"
	maxAttempts    = 5
)

var ErrTooManyAttempts = errors.New("formfill: too many invalid answers")

type Filler struct {
	driver PromptDriver
	logger *slog.Logger
}

func NewFiller(driver PromptDriver, logger *slog.Logger) *Filler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Filler{driver: driver, logger: logger}
}

// Run prompts for every question, then submits. A failed submission offers
// a retry; the entered answers are kept between attempts.
func (f *Filler) Run(ctx context.Context, v *formview.View) (*submission.SubmitResult, error) {
	form := v.Form()
	header := form.Title
	if form.Description != "" {
		header += "\n" + form.Description
	}
	if err := f.driver.Info(ctx, header); err != nil {
		return nil, err
	}

	if err := f.Fill(ctx, v); err != nil {
		return nil, err
	}

	for {
		result, err := v.Submit(ctx)
		if err == nil {
			if infoErr := f.driver.Info(ctx, "Thank you! Your response has been recorded."); infoErr != nil {
				f.logger.Debug("Failed to print confirmation", "error", infoErr)
			}
			return result, nil
		}

		var verrs apperrors.ValidationErrors
		if errors.As(err, &verrs) {
			// re-ask only the questions that failed
			if err := f.fillFields(ctx, v, verrs.ByField()); err != nil {
				return nil, err
			}
			continue
		}

		f.logger.Warn("Form submission failed", "form_id", form.ID, "error", err)
		retry, promptErr := f.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Submission failed (%v). Try again?", err),
			Default: true,
		})
		if promptErr != nil {
			return nil, promptErr
		}
		if !retry {
			return nil, err
		}
	}
}

// Fill prompts for every question in display order.
func (f *Filler) Fill(ctx context.Context, v *formview.View) error {
	for _, q := range v.Questions() {
		if err := f.ask(ctx, v, q); err != nil {
			return err
		}
	}
	return nil
}

func (f *Filler) fillFields(ctx context.Context, v *formview.View, failed map[string]string) error {
	for _, q := range v.Questions() {
		msg, ok := failed[q.ID]
		if !ok {
			continue
		}
		if err := f.driver.Info(ctx, fmt.Sprintf("%s: %s", q.Text, msg)); err != nil {
			return err
		}
		if err := f.ask(ctx, v, q); err != nil {
			return err
		}
	}
	return nil
}

// ask prompts until the view accepts the value.
func (f *Filler) ask(ctx context.Context, v *formview.View, q models.Question) error {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		value, err := f.prompt(ctx, v, q)
		if err != nil {
			return err
		}
		setErr := v.Set(q.ID, value)
		if setErr == nil {
			return nil
		}
		if errors.Is(setErr, formview.ErrFormLocked) {
			return setErr
		}
		if err := f.driver.Info(ctx, setErr.Error()); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: %s", ErrTooManyAttempts, q.Text)
}

func (f *Filler) prompt(ctx context.Context, v *formview.View, q models.Question) (any, error) {
	message := q.Text
	if q.Required {
		message += " *"
	}
	rule, _ := v.Schema().Rule(q.ID)
	validate := func(s string) error { return rule.Check(s) }

	switch q.Type {
	case models.QuestionTypeBoolean:
		current, _ := v.Value(q.ID)
		def, _ := current.(bool)
		return f.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: def})

	case models.QuestionTypeParagraph:
		return f.driver.TextArea(ctx, InputConfig{Message: message, Validator: validate})

	case models.QuestionTypeSingleChoice:
		options := v.Options(q.ID)
		labels := optionLabels(options)
		if !q.Required {
			labels = append(labels, noAnswerOption)
		}
		idx, err := f.driver.Select(ctx, SelectConfig{Message: message, Options: labels, DefaultIndex: -1})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(options) {
			return "", nil
		}
		return options[idx].ID, nil

	case models.QuestionTypeMultipleChoice:
		options := v.Options(q.ID)
		indices, err := f.driver.MultiSelect(ctx, SelectConfig{Message: message, Options: optionLabels(options)})
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(options) {
				ids = append(ids, options[idx].ID)
			}
		}
		return ids, nil

	default:
		help := ""
		switch q.Type {
		case models.QuestionTypeDate:
			help = "YYYY-MM-DD"
		case models.QuestionTypePhone:
			help = "international format, e.g. +14155552671"
		}
		answer, err := f.driver.Input(ctx, InputConfig{Message: message, Help: help, Validator: validate})
		if err != nil {
			return nil, err
		}
		return strings.TrimSpace(answer), nil
	}
}

func optionLabels(options []models.Option) []string {
	labels := make([]string, len(options))
	for i, opt := range options {
		labels[i] = opt.Text
	}
	return labels
}
