package formschema

import "encoding/json"

// AnswerSlot names the value field populated on an AnswerInput.
type AnswerSlot string

const (
	SlotNone    AnswerSlot = ""
	SlotText    AnswerSlot = "textValue"
	SlotBool    AnswerSlot = "boolValue"
	SlotNumber  AnswerSlot = "numberValue"
	SlotDate    AnswerSlot = "dateValue"
	SlotOptions AnswerSlot = "optionIds"
)

// AnswerInput is one normalized answer ready for submission. Exactly one
// value slot is set.
type AnswerInput struct {
	QuestionID  string   `json:"questionId"`
	TextValue   *string  `json:"textValue,omitempty"`
	BoolValue   *bool    `json:"boolValue,omitempty"`
	NumberValue *float64 `json:"numberValue,omitempty"`
	DateValue   *string  `json:"dateValue,omitempty"`
	OptionIDs   []string `json:"optionIds,omitempty"`
}

func TextAnswer(questionID, value string) AnswerInput {
	return AnswerInput{QuestionID: questionID, TextValue: &value}
}

func BoolAnswer(questionID string, value bool) AnswerInput {
	return AnswerInput{QuestionID: questionID, BoolValue: &value}
}

func NumberAnswer(questionID string, value float64) AnswerInput {
	return AnswerInput{QuestionID: questionID, NumberValue: &value}
}

func DateAnswer(questionID, value string) AnswerInput {
	return AnswerInput{QuestionID: questionID, DateValue: &value}
}

// OptionsAnswer builds a choice answer. A nil ids slice is stored as an
// empty selection so the slot still counts as populated.
func OptionsAnswer(questionID string, ids ...string) AnswerInput {
	out := make([]string, len(ids))
	copy(out, ids)
	return AnswerInput{QuestionID: questionID, OptionIDs: out}
}

// Slot reports the populated value slot, or SlotNone when nothing is set.
// When more than one slot is set the first in field order is reported; see
// SlotCount.
func (a AnswerInput) Slot() AnswerSlot {
	switch {
	case a.TextValue != nil:
		return SlotText
	case a.BoolValue != nil:
		return SlotBool
	case a.NumberValue != nil:
		return SlotNumber
	case a.DateValue != nil:
		return SlotDate
	case a.OptionIDs != nil:
		return SlotOptions
	}
	return SlotNone
}

// SlotCount returns how many value slots are set.
func (a AnswerInput) SlotCount() int {
	n := 0
	if a.TextValue != nil {
		n++
	}
	if a.BoolValue != nil {
		n++
	}
	if a.NumberValue != nil {
		n++
	}
	if a.DateValue != nil {
		n++
	}
	if a.OptionIDs != nil {
		n++
	}
	return n
}

// MarshalJSON emits an empty multiple-choice selection as "optionIds": []
// rather than dropping the key.
func (a AnswerInput) MarshalJSON() ([]byte, error) {
	type wire struct {
		QuestionID  string    `json:"questionId"`
		TextValue   *string   `json:"textValue,omitempty"`
		BoolValue   *bool     `json:"boolValue,omitempty"`
		NumberValue *float64  `json:"numberValue,omitempty"`
		DateValue   *string   `json:"dateValue,omitempty"`
		OptionIDs   *[]string `json:"optionIds,omitempty"`
	}
	w := wire{
		QuestionID:  a.QuestionID,
		TextValue:   a.TextValue,
		BoolValue:   a.BoolValue,
		NumberValue: a.NumberValue,
		DateValue:   a.DateValue,
	}
	if a.OptionIDs != nil {
		ids := a.OptionIDs
		w.OptionIDs = &ids
	}
	return json.Marshal(w)
}
