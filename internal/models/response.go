package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type FormResponse struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid"`
	FormID       string    `json:"formId" gorm:"type:uuid;not null;index"`
	RespondentID *string   `json:"respondentId,omitempty" gorm:"type:uuid;index"`
	CreatedAt    time.Time `json:"createdAt" gorm:"index"`
	Answers      []Answer  `json:"answers" gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE"`
}

func (FormResponse) TableName() string {
	return "form_responses"
}

// Answer is the stored form of one question's response. Exactly one of the
// value columns is set, matching the question type.
type Answer struct {
	ID          string         `json:"id" gorm:"primaryKey;type:uuid"`
	ResponseID  string         `json:"responseId" gorm:"type:uuid;not null;index"`
	QuestionID  string         `json:"questionId" gorm:"type:uuid;not null;index"`
	TextValue   *string        `json:"textValue,omitempty" gorm:"type:text"`
	BoolValue   *bool          `json:"boolValue,omitempty"`
	NumberValue *float64       `json:"numberValue,omitempty"`
	DateValue   *time.Time     `json:"dateValue,omitempty"`
	OptionIDs   datatypes.JSON `json:"optionIds,omitempty" gorm:"column:option_ids"`
}

func (Answer) TableName() string {
	return "answers"
}

// SelectedOptionIDs decodes the stored option id list. A missing or
// malformed column yields nil.
func (a *Answer) SelectedOptionIDs() []string {
	if len(a.OptionIDs) == 0 {
		return nil
	}
	var ids []string
	if err := json.Unmarshal(a.OptionIDs, &ids); err != nil {
		return nil
	}
	return ids
}

// SetOptionIDs encodes ids into the OptionIDs column.
func (a *Answer) SetOptionIDs(ids []string) {
	if ids == nil {
		ids = []string{}
	}
	raw, _ := json.Marshal(ids)
	a.OptionIDs = datatypes.JSON(raw)
}
