package models

import (
	"time"

	"gorm.io/gorm"
)

type FormAccess string

const (
	FormAccessPrivate FormAccess = "PRIVATE"
	FormAccessByLink  FormAccess = "BY_LINK"
	FormAccessPublic  FormAccess = "PUBLIC"
)

func (a FormAccess) Valid() bool {
	switch a {
	case FormAccessPrivate, FormAccessByLink, FormAccessPublic:
		return true
	}
	return false
}

type QuestionType string

const (
	QuestionTypeShortText      QuestionType = "SHORT_TEXT"
	QuestionTypeParagraph      QuestionType = "PARAGRAPH"
	QuestionTypeNumber         QuestionType = "NUMBER"
	QuestionTypeBoolean        QuestionType = "BOOLEAN"
	QuestionTypeDate           QuestionType = "DATE"
	QuestionTypeEmail          QuestionType = "EMAIL"
	QuestionTypePhone          QuestionType = "PHONE"
	QuestionTypeSingleChoice   QuestionType = "SINGLE_CHOICE"
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
)

// QuestionTypes lists every supported question type in declaration order.
var QuestionTypes = []QuestionType{
	QuestionTypeShortText,
	QuestionTypeParagraph,
	QuestionTypeNumber,
	QuestionTypeBoolean,
	QuestionTypeDate,
	QuestionTypeEmail,
	QuestionTypePhone,
	QuestionTypeSingleChoice,
	QuestionTypeMultipleChoice,
}

func (t QuestionType) Valid() bool {
	for _, known := range QuestionTypes {
		if known == t {
			return true
		}
	}
	return false
}

type Form struct {
	ID          string     `json:"id" gorm:"primaryKey;type:uuid"`
	OwnerID     string     `json:"ownerId" gorm:"type:uuid;not null;index"`
	Title       string     `json:"title" gorm:"size:255" validate:"required,min=1,max=255"`
	Description string     `json:"description" gorm:"type:text" validate:"max=2000"`
	Access      FormAccess `json:"access" gorm:"size:16;default:PRIVATE" validate:"omitempty,form_access"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Questions []Question `json:"questions" gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" validate:"dive"`
}

func (Form) TableName() string {
	return "forms"
}

// Question is a single typed prompt of a form. Options are only meaningful
// for the choice types.
type Question struct {
	ID       string       `json:"id" gorm:"primaryKey;type:uuid"`
	FormID   string       `json:"formId,omitempty" gorm:"type:uuid;not null;index"`
	Text     string       `json:"text" gorm:"type:text" validate:"required"`
	Type     QuestionType `json:"type" gorm:"size:32" validate:"required,question_type"`
	Required bool         `json:"required" gorm:"default:false"`
	Order    int          `json:"order" gorm:"column:order"`
	Options  []Option     `json:"options,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" validate:"dive"`
}

func (Question) TableName() string {
	return "questions"
}

type Option struct {
	ID         string `json:"id" gorm:"primaryKey;type:uuid"`
	QuestionID string `json:"questionId,omitempty" gorm:"type:uuid;not null;index"`
	Text       string `json:"text" gorm:"type:text" validate:"required"`
	Order      int    `json:"order" gorm:"column:order"`
}

func (Option) TableName() string {
	return "options"
}

// QuestionByID returns the question with the given id, if the form has one.
func (f *Form) QuestionByID(id string) (*Question, bool) {
	if f == nil {
		return nil, false
	}
	for i := range f.Questions {
		if f.Questions[i].ID == id {
			return &f.Questions[i], true
		}
	}
	return nil, false
}

// HasOption reports whether optionID belongs to the question.
func (q *Question) HasOption(optionID string) bool {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}
