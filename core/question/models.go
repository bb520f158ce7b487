package question

import (
	"fmt"

	"github.com/Chhotu7079/UniCore/core"
)

// Type is the closed set of question kinds a quiz can be built from.
type Type int

const (
	MCQ Type = iota + 1
	TrueFalse
	ShortAnswer
)

var Types = []Type{MCQ, TrueFalse, ShortAnswer}

func (t Type) Valid() bool {
	switch t {
	case MCQ, TrueFalse, ShortAnswer:
		return true
	default:
		return false
	}
}

func (t Type) String() string {
	switch t {
	case MCQ:
		return "MCQ"
	case TrueFalse:
		return "TRUE_FALSE"
	case ShortAnswer:
		return "SHORT_ANSWER"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// ValidateType returns a *core.ValidationError when t is out of range.
func ValidateType(t Type) error {
	if !t.Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "type", Error: "type must be between 1 and 3"})
	}
	return nil
}

// Question belongs to one course. QuizID is 0 while the question is in the bank
// and is set once, when a quiz claims it.
type Question struct {
	ID            int      `json:"id"`
	CourseID      int      `json:"course_id"`
	Type          Type     `json:"type"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	QuizID        int      `json:"quiz_id,omitempty"`
}

func (q Question) IsBound() bool { return q.QuizID != 0 }

// NewQuestion defines a question to add or bulk-load into a course bank.
// ID is optional on add; bulk-load upserts by ID when it is set.
type NewQuestion struct {
	ID            int      `json:"id" validate:"omitempty,min=1"`
	Type          Type     `json:"type" validate:"required,min=1,max=3"`
	Text          string   `json:"text" validate:"required"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer" validate:"required,notblank"`
}

func (nq *NewQuestion) Validate() error {
	nq.Text = core.CleanString(nq.Text)
	return core.ValidateStruct(nq)
}

func (nq NewQuestion) question(courseID int) Question {
	opts := make([]string, len(nq.Options))
	copy(opts, nq.Options)
	return Question{
		ID:            nq.ID,
		CourseID:      courseID,
		Type:          nq.Type,
		Text:          nq.Text,
		Options:       opts,
		CorrectAnswer: nq.CorrectAnswer,
	}
}
