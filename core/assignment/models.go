package assignment

import (
	"time"

	"github.com/Chhotu7079/UniCore/core"
)

type Assignment struct {
	ID          int       `json:"id"`
	CourseID    int       `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`   // UTC
	CreatedAt   time.Time `json:"created_at"` // UTC
}

// Submission is unique per (AssignmentID, StudentID). Grade is nil until graded.
type Submission struct {
	AssignmentID int       `json:"assignment_id"`
	StudentID    int       `json:"student_id"`
	Content      string    `json:"content"`
	Grade        *float64  `json:"grade"`
	Feedback     string    `json:"feedback"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

func (s Submission) IsGraded() bool { return s.Grade != nil }

type NewAssignment struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date" validate:"required"`
}

func (na *NewAssignment) Validate() error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	return core.ValidateStruct(na)
}

type NewSubmission struct {
	Content string `json:"content" validate:"required"`
}

func (ns *NewSubmission) Validate() error {
	ns.Content = core.CleanString(ns.Content)
	return core.ValidateStruct(ns)
}

type Grade struct {
	Grade float64 `json:"grade" validate:"min=0,max=100"`
}

func (g *Grade) Validate() error { return core.ValidateStruct(g) }

type Feedback struct {
	Feedback string `json:"feedback" validate:"required"`
}

func (f *Feedback) Validate() error {
	f.Feedback = core.CleanString(f.Feedback)
	return core.ValidateStruct(f)
}
