package lesson

import (
	"time"

	"github.com/Chhotu7079/UniCore/core"
)

// Lesson belongs to a course. Students mark attendance by entering its OTP.
type Lesson struct {
	ID          int       `json:"id"`
	CourseID    int       `json:"course_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Order       int       `json:"order"`
	OTP         string    `json:"otp,omitempty"` // only shown to the course instructor
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

// Attendance is unique per (LessonID, StudentID).
type Attendance struct {
	LessonID  int       `json:"lesson_id"`
	StudentID int       `json:"student_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewLesson contains the editable fields of a Lesson, used for both creation and updates.
type NewLesson struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Order       int    `json:"order" validate:"min=0"`
	OTP         string `json:"otp" validate:"required,max=32"`
	Content     string `json:"content"`
}

func (nl *NewLesson) Validate() error {
	nl.Name = core.CleanString(nl.Name)
	nl.Description = core.CleanString(nl.Description)
	nl.OTP = core.CleanString(nl.OTP)
	return core.ValidateStruct(nl)
}

type Entry struct {
	OTP string `json:"otp" validate:"required"`
}

func (e *Entry) Validate() error {
	e.OTP = core.CleanString(e.OTP)
	return core.ValidateStruct(e)
}
