package course

import (
	"time"

	"github.com/Chhotu7079/UniCore/core"
)

type Course struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Duration     int       `json:"duration"` // hours
	InstructorID int       `json:"instructor_id"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

// Enrollment is unique per (StudentID, CourseID).
type Enrollment struct {
	StudentID int       `json:"student_id"`
	CourseID  int       `json:"course_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewCourse contains information needed to create a new Course.
// InstructorID defaults to the caller and may only be set by admins.
type NewCourse struct {
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description"`
	Duration     int    `json:"duration" validate:"min=0"`
	InstructorID int    `json:"instructor_id" validate:"omitempty,min=1"`
}

func (nc *NewCourse) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	return core.ValidateStruct(nc)
}

// UpdateCourse replaces the editable details of a Course. The instructor never changes.
type UpdateCourse struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Duration    int    `json:"duration" validate:"min=0"`
}

func (uc *UpdateCourse) Validate() error {
	uc.Name = core.CleanString(uc.Name)
	uc.Description = core.CleanString(uc.Description)
	return core.ValidateStruct(uc)
}
