package lesson

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/pkg/errors"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/auth"
	"github.com/Chhotu7079/UniCore/core/course"
	"github.com/Chhotu7079/UniCore/core/policy"
)

var NowFunc = time.Now

type (
	Repository interface {
		// CreateLesson assigns the lesson id.
		CreateLesson(ctx context.Context, l Lesson) (Lesson, error)
		GetLesson(ctx context.Context, id int) (Lesson, error)
		// ListByCourse returns the lessons of a course ordered by (order, id).
		ListByCourse(ctx context.Context, courseID int) ([]Lesson, error)
		// UpdateLesson fails with core.ErrNotFound when the lesson does not exist.
		UpdateLesson(ctx context.Context, l Lesson) error
		// DeleteLesson removes the lesson and its attendance.
		DeleteLesson(ctx context.Context, id int) error
		// CreateAttendance fails with core.ErrDuplicate when the pair exists.
		CreateAttendance(ctx context.Context, a Attendance) error
		// ListAttendance returns the ids of the students who attended, ascending.
		ListAttendance(ctx context.Context, lessonID int) ([]int, error)
	}

	Service struct {
		repo    Repository
		courses course.Finder
		guard   policy.Guard
		log     core.Logger
	}
)

func NewService(repo Repository, courses course.Finder, log core.Logger) *Service {
	return &Service{repo: repo, courses: courses, guard: policy.NewGuard(log), log: log}
}

// load returns the lesson and the policy facts of its course for p.
func (svc *Service) load(ctx context.Context, p auth.Principal, lessonID int) (Lesson, policy.Resource, error) {
	if !p.IsAuthenticated() {
		return Lesson{}, policy.Resource{}, core.ErrNotAuthenticated
	}
	l, err := svc.repo.GetLesson(ctx, lessonID)
	if err != nil {
		return Lesson{}, policy.Resource{}, errors.Wrap(err, "getting lesson")
	}
	_, res, err := course.Facts(ctx, svc.courses, p, l.CourseID)
	if err != nil {
		return Lesson{}, policy.Resource{}, err
	}
	return l, res, nil
}

func isOwner(p auth.Principal, res policy.Resource) bool {
	return p.IsInstructor() && p.ID == res.InstructorID
}

func (svc *Service) Add(ctx context.Context, p auth.Principal, courseID int, nl NewLesson) (Lesson, error) {
	c, res, err := course.Facts(ctx, svc.courses, p, courseID)
	if err != nil {
		return Lesson{}, err
	}
	if err = svc.guard.Authorize(p, policy.ManageCourse, res); err != nil {
		return Lesson{}, err
	}
	if err = nl.Validate(); err != nil {
		return Lesson{}, err
	}

	l, err := svc.repo.CreateLesson(ctx, Lesson{
		CourseID:    c.ID,
		Name:        nl.Name,
		Description: nl.Description,
		Order:       nl.Order,
		OTP:         nl.OTP,
		Content:     nl.Content,
		CreatedAt:   NowFunc().UTC(),
	})
	if err != nil {
		return Lesson{}, errors.Wrap(err, "creating lesson")
	}
	svc.log.Info("lesson added", p, map[string]interface{}{"course_id": c.ID, "lesson_id": l.ID})
	return l, nil
}

// List returns the lessons of the course. The OTP is cleared unless p teaches the course.
func (svc *Service) List(ctx context.Context, p auth.Principal, courseID int) ([]Lesson, error) {
	c, res, err := course.Facts(ctx, svc.courses, p, courseID)
	if err != nil {
		return nil, err
	}
	if err = svc.guard.Authorize(p, policy.ReadCourse, res); err != nil {
		return nil, err
	}
	ls, err := svc.repo.ListByCourse(ctx, c.ID)
	if err != nil {
		return nil, errors.Wrap(err, "listing lessons")
	}
	if !isOwner(p, res) {
		for i := range ls {
			ls[i].OTP = ""
		}
	}
	return ls, nil
}

func (svc *Service) Get(ctx context.Context, p auth.Principal, lessonID int) (Lesson, error) {
	l, res, err := svc.load(ctx, p, lessonID)
	if err != nil {
		return Lesson{}, err
	}
	if err = svc.guard.Authorize(p, policy.ReadCourse, res); err != nil {
		return Lesson{}, err
	}
	if !isOwner(p, res) {
		l.OTP = ""
	}
	return l, nil
}

func (svc *Service) Update(ctx context.Context, p auth.Principal, lessonID int, nl NewLesson) (Lesson, error) {
	l, res, err := svc.load(ctx, p, lessonID)
	if err != nil {
		return Lesson{}, err
	}
	if err = svc.guard.Authorize(p, policy.ManageCourse, res); err != nil {
		return Lesson{}, err
	}
	if err = nl.Validate(); err != nil {
		return Lesson{}, err
	}

	l.Name, l.Description, l.Order, l.OTP, l.Content = nl.Name, nl.Description, nl.Order, nl.OTP, nl.Content
	if err = svc.repo.UpdateLesson(ctx, l); err != nil {
		return Lesson{}, errors.Wrap(err, "updating lesson")
	}
	svc.log.Info("lesson updated", p, map[string]interface{}{"lesson_id": l.ID})
	return l, nil
}

func (svc *Service) Delete(ctx context.Context, p auth.Principal, lessonID int) error {
	l, res, err := svc.load(ctx, p, lessonID)
	if err != nil {
		return err
	}
	if err = svc.guard.Authorize(p, policy.ManageCourse, res); err != nil {
		return err
	}
	if err = svc.repo.DeleteLesson(ctx, l.ID); err != nil {
		return errors.Wrap(err, "deleting lesson")
	}
	svc.log.Info("lesson deleted", p, map[string]interface{}{"lesson_id": l.ID})
	return nil
}

// Attend records that the student p entered the lesson with its OTP.
// Entering the same lesson again is a no-op.
func (svc *Service) Attend(ctx context.Context, p auth.Principal, lessonID int, e Entry) error {
	l, res, err := svc.load(ctx, p, lessonID)
	if err != nil {
		return err
	}
	if err = svc.guard.Authorize(p, policy.AttendLesson, res); err != nil {
		return err
	}
	if err = e.Validate(); err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(e.OTP), []byte(l.OTP)) != 1 {
		return core.NewValidationError(nil, core.FieldError{Field: "otp", Error: "invalid OTP"})
	}

	err = svc.repo.CreateAttendance(ctx, Attendance{LessonID: l.ID, StudentID: p.ID, CreatedAt: NowFunc().UTC()})
	switch {
	case err == nil:
		svc.log.Info("lesson attended", p, map[string]interface{}{"lesson_id": l.ID})
	case errors.Cause(err) == core.ErrDuplicate:
	default:
		return errors.Wrap(err, "creating attendance")
	}
	return nil
}

// Attendance returns the ids of the students who attended the lesson.
func (svc *Service) Attendance(ctx context.Context, p auth.Principal, lessonID int) ([]int, error) {
	l, res, err := svc.load(ctx, p, lessonID)
	if err != nil {
		return nil, err
	}
	if err = svc.guard.Authorize(p, policy.ManageCourse, res); err != nil {
		return nil, err
	}
	ids, err := svc.repo.ListAttendance(ctx, l.ID)
	if err != nil {
		return nil, errors.Wrap(err, "listing attendance")
	}
	return ids, nil
}
