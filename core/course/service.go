package course

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/auth"
	"github.com/Chhotu7079/UniCore/core/policy"
	"github.com/Chhotu7079/UniCore/core/user"
)

var NowFunc = time.Now

type (
	// Finder resolves the ownership and enrollment facts other services authorize against.
	Finder interface {
		GetCourse(ctx context.Context, id int) (Course, error)
		IsEnrolled(ctx context.Context, studentID, courseID int) (bool, error)
	}

	Repository interface {
		Finder
		CreateCourse(ctx context.Context, c Course) (Course, error)
		// CreateEnrollment fails with core.ErrDuplicate when the pair exists.
		CreateEnrollment(ctx context.Context, e Enrollment) error
		// DeleteEnrollment fails with core.ErrNotFound when the pair does not exist.
		DeleteEnrollment(ctx context.Context, studentID, courseID int) error
		ListEnrolledStudents(ctx context.Context, courseID int) ([]int, error)
		ListCourses(ctx context.Context) ([]Course, error)
		// UpdateCourse fails with core.ErrNotFound when the course does not exist.
		UpdateCourse(ctx context.Context, c Course) error
		// DeleteCourse removes the course with everything that belongs to it.
		DeleteCourse(ctx context.Context, id int) error
	}

	Service struct {
		repo     Repository
		accounts user.Finder
		notifier core.Notifier
		guard    policy.Guard
		log      core.Logger
	}
)

func NewService(repo Repository, accounts user.Finder, notifier core.Notifier, log core.Logger) *Service {
	return &Service{repo: repo, accounts: accounts, notifier: notifier, guard: policy.NewGuard(log), log: log}
}

// Facts loads the course and fills the policy resource for p.
// Enrolled is only looked up for students.
func Facts(ctx context.Context, finder Finder, p auth.Principal, courseID int) (Course, policy.Resource, error) {
	if !p.IsAuthenticated() {
		return Course{}, policy.Resource{}, core.ErrNotAuthenticated
	}
	c, err := finder.GetCourse(ctx, courseID)
	if err != nil {
		return Course{}, policy.Resource{}, errors.Wrap(err, "getting course")
	}
	res := policy.Resource{CourseID: c.ID, InstructorID: c.InstructorID}
	if p.IsStudent() {
		if res.Enrolled, err = finder.IsEnrolled(ctx, p.ID, c.ID); err != nil {
			return Course{}, policy.Resource{}, errors.Wrap(err, "checking enrollment")
		}
	}
	return c, res, nil
}

func (svc *Service) Create(ctx context.Context, p auth.Principal, nc NewCourse) (Course, error) {
	if nc.InstructorID == 0 {
		nc.InstructorID = p.ID
	}
	if err := svc.guard.Authorize(p, policy.CreateCourse, policy.Resource{InstructorID: nc.InstructorID}); err != nil {
		return Course{}, err
	}
	if err := nc.Validate(); err != nil {
		return Course{}, err
	}

	instructor, err := svc.accounts.GetAccount(ctx, nc.InstructorID)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return Course{}, core.NewValidationError(nil, core.FieldError{Field: "instructor_id", Error: "instructor not found"})
		}
		return Course{}, errors.Wrap(err, "getting instructor")
	}
	if instructor.Role != auth.RoleInstructor {
		return Course{}, core.NewValidationError(nil, core.FieldError{Field: "instructor_id", Error: "account is not an instructor"})
	}

	c, err := svc.repo.CreateCourse(ctx, Course{
		Name:         nc.Name,
		Description:  nc.Description,
		Duration:     nc.Duration,
		InstructorID: nc.InstructorID,
		CreatedAt:    NowFunc().UTC(),
	})
	if err != nil {
		return Course{}, errors.Wrap(err, "creating course")
	}
	svc.log.Info("course created", p, map[string]interface{}{"course_id": c.ID, "instructor_id": c.InstructorID})
	return c, nil
}

// Get returns the course to admins, instructors and enrolled students.
func (svc *Service) Get(ctx context.Context, p auth.Principal, id int) (Course, error) {
	c, res, err := Facts(ctx, svc.repo, p, id)
	if err != nil {
		return Course{}, err
	}
	if err = svc.guard.Authorize(p, policy.ReadCourse, res); err != nil {
		return Course{}, err
	}
	return c, nil
}

// List returns the whole catalogue to any authenticated account.
func (svc *Service) List(ctx context.Context, p auth.Principal) ([]Course, error) {
	if !p.IsAuthenticated() {
		return nil, core.ErrNotAuthenticated
	}
	cs, err := svc.repo.ListCourses(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing courses")
	}
	return cs, nil
}

// Update replaces the course details and notifies every enrolled student.
func (svc *Service) Update(ctx context.Context, p auth.Principal, id int, uc UpdateCourse) (Course, error) {
	c, res, err := Facts(ctx, svc.repo, p, id)
	if err != nil {
		return Course{}, err
	}
	if err = svc.guard.Authorize(p, policy.ManageCourse, res); err != nil {
		return Course{}, err
	}
	if err = uc.Validate(); err != nil {
		return Course{}, err
	}

	c.Name, c.Description, c.Duration = uc.Name, uc.Description, uc.Duration
	if err = svc.repo.UpdateCourse(ctx, c); err != nil {
		return Course{}, errors.Wrap(err, "updating course")
	}
	svc.log.Info("course updated", p, map[string]interface{}{"course_id": c.ID})

	ids, err := svc.repo.ListEnrolledStudents(ctx, c.ID)
	if err != nil {
		svc.log.Error("listing students to notify", err, p)
		return c, nil
	}
	msg := fmt.Sprintf("%s course is updated", c.Name)
	for _, studentID := range ids {
		if err = svc.notifier.Notify(ctx, studentID, msg); err != nil {
			svc.log.Error("notifying student", err, p, map[string]interface{}{"student_id": studentID})
		}
	}
	return c, nil
}

// Delete removes the course together with its enrollments, quizzes, lessons and assignments.
func (svc *Service) Delete(ctx context.Context, p auth.Principal, id int) error {
	c, res, err := Facts(ctx, svc.repo, p, id)
	if err != nil {
		return err
	}
	if err = svc.guard.Authorize(p, policy.ManageCourse, res); err != nil {
		return err
	}
	if err = svc.repo.DeleteCourse(ctx, c.ID); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	svc.log.Info("course deleted", p, map[string]interface{}{"course_id": c.ID})
	return nil
}

// Enroll enrolls p in the course and tells the instructor about it.
func (svc *Service) Enroll(ctx context.Context, p auth.Principal, courseID int) (Enrollment, error) {
	c, res, err := Facts(ctx, svc.repo, p, courseID)
	if err != nil {
		return Enrollment{}, err
	}
	res.StudentID = p.ID
	if err = svc.guard.Authorize(p, policy.Enroll, res); err != nil {
		return Enrollment{}, err
	}

	e := Enrollment{StudentID: p.ID, CourseID: c.ID, CreatedAt: NowFunc().UTC()}
	if err = svc.repo.CreateEnrollment(ctx, e); err != nil {
		if errors.Cause(err) == core.ErrDuplicate {
			return Enrollment{}, core.ErrDuplicate
		}
		return Enrollment{}, errors.Wrap(err, "creating enrollment")
	}
	svc.log.Info("student enrolled", p, map[string]interface{}{"course_id": c.ID})

	msg := fmt.Sprintf("Student with ID %d enrolled in course %d", p.ID, c.ID)
	if err = svc.notifier.Notify(ctx, c.InstructorID, msg); err != nil {
		svc.log.Error("notifying instructor", err, p)
	}
	return e, nil
}

func (svc *Service) EnrolledStudents(ctx context.Context, p auth.Principal, courseID int) ([]int, error) {
	c, res, err := Facts(ctx, svc.repo, p, courseID)
	if err != nil {
		return nil, err
	}
	if err = svc.guard.Authorize(p, policy.ViewEnrollments, res); err != nil {
		return nil, err
	}
	ids, err := svc.repo.ListEnrolledStudents(ctx, c.ID)
	if err != nil {
		return nil, errors.Wrap(err, "listing enrolled students")
	}
	return ids, nil
}

func (svc *Service) Unenroll(ctx context.Context, p auth.Principal, courseID, studentID int) error {
	c, res, err := Facts(ctx, svc.repo, p, courseID)
	if err != nil {
		return err
	}
	if err = svc.guard.Authorize(p, policy.ManageCourse, res); err != nil {
		return err
	}
	if err = svc.repo.DeleteEnrollment(ctx, studentID, c.ID); err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return core.ErrNotFound
		}
		return errors.Wrap(err, "deleting enrollment")
	}
	svc.log.Info("student unenrolled", p, map[string]interface{}{"course_id": c.ID, "student_id": studentID})
	return nil
}
