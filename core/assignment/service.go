package assignment

import (
	"context"
	"fmt"
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
		// CreateAssignment assigns the assignment id.
		CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		GetAssignment(ctx context.Context, id int) (Assignment, error)
		// ListByCourse returns the assignments of a course ordered by id.
		ListByCourse(ctx context.Context, courseID int) ([]Assignment, error)
		// CreateSubmission fails with core.ErrDuplicate when the pair exists.
		CreateSubmission(ctx context.Context, s Submission) error
		GetSubmission(ctx context.Context, assignmentID, studentID int) (Submission, error)
		// ListSubmissions returns the submissions of an assignment ordered by student id.
		ListSubmissions(ctx context.Context, assignmentID int) ([]Submission, error)
		// SetGrade and SetFeedback fail with core.ErrNotFound when the pair does not exist.
		SetGrade(ctx context.Context, assignmentID, studentID int, grade float64) error
		SetFeedback(ctx context.Context, assignmentID, studentID int, feedback string) error
	}

	Service struct {
		repo     Repository
		courses  course.Finder
		notifier core.Notifier
		guard    policy.Guard
		log      core.Logger
	}
)

func NewService(repo Repository, courses course.Finder, notifier core.Notifier, log core.Logger) *Service {
	return &Service{repo: repo, courses: courses, notifier: notifier, guard: policy.NewGuard(log), log: log}
}

// load returns the assignment and the policy facts of its course for p.
func (svc *Service) load(ctx context.Context, p auth.Principal, id int) (Assignment, policy.Resource, error) {
	if !p.IsAuthenticated() {
		return Assignment{}, policy.Resource{}, core.ErrNotAuthenticated
	}
	a, err := svc.repo.GetAssignment(ctx, id)
	if err != nil {
		return Assignment{}, policy.Resource{}, errors.Wrap(err, "getting assignment")
	}
	_, res, err := course.Facts(ctx, svc.courses, p, a.CourseID)
	if err != nil {
		return Assignment{}, policy.Resource{}, err
	}
	return a, res, nil
}

func (svc *Service) Add(ctx context.Context, p auth.Principal, courseID int, na NewAssignment) (Assignment, error) {
	c, res, err := course.Facts(ctx, svc.courses, p, courseID)
	if err != nil {
		return Assignment{}, err
	}
	if err = svc.guard.Authorize(p, policy.ManageCourse, res); err != nil {
		return Assignment{}, err
	}
	if err = na.Validate(); err != nil {
		return Assignment{}, err
	}

	a, err := svc.repo.CreateAssignment(ctx, Assignment{
		CourseID:    c.ID,
		Title:       na.Title,
		Description: na.Description,
		DueDate:     na.DueDate.UTC(),
		CreatedAt:   NowFunc().UTC(),
	})
	if err != nil {
		return Assignment{}, errors.Wrap(err, "creating assignment")
	}
	svc.log.Info("assignment added", p, map[string]interface{}{"course_id": c.ID, "assignment_id": a.ID})
	return a, nil
}

func (svc *Service) List(ctx context.Context, p auth.Principal, courseID int) ([]Assignment, error) {
	c, res, err := course.Facts(ctx, svc.courses, p, courseID)
	if err != nil {
		return nil, err
	}
	if err = svc.guard.Authorize(p, policy.ReadCourse, res); err != nil {
		return nil, err
	}
	as, err := svc.repo.ListByCourse(ctx, c.ID)
	if err != nil {
		return nil, errors.Wrap(err, "listing assignments")
	}
	return as, nil
}

func (svc *Service) Get(ctx context.Context, p auth.Principal, id int) (Assignment, error) {
	a, res, err := svc.load(ctx, p, id)
	if err != nil {
		return Assignment{}, err
	}
	if err = svc.guard.Authorize(p, policy.ReadCourse, res); err != nil {
		return Assignment{}, err
	}
	return a, nil
}

// Submit stores the work of the student p. A student submits once per assignment.
func (svc *Service) Submit(ctx context.Context, p auth.Principal, id int, ns NewSubmission) (Submission, error) {
	a, res, err := svc.load(ctx, p, id)
	if err != nil {
		return Submission{}, err
	}
	if err = svc.guard.Authorize(p, policy.SubmitAssignment, res); err != nil {
		return Submission{}, err
	}
	if err = ns.Validate(); err != nil {
		return Submission{}, err
	}

	s := Submission{AssignmentID: a.ID, StudentID: p.ID, Content: ns.Content, CreatedAt: NowFunc().UTC()}
	if err = svc.repo.CreateSubmission(ctx, s); err != nil {
		if errors.Cause(err) == core.ErrDuplicate {
			return Submission{}, core.ErrDuplicate
		}
		return Submission{}, errors.Wrap(err, "creating submission")
	}
	svc.log.Info("assignment submitted", p, map[string]interface{}{"assignment_id": a.ID})
	return s, nil
}

// Grade sets the grade of a student's submission and tells the student.
func (svc *Service) Grade(ctx context.Context, p auth.Principal, id, studentID int, g Grade) error {
	a, res, err := svc.load(ctx, p, id)
	if err != nil {
		return err
	}
	if err = svc.guard.Authorize(p, policy.ManageCourse, res); err != nil {
		return err
	}
	if err = g.Validate(); err != nil {
		return err
	}
	if err = svc.repo.SetGrade(ctx, a.ID, studentID, g.Grade); err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return core.ErrNotFound
		}
		return errors.Wrap(err, "grading submission")
	}
	svc.log.Info("assignment graded", p, map[string]interface{}{"assignment_id": a.ID, "student_id": studentID})

	msg := fmt.Sprintf("Your assignment (ID: %d) has been graded.", a.ID)
	if err = svc.notifier.Notify(ctx, studentID, msg); err != nil {
		svc.log.Error("notifying student", err, p, map[string]interface{}{"student_id": studentID})
	}
	return nil
}

func (svc *Service) SaveFeedback(ctx context.Context, p auth.Principal, id, studentID int, f Feedback) error {
	a, res, err := svc.load(ctx, p, id)
	if err != nil {
		return err
	}
	if err = svc.guard.Authorize(p, policy.ManageCourse, res); err != nil {
		return err
	}
	if err = f.Validate(); err != nil {
		return err
	}
	if err = svc.repo.SetFeedback(ctx, a.ID, studentID, f.Feedback); err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return core.ErrNotFound
		}
		return errors.Wrap(err, "saving feedback")
	}
	svc.log.Info("assignment feedback saved", p, map[string]interface{}{"assignment_id": a.ID, "student_id": studentID})
	return nil
}

// Feedback returns the submission of a student, with its grade and feedback.
// It fails with core.ErrNoFeedbackYet while the submission has neither.
func (svc *Service) Feedback(ctx context.Context, p auth.Principal, id, studentID int) (Submission, error) {
	a, res, err := svc.load(ctx, p, id)
	if err != nil {
		return Submission{}, err
	}
	res.StudentID = studentID
	if err = svc.guard.Authorize(p, policy.ViewFeedback, res); err != nil {
		return Submission{}, err
	}
	s, err := svc.repo.GetSubmission(ctx, a.ID, studentID)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return Submission{}, core.ErrNotFound
		}
		return Submission{}, errors.Wrap(err, "getting submission")
	}
	if !s.IsGraded() && s.Feedback == "" {
		return Submission{}, core.ErrNoFeedbackYet
	}
	return s, nil
}

// Submissions returns one line per submission of the assignment, "studentID: grade".
func (svc *Service) Submissions(ctx context.Context, p auth.Principal, id int) ([]string, error) {
	a, res, err := svc.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err = svc.guard.Authorize(p, policy.ViewGrades, res); err != nil {
		return nil, err
	}
	subs, err := svc.repo.ListSubmissions(ctx, a.ID)
	if err != nil {
		return nil, errors.Wrap(err, "listing submissions")
	}
	lines := make([]string, 0, len(subs))
	for _, s := range subs {
		grade := "not graded"
		if s.IsGraded() {
			grade = fmt.Sprintf("%g", *s.Grade)
		}
		lines = append(lines, fmt.Sprintf("%d: %s", s.StudentID, grade))
	}
	return lines, nil
}
