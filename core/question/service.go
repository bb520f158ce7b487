package question

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/auth"
	"github.com/Chhotu7079/UniCore/core/course"
	"github.com/Chhotu7079/UniCore/core/policy"
)

type (
	// Bank is the per-course question store quizzes are assembled from.
	Bank interface {
		// FindUnbound returns the unbound questions of a course and type, ordered by id.
		FindUnbound(ctx context.Context, courseID int, typ Type) ([]Question, error)
		// Bind claims each unbound question in ids for quizID, in the given order,
		// and returns the subset it actually claimed. Already bound questions are skipped.
		Bind(ctx context.Context, ids []int, quizID int) ([]int, error)
		// ListByQuiz returns the questions bound to a quiz in the order they were bound.
		ListByQuiz(ctx context.Context, quizID int) ([]Question, error)
	}

	Repository interface {
		Bank
		// CreateQuestion fails with core.ErrDuplicate when q.ID is set and taken.
		CreateQuestion(ctx context.Context, q Question) (Question, error)
		// UpsertQuestion overwrites the question with q.ID in place, keeping its binding,
		// or creates it unbound. It fails with a *core.PermissionError when q.ID belongs
		// to another course, checked in the same statement as the write.
		UpsertQuestion(ctx context.Context, q Question) (Question, error)
		GetQuestion(ctx context.Context, id int) (Question, error)
		ListByCourse(ctx context.Context, courseID int) ([]Question, error)
	}

	Service struct {
		repo    Repository
		courses course.Finder
		tx      core.Transactor
		guard   policy.Guard
		log     core.Logger
	}
)

func NewService(repo Repository, courses course.Finder, tx core.Transactor, log core.Logger) *Service {
	return &Service{repo: repo, courses: courses, tx: tx, guard: policy.NewGuard(log), log: log}
}

func (svc *Service) authorize(ctx context.Context, p auth.Principal, courseID int) (course.Course, error) {
	c, res, err := course.Facts(ctx, svc.courses, p, courseID)
	if err != nil {
		return course.Course{}, err
	}
	if err = svc.guard.Authorize(p, policy.ManageCourse, res); err != nil {
		return course.Course{}, err
	}
	return c, nil
}

// Add adds a new unbound question to the course bank.
func (svc *Service) Add(ctx context.Context, p auth.Principal, courseID int, nq NewQuestion) (Question, error) {
	c, err := svc.authorize(ctx, p, courseID)
	if err != nil {
		return Question{}, err
	}
	if err = nq.Validate(); err != nil {
		return Question{}, err
	}

	q, err := svc.repo.CreateQuestion(ctx, nq.question(c.ID))
	if err != nil {
		if errors.Cause(err) == core.ErrDuplicate {
			return Question{}, core.ErrDuplicate
		}
		return Question{}, errors.Wrap(err, "creating question")
	}
	svc.log.Info("question added", p, map[string]interface{}{"course_id": c.ID, "question_id": q.ID})
	return q, nil
}

// BulkLoad upserts every question into the course bank in one transaction
// and returns how many were written.
func (svc *Service) BulkLoad(ctx context.Context, p auth.Principal, courseID int, nqs []NewQuestion) (int, error) {
	c, err := svc.authorize(ctx, p, courseID)
	if err != nil {
		return 0, err
	}
	for i := range nqs {
		if err = nqs[i].Validate(); err != nil {
			return 0, err
		}
	}

	err = svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, nq := range nqs {
			if err := svc.upsert(ctx, p, nq.question(c.ID)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	svc.log.Info("questions loaded", p, map[string]interface{}{"course_id": c.ID, "count": len(nqs)})
	return len(nqs), nil
}

func (svc *Service) upsert(ctx context.Context, p auth.Principal, q Question) error {
	_, err := svc.repo.UpsertQuestion(ctx, q)
	if err == nil {
		return nil
	}
	if perr, ok := errors.Cause(err).(*core.PermissionError); ok {
		svc.log.Warn("access denied", p, map[string]interface{}{
			"course_id": q.CourseID, "question_id": q.ID, "reason": perr.Reason,
		})
		return perr
	}
	return errors.Wrap(err, "upserting question")
}

// CourseBank returns every question of the course, bound or not.
func (svc *Service) CourseBank(ctx context.Context, p auth.Principal, courseID int) ([]Question, error) {
	c, err := svc.authorize(ctx, p, courseID)
	if err != nil {
		return nil, err
	}
	qs, err := svc.repo.ListByCourse(ctx, c.ID)
	if err != nil {
		return nil, errors.Wrap(err, "listing questions")
	}
	if len(qs) == 0 {
		return nil, core.ErrNotFound
	}
	return qs, nil
}
