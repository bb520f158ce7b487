package quiz

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/auth"
	"github.com/Chhotu7079/UniCore/core/course"
	"github.com/Chhotu7079/UniCore/core/policy"
	"github.com/Chhotu7079/UniCore/core/question"
)

var NowFunc = time.Now

type (
	Repository interface {
		// CreateQuiz assigns the quiz id.
		CreateQuiz(ctx context.Context, q Quiz) (Quiz, error)
		GetQuiz(ctx context.Context, id int) (Quiz, error)
		// ListByCourse returns the quizzes of a course ordered by id.
		ListByCourse(ctx context.Context, courseID int) ([]Quiz, error)
		CountByCourse(ctx context.Context, courseID int) (int, error)
	}

	// Roster lists the students a new quiz is announced to.
	Roster interface {
		course.Finder
		ListEnrolledStudents(ctx context.Context, courseID int) ([]int, error)
	}

	NewQuiz struct {
		Type question.Type `json:"type"`
	}

	Service struct {
		repo     Repository
		bank     question.Bank
		courses  Roster
		tx       core.Transactor
		notifier core.Notifier
		guard    policy.Guard
		log      core.Logger
		selector *Selector
	}
)

func NewService(repo Repository, bank question.Bank, courses Roster, tx core.Transactor, notifier core.Notifier, log core.Logger) *Service {
	return &Service{
		repo:     repo,
		bank:     bank,
		courses:  courses,
		tx:       tx,
		notifier: notifier,
		guard:    policy.NewGuard(log),
		log:      log,
		selector: NewSelector(bank),
	}
}

// Create assembles a quiz of QuestionCount random questions of the given type
// from the course bank, then announces it to every enrolled student.
// The quiz row and the question bindings are committed together or not at all.
func (svc *Service) Create(ctx context.Context, p auth.Principal, courseID int, nq NewQuiz) (Quiz, error) {
	c, res, err := course.Facts(ctx, svc.courses, p, courseID)
	if err != nil {
		return Quiz{}, err
	}
	if err = svc.guard.Authorize(p, policy.ManageCourse, res); err != nil {
		return Quiz{}, err
	}
	if err = question.ValidateType(nq.Type); err != nil {
		return Quiz{}, err
	}

	var qz Quiz
	err = svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		count, err := svc.repo.CountByCourse(ctx, c.ID)
		if err != nil {
			return errors.Wrap(err, "counting quizzes")
		}
		qz, err = svc.repo.CreateQuiz(ctx, Quiz{
			CourseID:      c.ID,
			Title:         title(count + 1),
			QuestionCount: QuestionCount,
			Randomized:    true,
			CreatedAt:     NowFunc().UTC(),
		})
		if err != nil {
			return errors.Wrap(err, "creating quiz")
		}
		_, err = svc.selector.Select(ctx, c.ID, nq.Type, QuestionCount, qz.ID)
		return err
	})
	if err != nil {
		return Quiz{}, err
	}

	svc.log.Info("quiz created", p, map[string]interface{}{"course_id": c.ID, "quiz_id": qz.ID, "type": nq.Type})
	svc.announce(ctx, p, c, qz)
	return qz, nil
}

// announce failures never undo a created quiz; they are only logged.
func (svc *Service) announce(ctx context.Context, p auth.Principal, c course.Course, qz Quiz) {
	students, err := svc.courses.ListEnrolledStudents(ctx, c.ID)
	if err != nil {
		svc.log.Error("listing enrolled students", err, p)
		return
	}
	msg := fmt.Sprintf("A new quiz (ID: %d) is available for course: %s", qz.ID, c.Name)
	for _, id := range students {
		if err = svc.notifier.Notify(ctx, id, msg); err != nil {
			svc.log.Error("notifying student", err, p, map[string]interface{}{"student_id": id})
		}
	}
}

// ListActive returns one line per quiz of the course that is still active.
func (svc *Service) ListActive(ctx context.Context, p auth.Principal, courseID int) ([]string, error) {
	c, res, err := course.Facts(ctx, svc.courses, p, courseID)
	if err != nil {
		return nil, err
	}
	if err = svc.guard.Authorize(p, policy.ReadQuiz, res); err != nil {
		return nil, err
	}

	quizzes, err := svc.repo.ListByCourse(ctx, c.ID)
	if err != nil {
		return nil, errors.Wrap(err, "listing quizzes")
	}
	now := NowFunc()
	lines := make([]string, 0, len(quizzes))
	for _, qz := range quizzes {
		if qz.IsActive(now) {
			lines = append(lines, fmt.Sprintf("quiz %d has %d min left", qz.ID, qz.MinutesLeft(now)))
		}
	}
	return lines, nil
}

// Load returns the quiz and the policy facts of its course for p.
func (svc *Service) Load(ctx context.Context, p auth.Principal, quizID int) (Quiz, policy.Resource, error) {
	if !p.IsAuthenticated() {
		return Quiz{}, policy.Resource{}, core.ErrNotAuthenticated
	}
	qz, err := svc.repo.GetQuiz(ctx, quizID)
	if err != nil {
		return Quiz{}, policy.Resource{}, errors.Wrap(err, "getting quiz")
	}
	_, res, err := course.Facts(ctx, svc.courses, p, qz.CourseID)
	if err != nil {
		return Quiz{}, policy.Resource{}, err
	}
	res.QuizActive = qz.IsActive(NowFunc())
	return qz, res, nil
}

func (svc *Service) Get(ctx context.Context, p auth.Principal, quizID int) (Quiz, error) {
	qz, res, err := svc.Load(ctx, p, quizID)
	if err != nil {
		return Quiz{}, err
	}
	if err = svc.guard.Authorize(p, policy.ReadQuiz, res); err != nil {
		return Quiz{}, err
	}
	return qz, nil
}

// Questions returns the questions bound to the quiz, in binding order.
// Students only see them while the quiz is active.
func (svc *Service) Questions(ctx context.Context, p auth.Principal, quizID int) ([]question.Question, error) {
	qz, res, err := svc.Load(ctx, p, quizID)
	if err != nil {
		return nil, err
	}
	if err = svc.guard.Authorize(p, policy.ReadQuizQuestions, res); err != nil {
		return nil, err
	}
	qs, err := svc.bank.ListByQuiz(ctx, qz.ID)
	if err != nil {
		return nil, errors.Wrap(err, "listing quiz questions")
	}
	return qs, nil
}
