package grading

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/auth"
	"github.com/Chhotu7079/UniCore/core/policy"
	"github.com/Chhotu7079/UniCore/core/question"
	"github.com/Chhotu7079/UniCore/core/quiz"
)

var NowFunc = time.Now

type (
	Repository interface {
		// CreateRecord fails with core.ErrAlreadySubmitted when the (quiz, student) pair exists.
		CreateRecord(ctx context.Context, r Record) error
		GetRecord(ctx context.Context, quizID, studentID int) (Record, error)
		// ListByQuiz returns the records of a quiz ordered by student id.
		ListByQuiz(ctx context.Context, quizID int) ([]Record, error)
	}

	// QuizLoader resolves a quiz with the policy facts of its course.
	QuizLoader interface {
		Load(ctx context.Context, p auth.Principal, quizID int) (quiz.Quiz, policy.Resource, error)
	}

	Service struct {
		repo     Repository
		quizzes  QuizLoader
		bank     question.Bank
		notifier core.Notifier
		guard    policy.Guard
		log      core.Logger
	}
)

var _ QuizLoader = (*quiz.Service)(nil)

func NewService(repo Repository, quizzes QuizLoader, bank question.Bank, notifier core.Notifier, log core.Logger) *Service {
	return &Service{repo: repo, quizzes: quizzes, bank: bank, notifier: notifier, guard: policy.NewGuard(log), log: log}
}

// Submit grades the answers of p on the quiz and stores the score.
// A student gets one graded submission per quiz.
func (svc *Service) Submit(ctx context.Context, p auth.Principal, quizID int, sub Submission) (int, error) {
	qz, res, err := svc.quizzes.Load(ctx, p, quizID)
	if err != nil {
		return 0, err
	}
	if p.IsStudent() {
		_, err = svc.repo.GetRecord(ctx, qz.ID, p.ID)
		switch {
		case err == nil:
			res.Submitted = true
		case errors.Cause(err) != core.ErrNotFound:
			return 0, errors.Wrap(err, "getting grading record")
		}
	}
	if err = svc.guard.Authorize(p, policy.SubmitQuiz, res); err != nil {
		return 0, err
	}
	if err = sub.Validate(); err != nil {
		return 0, err
	}

	qs, err := svc.bank.ListByQuiz(ctx, qz.ID)
	if err != nil {
		return 0, errors.Wrap(err, "listing quiz questions")
	}
	if len(sub.Answers) != len(qs) {
		return 0, core.NewValidationError(nil, core.FieldError{
			Field: "answers",
			Error: fmt.Sprintf("expected %d answers, got %d", len(qs), len(sub.Answers)),
		})
	}

	rec := Record{QuizID: qz.ID, StudentID: p.ID, Score: Score(qs, sub.Answers), CreatedAt: NowFunc().UTC()}
	if err = svc.repo.CreateRecord(ctx, rec); err != nil {
		if errors.Cause(err) == core.ErrAlreadySubmitted {
			return 0, core.ErrAlreadySubmitted
		}
		return 0, errors.Wrap(err, "creating grading record")
	}
	svc.log.Info("submission graded", p, map[string]interface{}{"quiz_id": qz.ID, "score": rec.Score})

	if err = svc.notifier.Notify(ctx, p.ID, fmt.Sprintf("Quiz %d has been graded", qz.ID)); err != nil {
		svc.log.Error("notifying student", err, p)
	}
	return rec.Score, nil
}

// Feedback returns the score of a student on the quiz.
func (svc *Service) Feedback(ctx context.Context, p auth.Principal, quizID, studentID int) (int, error) {
	qz, res, err := svc.quizzes.Load(ctx, p, quizID)
	if err != nil {
		return 0, err
	}
	res.StudentID = studentID
	if err = svc.guard.Authorize(p, policy.ViewFeedback, res); err != nil {
		return 0, err
	}

	rec, err := svc.repo.GetRecord(ctx, qz.ID, studentID)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return 0, core.ErrNotGradedYet
		}
		return 0, errors.Wrap(err, "getting grading record")
	}
	return rec.Score, nil
}

// AllGrades returns one line per graded student of the quiz.
func (svc *Service) AllGrades(ctx context.Context, p auth.Principal, quizID int) ([]string, error) {
	qz, res, err := svc.quizzes.Load(ctx, p, quizID)
	if err != nil {
		return nil, err
	}
	if err = svc.guard.Authorize(p, policy.ViewGrades, res); err != nil {
		return nil, err
	}

	recs, err := svc.repo.ListByQuiz(ctx, qz.ID)
	if err != nil {
		return nil, errors.Wrap(err, "listing grading records")
	}
	lines := make([]string, 0, len(recs))
	for _, r := range recs {
		lines = append(lines, fmt.Sprintf("(ID)%d: (Grade)%d", r.StudentID, r.Score))
	}
	return lines, nil
}
