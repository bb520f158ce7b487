package inmemdb

import (
	"context"
	"sort"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/question"
)

type questionRepository struct {
	db *DB
}

var _ question.Repository = (*questionRepository)(nil)

func NewQuestionRepository(db *DB) question.Repository {
	return &questionRepository{db: db}
}

func copyQuestion(q question.Question) question.Question {
	if q.Options != nil {
		opts := make([]string, len(q.Options))
		copy(opts, q.Options)
		q.Options = opts
	}
	return q
}

func (repo *questionRepository) CreateQuestion(ctx context.Context, q question.Question) (question.Question, error) {
	defer repo.db.lock(ctx)()
	t := repo.db.t

	if q.ID == 0 {
		q.ID = t.nextID("questions")
	} else if _, ok := t.questions[q.ID]; ok {
		return question.Question{}, core.ErrDuplicate
	} else {
		t.bumpSeq("questions", q.ID)
	}
	q.QuizID = 0
	t.questions[q.ID] = copyQuestion(q)
	return q, nil
}

func (repo *questionRepository) UpsertQuestion(ctx context.Context, q question.Question) (question.Question, error) {
	defer repo.db.lock(ctx)()
	t := repo.db.t

	existing, ok := t.questions[q.ID]
	switch {
	case q.ID == 0:
		q.ID = t.nextID("questions")
		q.QuizID = 0
	case ok:
		if existing.CourseID != q.CourseID {
			return question.Question{}, core.NewPermissionError("question belongs to another course")
		}
		q.QuizID = existing.QuizID
	default:
		t.bumpSeq("questions", q.ID)
		q.QuizID = 0
	}
	t.questions[q.ID] = copyQuestion(q)
	return q, nil
}

func (repo *questionRepository) GetQuestion(ctx context.Context, id int) (question.Question, error) {
	defer repo.db.lock(ctx)()
	if q, ok := repo.db.t.questions[id]; ok {
		return copyQuestion(q), nil
	}
	return question.Question{}, core.ErrNotFound
}

func (repo *questionRepository) filter(match func(q question.Question) bool) []question.Question {
	qs := make([]question.Question, 0)
	for _, q := range repo.db.t.questions {
		if match(q) {
			qs = append(qs, copyQuestion(q))
		}
	}
	sort.Slice(qs, func(i, j int) bool { return qs[i].ID < qs[j].ID })
	return qs
}

func (repo *questionRepository) FindUnbound(ctx context.Context, courseID int, typ question.Type) ([]question.Question, error) {
	defer repo.db.lock(ctx)()
	return repo.filter(func(q question.Question) bool {
		return q.CourseID == courseID && q.Type == typ && !q.IsBound()
	}), nil
}

func (repo *questionRepository) Bind(ctx context.Context, ids []int, quizID int) ([]int, error) {
	defer repo.db.lock(ctx)()
	t := repo.db.t

	pos := 0
	for qid, p := range t.positions {
		if t.questions[qid].QuizID == quizID && p > pos {
			pos = p
		}
	}

	claimed := make([]int, 0, len(ids))
	for _, id := range ids {
		q, ok := t.questions[id]
		if !ok || q.IsBound() {
			continue
		}
		pos++
		q.QuizID = quizID
		t.questions[id] = q
		t.positions[id] = pos
		claimed = append(claimed, id)
	}
	return claimed, nil
}

func (repo *questionRepository) ListByQuiz(ctx context.Context, quizID int) ([]question.Question, error) {
	defer repo.db.lock(ctx)()
	t := repo.db.t
	qs := repo.filter(func(q question.Question) bool { return q.QuizID == quizID && quizID != 0 })
	sort.SliceStable(qs, func(i, j int) bool { return t.positions[qs[i].ID] < t.positions[qs[j].ID] })
	return qs, nil
}

func (repo *questionRepository) ListByCourse(ctx context.Context, courseID int) ([]question.Question, error) {
	defer repo.db.lock(ctx)()
	return repo.filter(func(q question.Question) bool { return q.CourseID == courseID }), nil
}
