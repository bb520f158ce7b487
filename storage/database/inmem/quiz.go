package inmemdb

import (
	"context"
	"sort"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/quiz"
)

type quizRepository struct {
	db *DB
}

var _ quiz.Repository = (*quizRepository)(nil)

func NewQuizRepository(db *DB) quiz.Repository {
	return &quizRepository{db: db}
}

func (repo *quizRepository) CreateQuiz(ctx context.Context, q quiz.Quiz) (quiz.Quiz, error) {
	defer repo.db.lock(ctx)()
	t := repo.db.t
	q.ID = t.nextID("quizzes")
	t.quizzes[q.ID] = q
	return q, nil
}

func (repo *quizRepository) GetQuiz(ctx context.Context, id int) (quiz.Quiz, error) {
	defer repo.db.lock(ctx)()
	if q, ok := repo.db.t.quizzes[id]; ok {
		return q, nil
	}
	return quiz.Quiz{}, core.ErrNotFound
}

func (repo *quizRepository) ListByCourse(ctx context.Context, courseID int) ([]quiz.Quiz, error) {
	defer repo.db.lock(ctx)()
	qs := make([]quiz.Quiz, 0)
	for _, q := range repo.db.t.quizzes {
		if q.CourseID == courseID {
			qs = append(qs, q)
		}
	}
	sort.Slice(qs, func(i, j int) bool { return qs[i].ID < qs[j].ID })
	return qs, nil
}

func (repo *quizRepository) CountByCourse(ctx context.Context, courseID int) (int, error) {
	defer repo.db.lock(ctx)()
	var n int
	for _, q := range repo.db.t.quizzes {
		if q.CourseID == courseID {
			n++
		}
	}
	return n, nil
}
