package inmemdb

import (
	"context"
	"sort"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/grading"
)

type gradingRepository struct {
	db *DB
}

var _ grading.Repository = (*gradingRepository)(nil)

func NewGradingRepository(db *DB) grading.Repository {
	return &gradingRepository{db: db}
}

func (repo *gradingRepository) CreateRecord(ctx context.Context, r grading.Record) error {
	defer repo.db.lock(ctx)()
	key := gradingKey{r.QuizID, r.StudentID}
	if _, ok := repo.db.t.gradings[key]; ok {
		return core.ErrAlreadySubmitted
	}
	repo.db.t.gradings[key] = r
	return nil
}

func (repo *gradingRepository) GetRecord(ctx context.Context, quizID, studentID int) (grading.Record, error) {
	defer repo.db.lock(ctx)()
	if r, ok := repo.db.t.gradings[gradingKey{quizID, studentID}]; ok {
		return r, nil
	}
	return grading.Record{}, core.ErrNotFound
}

func (repo *gradingRepository) ListByQuiz(ctx context.Context, quizID int) ([]grading.Record, error) {
	defer repo.db.lock(ctx)()
	recs := make([]grading.Record, 0)
	for key, r := range repo.db.t.gradings {
		if key.quizID == quizID {
			recs = append(recs, r)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].StudentID < recs[j].StudentID })
	return recs, nil
}
