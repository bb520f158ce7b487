package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/grading"
)

type gradingRepository struct {
	repository
}

var _ grading.Repository = (*gradingRepository)(nil)

func NewGradingRepository(db *sqlx.DB) grading.Repository {
	return &gradingRepository{repository{db: db}}
}

// CreateRecord relies on the (quiz_id, student_id) primary key to reject a second submission.
func (repo *gradingRepository) CreateRecord(ctx context.Context, r grading.Record) error {
	_, err := repo.conn(ctx).ExecContext(ctx,
		`INSERT INTO gradings (quiz_id, student_id, score, created_at) VALUES ($1, $2, $3, $4)`,
		r.QuizID, r.StudentID, r.Score, r.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrAlreadySubmitted
		}
		return errors.Wrap(err, "inserting grading record")
	}
	return nil
}

func (repo *gradingRepository) GetRecord(ctx context.Context, quizID, studentID int) (grading.Record, error) {
	var r grading.Record
	err := repo.conn(ctx).QueryRowxContext(ctx,
		`SELECT quiz_id, student_id, score, created_at FROM gradings WHERE quiz_id = $1 AND student_id = $2`,
		quizID, studentID,
	).Scan(&r.QuizID, &r.StudentID, &r.Score, &r.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return grading.Record{}, core.ErrNotFound
		}
		return grading.Record{}, errors.Wrap(err, "selecting grading record")
	}
	r.CreatedAt = r.CreatedAt.UTC()
	return r, nil
}

func (repo *gradingRepository) ListByQuiz(ctx context.Context, quizID int) ([]grading.Record, error) {
	rows, err := repo.conn(ctx).QueryxContext(ctx,
		`SELECT quiz_id, student_id, score, created_at FROM gradings WHERE quiz_id = $1 ORDER BY student_id`, quizID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting grading records")
	}
	defer func() { _ = rows.Close() }()

	recs := make([]grading.Record, 0)
	for rows.Next() {
		var r grading.Record
		if err = rows.Scan(&r.QuizID, &r.StudentID, &r.Score, &r.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scanning grading record")
		}
		r.CreatedAt = r.CreatedAt.UTC()
		recs = append(recs, r)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "selecting grading records")
	}
	return recs, nil
}
