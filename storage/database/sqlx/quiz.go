package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/quiz"
)

type quizRow struct {
	ID            int       `db:"id"`
	CourseID      int       `db:"course_id"`
	Title         string    `db:"title"`
	QuestionCount int       `db:"question_count"`
	Randomized    bool      `db:"randomized"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r quizRow) quiz() quiz.Quiz {
	return quiz.Quiz{
		ID:            r.ID,
		CourseID:      r.CourseID,
		Title:         r.Title,
		QuestionCount: r.QuestionCount,
		Randomized:    r.Randomized,
		CreatedAt:     r.CreatedAt.UTC(),
	}
}

const quizColumns = "id, course_id, title, question_count, randomized, created_at"

type quizRepository struct {
	repository
}

var _ quiz.Repository = (*quizRepository)(nil)

func NewQuizRepository(db *sqlx.DB) quiz.Repository {
	return &quizRepository{repository{db: db}}
}

func (repo *quizRepository) CreateQuiz(ctx context.Context, q quiz.Quiz) (quiz.Quiz, error) {
	err := repo.conn(ctx).QueryRowxContext(ctx,
		`INSERT INTO quizzes (course_id, title, question_count, randomized, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		q.CourseID, q.Title, q.QuestionCount, q.Randomized, q.CreatedAt,
	).Scan(&q.ID)
	if err != nil {
		return quiz.Quiz{}, errors.Wrap(err, "inserting quiz")
	}
	return q, nil
}

func (repo *quizRepository) GetQuiz(ctx context.Context, id int) (quiz.Quiz, error) {
	var row quizRow
	if err := repo.conn(ctx).GetContext(ctx, &row, "SELECT "+quizColumns+" FROM quizzes WHERE id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return quiz.Quiz{}, core.ErrNotFound
		}
		return quiz.Quiz{}, errors.Wrap(err, "selecting quiz")
	}
	return row.quiz(), nil
}

func (repo *quizRepository) ListByCourse(ctx context.Context, courseID int) ([]quiz.Quiz, error) {
	rows := make([]quizRow, 0)
	if err := repo.conn(ctx).SelectContext(ctx, &rows, "SELECT "+quizColumns+" FROM quizzes WHERE course_id = $1 ORDER BY id", courseID); err != nil {
		return nil, errors.Wrap(err, "selecting quizzes")
	}
	qs := make([]quiz.Quiz, 0, len(rows))
	for _, row := range rows {
		qs = append(qs, row.quiz())
	}
	return qs, nil
}

func (repo *quizRepository) CountByCourse(ctx context.Context, courseID int) (int, error) {
	var n int
	if err := repo.conn(ctx).GetContext(ctx, &n, "SELECT COUNT(*) FROM quizzes WHERE course_id = $1", courseID); err != nil {
		return 0, errors.Wrap(err, "counting quizzes")
	}
	return n, nil
}
