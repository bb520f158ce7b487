package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/lesson"
)

type lessonRow struct {
	ID          int       `db:"id"`
	CourseID    int       `db:"course_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Order       int       `db:"order"`
	OTP         string    `db:"otp"`
	Content     string    `db:"content"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r lessonRow) lesson() lesson.Lesson {
	return lesson.Lesson{
		ID:          r.ID,
		CourseID:    r.CourseID,
		Name:        r.Name,
		Description: r.Description,
		Order:       r.Order,
		OTP:         r.OTP,
		Content:     r.Content,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

const lessonColumns = `id, course_id, name, description, "order", otp, content, created_at`

type lessonRepository struct {
	repository
}

var _ lesson.Repository = (*lessonRepository)(nil)

func NewLessonRepository(db *sqlx.DB) lesson.Repository {
	return &lessonRepository{repository{db: db}}
}

func (repo *lessonRepository) CreateLesson(ctx context.Context, l lesson.Lesson) (lesson.Lesson, error) {
	err := repo.conn(ctx).QueryRowxContext(ctx, `
		INSERT INTO lessons (course_id, name, description, "order", otp, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		l.CourseID, l.Name, l.Description, l.Order, l.OTP, l.Content, l.CreatedAt,
	).Scan(&l.ID)
	if err != nil {
		return lesson.Lesson{}, errors.Wrap(err, "inserting lesson")
	}
	return l, nil
}

func (repo *lessonRepository) GetLesson(ctx context.Context, id int) (lesson.Lesson, error) {
	var row lessonRow
	if err := repo.conn(ctx).GetContext(ctx, &row, "SELECT "+lessonColumns+" FROM lessons WHERE id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return lesson.Lesson{}, core.ErrNotFound
		}
		return lesson.Lesson{}, errors.Wrap(err, "selecting lesson")
	}
	return row.lesson(), nil
}

func (repo *lessonRepository) ListByCourse(ctx context.Context, courseID int) ([]lesson.Lesson, error) {
	rows := make([]lessonRow, 0)
	err := repo.conn(ctx).SelectContext(ctx, &rows,
		"SELECT "+lessonColumns+` FROM lessons WHERE course_id = $1 ORDER BY "order", id`, courseID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting lessons")
	}
	ls := make([]lesson.Lesson, 0, len(rows))
	for _, row := range rows {
		ls = append(ls, row.lesson())
	}
	return ls, nil
}

func (repo *lessonRepository) UpdateLesson(ctx context.Context, l lesson.Lesson) error {
	res, err := repo.conn(ctx).ExecContext(ctx, `
		UPDATE lessons SET name = $2, description = $3, "order" = $4, otp = $5, content = $6
		WHERE id = $1`,
		l.ID, l.Name, l.Description, l.Order, l.OTP, l.Content,
	)
	return affectedOne(res, err, "updating lesson")
}

func (repo *lessonRepository) DeleteLesson(ctx context.Context, id int) error {
	res, err := repo.conn(ctx).ExecContext(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	return affectedOne(res, err, "deleting lesson")
}

func (repo *lessonRepository) CreateAttendance(ctx context.Context, a lesson.Attendance) error {
	_, err := repo.conn(ctx).ExecContext(ctx,
		`INSERT INTO lesson_attendance (lesson_id, student_id, created_at) VALUES ($1, $2, $3)`,
		a.LessonID, a.StudentID, a.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrDuplicate
		}
		return errors.Wrap(err, "inserting attendance")
	}
	return nil
}

func (repo *lessonRepository) ListAttendance(ctx context.Context, lessonID int) ([]int, error) {
	ids := make([]int, 0)
	err := repo.conn(ctx).SelectContext(ctx, &ids,
		`SELECT student_id FROM lesson_attendance WHERE lesson_id = $1 ORDER BY student_id`, lessonID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting attendance")
	}
	return ids, nil
}
