package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/course"
)

type courseRepository struct {
	repository
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{repository{db: db}}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	err := repo.conn(ctx).QueryRowxContext(ctx,
		`INSERT INTO courses (name, description, duration, instructor_id, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		c.Name, c.Description, c.Duration, c.InstructorID, c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return c, nil
}

const courseColumns = "id, name, description, duration, instructor_id, created_at"

func (repo *courseRepository) GetCourse(ctx context.Context, id int) (course.Course, error) {
	var c course.Course
	err := repo.conn(ctx).QueryRowxContext(ctx, "SELECT "+courseColumns+" FROM courses WHERE id = $1", id).
		Scan(&c.ID, &c.Name, &c.Description, &c.Duration, &c.InstructorID, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, core.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "selecting course")
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

func (repo *courseRepository) IsEnrolled(ctx context.Context, studentID, courseID int) (bool, error) {
	var found bool
	err := repo.conn(ctx).GetContext(ctx, &found,
		`SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2)`,
		studentID, courseID,
	)
	if err != nil {
		return false, errors.Wrap(err, "checking enrollment")
	}
	return found, nil
}

func (repo *courseRepository) CreateEnrollment(ctx context.Context, e course.Enrollment) error {
	_, err := repo.conn(ctx).ExecContext(ctx,
		`INSERT INTO enrollments (student_id, course_id, created_at) VALUES ($1, $2, $3)`,
		e.StudentID, e.CourseID, e.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrDuplicate
		}
		return errors.Wrap(err, "inserting enrollment")
	}
	return nil
}

func (repo *courseRepository) DeleteEnrollment(ctx context.Context, studentID, courseID int) error {
	res, err := repo.conn(ctx).ExecContext(ctx,
		`DELETE FROM enrollments WHERE student_id = $1 AND course_id = $2`, studentID, courseID,
	)
	return affectedOne(res, err, "deleting enrollment")
}

func (repo *courseRepository) ListEnrolledStudents(ctx context.Context, courseID int) ([]int, error) {
	ids := make([]int, 0)
	err := repo.conn(ctx).SelectContext(ctx, &ids,
		`SELECT student_id FROM enrollments WHERE course_id = $1 ORDER BY student_id`, courseID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting enrollments")
	}
	return ids, nil
}

func (repo *courseRepository) ListCourses(ctx context.Context) ([]course.Course, error) {
	rows, err := repo.conn(ctx).QueryxContext(ctx, "SELECT "+courseColumns+" FROM courses ORDER BY id")
	if err != nil {
		return nil, errors.Wrap(err, "selecting courses")
	}
	defer func() { _ = rows.Close() }()

	cs := make([]course.Course, 0)
	for rows.Next() {
		var c course.Course
		if err = rows.Scan(&c.ID, &c.Name, &c.Description, &c.Duration, &c.InstructorID, &c.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scanning course")
		}
		c.CreatedAt = c.CreatedAt.UTC()
		cs = append(cs, c)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "selecting courses")
	}
	return cs, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, c course.Course) error {
	res, err := repo.conn(ctx).ExecContext(ctx,
		`UPDATE courses SET name = $2, description = $3, duration = $4 WHERE id = $1`,
		c.ID, c.Name, c.Description, c.Duration,
	)
	return affectedOne(res, err, "updating course")
}

// DeleteCourse relies on the ON DELETE CASCADE foreign keys of every course child table.
func (repo *courseRepository) DeleteCourse(ctx context.Context, id int) error {
	res, err := repo.conn(ctx).ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	return affectedOne(res, err, "deleting course")
}
