package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/assignment"
)

type submissionRow struct {
	AssignmentID int          `db:"assignment_id"`
	StudentID    int          `db:"student_id"`
	Content      string       `db:"content"`
	Grade        null.Float64 `db:"grade"`
	Feedback     string       `db:"feedback"`
	CreatedAt    time.Time    `db:"created_at"`
}

func (r submissionRow) submission() assignment.Submission {
	s := assignment.Submission{
		AssignmentID: r.AssignmentID,
		StudentID:    r.StudentID,
		Content:      r.Content,
		Feedback:     r.Feedback,
		CreatedAt:    r.CreatedAt.UTC(),
	}
	if r.Grade.Valid {
		s.Grade = r.Grade.Ptr()
	}
	return s
}

const (
	assignmentColumns = "id, course_id, title, description, due_date, created_at"
	submissionColumns = "assignment_id, student_id, content, grade, feedback, created_at"
)

type assignmentRepository struct {
	repository
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *sqlx.DB) assignment.Repository {
	return &assignmentRepository{repository{db: db}}
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	err := repo.conn(ctx).QueryRowxContext(ctx, `
		INSERT INTO assignments (course_id, title, description, due_date, created_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		a.CourseID, a.Title, a.Description, a.DueDate, a.CreatedAt,
	).Scan(&a.ID)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return a, nil
}

func scanAssignment(row interface{ Scan(...interface{}) error }) (assignment.Assignment, error) {
	var a assignment.Assignment
	if err := row.Scan(&a.ID, &a.CourseID, &a.Title, &a.Description, &a.DueDate, &a.CreatedAt); err != nil {
		return assignment.Assignment{}, err
	}
	a.DueDate, a.CreatedAt = a.DueDate.UTC(), a.CreatedAt.UTC()
	return a, nil
}

func (repo *assignmentRepository) GetAssignment(ctx context.Context, id int) (assignment.Assignment, error) {
	a, err := scanAssignment(repo.conn(ctx).QueryRowxContext(ctx,
		"SELECT "+assignmentColumns+" FROM assignments WHERE id = $1", id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return assignment.Assignment{}, core.ErrNotFound
		}
		return assignment.Assignment{}, errors.Wrap(err, "selecting assignment")
	}
	return a, nil
}

func (repo *assignmentRepository) ListByCourse(ctx context.Context, courseID int) ([]assignment.Assignment, error) {
	rows, err := repo.conn(ctx).QueryxContext(ctx,
		"SELECT "+assignmentColumns+" FROM assignments WHERE course_id = $1 ORDER BY id", courseID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting assignments")
	}
	defer func() { _ = rows.Close() }()

	as := make([]assignment.Assignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning assignment")
		}
		as = append(as, a)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "selecting assignments")
	}
	return as, nil
}

// CreateSubmission relies on the (assignment_id, student_id) primary key to reject a second submission.
func (repo *assignmentRepository) CreateSubmission(ctx context.Context, s assignment.Submission) error {
	_, err := repo.conn(ctx).ExecContext(ctx, `
		INSERT INTO assignment_submissions (assignment_id, student_id, content, grade, feedback, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		s.AssignmentID, s.StudentID, s.Content, null.Float64FromPtr(s.Grade), s.Feedback, s.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrDuplicate
		}
		return errors.Wrap(err, "inserting submission")
	}
	return nil
}

func (repo *assignmentRepository) GetSubmission(ctx context.Context, assignmentID, studentID int) (assignment.Submission, error) {
	var row submissionRow
	err := repo.conn(ctx).GetContext(ctx, &row,
		"SELECT "+submissionColumns+" FROM assignment_submissions WHERE assignment_id = $1 AND student_id = $2",
		assignmentID, studentID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return assignment.Submission{}, core.ErrNotFound
		}
		return assignment.Submission{}, errors.Wrap(err, "selecting submission")
	}
	return row.submission(), nil
}

func (repo *assignmentRepository) ListSubmissions(ctx context.Context, assignmentID int) ([]assignment.Submission, error) {
	rows := make([]submissionRow, 0)
	err := repo.conn(ctx).SelectContext(ctx, &rows,
		"SELECT "+submissionColumns+" FROM assignment_submissions WHERE assignment_id = $1 ORDER BY student_id",
		assignmentID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting submissions")
	}
	subs := make([]assignment.Submission, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, row.submission())
	}
	return subs, nil
}

func (repo *assignmentRepository) SetGrade(ctx context.Context, assignmentID, studentID int, grade float64) error {
	res, err := repo.conn(ctx).ExecContext(ctx,
		`UPDATE assignment_submissions SET grade = $3 WHERE assignment_id = $1 AND student_id = $2`,
		assignmentID, studentID, grade,
	)
	return affectedOne(res, err, "grading submission")
}

func (repo *assignmentRepository) SetFeedback(ctx context.Context, assignmentID, studentID int, feedback string) error {
	res, err := repo.conn(ctx).ExecContext(ctx,
		`UPDATE assignment_submissions SET feedback = $3 WHERE assignment_id = $1 AND student_id = $2`,
		assignmentID, studentID, feedback,
	)
	return affectedOne(res, err, "saving feedback")
}
