package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/question"
)

type questionRow struct {
	ID            int            `db:"id"`
	CourseID      int            `db:"course_id"`
	Type          int            `db:"type"`
	Text          string         `db:"text"`
	Options       types.JSONText `db:"options"`
	CorrectAnswer string         `db:"correct_answer"`
	QuizID        null.Int       `db:"quiz_id"`
}

func (r questionRow) question() (question.Question, error) {
	q := question.Question{
		ID:            r.ID,
		CourseID:      r.CourseID,
		Type:          question.Type(r.Type),
		Text:          r.Text,
		CorrectAnswer: r.CorrectAnswer,
		QuizID:        r.QuizID.Int,
	}
	if err := r.Options.Unmarshal(&q.Options); err != nil {
		return question.Question{}, errors.Wrap(err, "decoding options")
	}
	return q, nil
}

func encodeOptions(opts []string) (types.JSONText, error) {
	if opts == nil {
		opts = []string{}
	}
	b, err := json.Marshal(opts)
	if err != nil {
		return nil, errors.Wrap(err, "encoding options")
	}
	return types.JSONText(b), nil
}

const questionColumns = "id, course_id, type, text, options, correct_answer, quiz_id"

type questionRepository struct {
	repository
}

var _ question.Repository = (*questionRepository)(nil)

func NewQuestionRepository(db *sqlx.DB) question.Repository {
	return &questionRepository{repository{db: db}}
}

func (repo *questionRepository) CreateQuestion(ctx context.Context, q question.Question) (question.Question, error) {
	opts, err := encodeOptions(q.Options)
	if err != nil {
		return question.Question{}, err
	}
	conn := repo.conn(ctx)
	q.QuizID = 0

	if q.ID == 0 {
		err = conn.QueryRowxContext(ctx,
			`INSERT INTO questions (course_id, type, text, options, correct_answer) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			q.CourseID, int(q.Type), q.Text, opts, q.CorrectAnswer,
		).Scan(&q.ID)
	} else {
		_, err = conn.ExecContext(ctx,
			`INSERT INTO questions (id, course_id, type, text, options, correct_answer) VALUES ($1, $2, $3, $4, $5, $6)`,
			q.ID, q.CourseID, int(q.Type), q.Text, opts, q.CorrectAnswer,
		)
		if err == nil {
			err = resetSequence(ctx, conn, "questions")
		}
	}
	if err != nil {
		if isUniqueViolation(err) {
			return question.Question{}, core.ErrDuplicate
		}
		return question.Question{}, errors.Wrap(err, "inserting question")
	}
	return q, nil
}

func (repo *questionRepository) UpsertQuestion(ctx context.Context, q question.Question) (question.Question, error) {
	if q.ID == 0 {
		return repo.CreateQuestion(ctx, q)
	}
	opts, err := encodeOptions(q.Options)
	if err != nil {
		return question.Question{}, err
	}

	conn := repo.conn(ctx)
	var quizID null.Int
	err = conn.QueryRowxContext(ctx, `
		INSERT INTO questions (id, course_id, type, text, options, correct_answer) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			type = EXCLUDED.type,
			text = EXCLUDED.text,
			options = EXCLUDED.options,
			correct_answer = EXCLUDED.correct_answer
		WHERE questions.course_id = EXCLUDED.course_id
		RETURNING quiz_id`,
		q.ID, q.CourseID, int(q.Type), q.Text, opts, q.CorrectAnswer,
	).Scan(&quizID)
	if err != nil {
		if err == sql.ErrNoRows { // the conflicting row belongs to another course
			return question.Question{}, core.NewPermissionError("question belongs to another course")
		}
		return question.Question{}, errors.Wrap(err, "upserting question")
	}
	if err = resetSequence(ctx, conn, "questions"); err != nil {
		return question.Question{}, errors.Wrap(err, "resetting question sequence")
	}
	q.QuizID = quizID.Int
	return q, nil
}

func (repo *questionRepository) GetQuestion(ctx context.Context, id int) (question.Question, error) {
	var row questionRow
	if err := repo.conn(ctx).GetContext(ctx, &row, "SELECT "+questionColumns+" FROM questions WHERE id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return question.Question{}, core.ErrNotFound
		}
		return question.Question{}, errors.Wrap(err, "selecting question")
	}
	return row.question()
}

func (repo *questionRepository) list(ctx context.Context, query string, args ...interface{}) ([]question.Question, error) {
	rows := make([]questionRow, 0)
	if err := repo.conn(ctx).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "selecting questions")
	}
	qs := make([]question.Question, 0, len(rows))
	for _, row := range rows {
		q, err := row.question()
		if err != nil {
			return nil, err
		}
		qs = append(qs, q)
	}
	return qs, nil
}

func (repo *questionRepository) FindUnbound(ctx context.Context, courseID int, typ question.Type) ([]question.Question, error) {
	return repo.list(ctx,
		"SELECT "+questionColumns+" FROM questions WHERE course_id = $1 AND type = $2 AND quiz_id IS NULL ORDER BY id",
		courseID, int(typ),
	)
}

// Bind locks the still unbound rows in id order, skipping rows another transaction
// holds, then claims them with a single update. Locking in id order means two
// concurrent binds over overlapping ids never wait on each other in a cycle.
func (repo *questionRepository) Bind(ctx context.Context, ids []int, quizID int) ([]int, error) {
	if len(ids) == 0 {
		return []int{}, nil
	}
	conn := repo.conn(ctx)

	sorted := make([]int, len(ids))
	copy(sorted, ids)
	sort.Ints(sorted)

	locked := make([]int, 0, len(ids))
	err := conn.SelectContext(ctx, &locked, `
		SELECT id FROM questions
		WHERE id = ANY($1) AND quiz_id IS NULL
		ORDER BY id
		FOR UPDATE SKIP LOCKED`,
		pq.Array(int64s(sorted)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "locking questions")
	}
	if len(locked) == 0 {
		return []int{}, nil
	}

	var pos int
	if err = conn.GetContext(ctx, &pos, `SELECT COALESCE(MAX(position), 0) FROM questions WHERE quiz_id = $1`, quizID); err != nil {
		return nil, errors.Wrap(err, "selecting last position")
	}

	free := make(map[int]bool, len(locked))
	for _, id := range locked {
		free[id] = true
	}
	claimed := make([]int, 0, len(locked))
	positions := make([]int, 0, len(locked))
	for _, id := range ids {
		if free[id] {
			pos++
			claimed = append(claimed, id)
			positions = append(positions, pos)
			delete(free, id)
		}
	}

	res, err := conn.ExecContext(ctx, `
		UPDATE questions AS q SET quiz_id = $1, position = v.position
		FROM unnest($2::int[], $3::int[]) AS v (id, position)
		WHERE q.id = v.id AND q.quiz_id IS NULL`,
		quizID, pq.Array(int64s(claimed)), pq.Array(int64s(positions)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "binding questions")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, errors.Wrap(err, "binding questions")
	}
	if int(n) != len(claimed) {
		return nil, errors.Errorf("binding questions: claimed %d of %d locked rows", n, len(claimed))
	}
	return claimed, nil
}

func (repo *questionRepository) ListByQuiz(ctx context.Context, quizID int) ([]question.Question, error) {
	return repo.list(ctx, "SELECT "+questionColumns+" FROM questions WHERE quiz_id = $1 ORDER BY position, id", quizID)
}

func (repo *questionRepository) ListByCourse(ctx context.Context, courseID int) ([]question.Question, error) {
	return repo.list(ctx, "SELECT "+questionColumns+" FROM questions WHERE course_id = $1 ORDER BY id", courseID)
}
