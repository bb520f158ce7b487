package sqlxrepos

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/Chhotu7079/UniCore/core/auth"
	"github.com/Chhotu7079/UniCore/core/course"
	"github.com/Chhotu7079/UniCore/core/question"
	"github.com/Chhotu7079/UniCore/core/quiz"
	"github.com/Chhotu7079/UniCore/core/user"
	"github.com/Chhotu7079/UniCore/storage/database"
)

// openTestDB connects to the postgres database named by TEST_DATABASE_URL, migrates it
// and empties every table. Tests using it are skipped when the variable is not set.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	db, err := sqlx.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(db.DB))
	_, err = db.Exec(`TRUNCATE accounts, courses, enrollments, quizzes, questions, gradings, notifications,
		lessons, lesson_attendance, assignments, assignment_submissions RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return db
}

func createAccount(t *testing.T, db *sqlx.DB, name string, role auth.Role) user.Account {
	t.Helper()
	acc, err := NewAccountRepository(db).CreateAccount(context.Background(), user.Account{
		Name:         name,
		Role:         role,
		PasswordHash: []byte("-"),
		CreatedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)
	return acc
}

func createCourse(t *testing.T, db *sqlx.DB, name string, instructorID int) course.Course {
	t.Helper()
	c, err := NewCourseRepository(db).CreateCourse(context.Background(), course.Course{
		Name:         name,
		InstructorID: instructorID,
		CreatedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)
	return c
}

func createQuiz(t *testing.T, db *sqlx.DB, courseID int) quiz.Quiz {
	t.Helper()
	qz, err := NewQuizRepository(db).CreateQuiz(context.Background(), quiz.Quiz{
		CourseID:      courseID,
		Title:         "quiz",
		QuestionCount: quiz.QuestionCount,
		Randomized:    true,
		CreatedAt:     time.Now().UTC(),
	})
	require.NoError(t, err)
	return qz
}

func createQuestions(t *testing.T, db *sqlx.DB, courseID, n int) []int {
	t.Helper()
	repo := NewQuestionRepository(db)
	ids := make([]int, 0, n)
	for i := 0; i < n; i++ {
		q, err := repo.CreateQuestion(context.Background(), question.Question{
			CourseID:      courseID,
			Type:          question.MCQ,
			Text:          "q",
			Options:       []string{"a", "b"},
			CorrectAnswer: "a",
		})
		require.NoError(t, err)
		ids = append(ids, q.ID)
	}
	return ids
}
