// Package testutil wires in-memory repositories and services for tests.
package testutil

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/mail"
	"testing"
	"time"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/assignment"
	"github.com/Chhotu7079/UniCore/core/auth"
	"github.com/Chhotu7079/UniCore/core/course"
	"github.com/Chhotu7079/UniCore/core/grading"
	"github.com/Chhotu7079/UniCore/core/lesson"
	"github.com/Chhotu7079/UniCore/core/notification"
	"github.com/Chhotu7079/UniCore/core/question"
	"github.com/Chhotu7079/UniCore/core/quiz"
	"github.com/Chhotu7079/UniCore/core/user"
	"github.com/Chhotu7079/UniCore/services/email"
	"github.com/Chhotu7079/UniCore/services/logger"
	"github.com/Chhotu7079/UniCore/storage/database/inmem"
)

// Conf returns a config suitable for tests.
func Conf() *core.Config {
	return &core.Config{
		AppName:          "UniCore",
		Env:              "test",
		TestMode:         true,
		SecretKey:        "test-secret",
		DefaultFromEmail: mail.Address{Name: "UniCore", Address: "noreply@unicore.test"},
		Server: core.ServerConfig{
			ShutdownTimeout:    5 * time.Second,
			JWTExpirationDelta: time.Hour,
		},
	}
}

// Env bundles an in-memory database with every repository and service built on it.
type Env struct {
	DB     *inmemdb.DB
	Mailer *emailsvc.ConsoleService
	Logger *logsvc.MemoryLogger

	Accounts      user.Repository
	Courses       course.Repository
	Questions     question.Repository
	Quizzes       quiz.Repository
	Gradings      grading.Repository
	Notifications notification.Repository
	Lessons       lesson.Repository
	Assignments   assignment.Repository

	UserSvc         *user.Service
	CourseSvc       *course.Service
	QuestionSvc     *question.Service
	QuizSvc         *quiz.Service
	GradingSvc      *grading.Service
	NotificationSvc *notification.Service
	LessonSvc       *lesson.Service
	AssignmentSvc   *assignment.Service
}

func NewEnv(t *testing.T) *Env {
	t.Helper()
	db := inmemdb.Open()
	env := &Env{
		DB:            db,
		Mailer:        emailsvc.NewConsoleServiceMock(log.New(io.Discard, "", 0), Conf()),
		Logger:        logsvc.NewMemoryLogger(),
		Accounts:      inmemdb.NewAccountRepository(db),
		Courses:       inmemdb.NewCourseRepository(db),
		Questions:     inmemdb.NewQuestionRepository(db),
		Quizzes:       inmemdb.NewQuizRepository(db),
		Gradings:      inmemdb.NewGradingRepository(db),
		Notifications: inmemdb.NewNotificationRepository(db),
		Lessons:       inmemdb.NewLessonRepository(db),
		Assignments:   inmemdb.NewAssignmentRepository(db),
	}
	env.UserSvc = user.NewService(env.Accounts)
	env.NotificationSvc = notification.NewService(env.Notifications, env.UserSvc, env.Mailer, env.Logger)
	env.CourseSvc = course.NewService(env.Courses, env.UserSvc, env.NotificationSvc, env.Logger)
	env.QuestionSvc = question.NewService(env.Questions, env.Courses, db, env.Logger)
	env.QuizSvc = quiz.NewService(env.Quizzes, env.Questions, env.Courses, db, env.NotificationSvc, env.Logger)
	env.GradingSvc = grading.NewService(env.Gradings, env.QuizSvc, env.Questions, env.NotificationSvc, env.Logger)
	env.LessonSvc = lesson.NewService(env.Lessons, env.Courses, env.Logger)
	env.AssignmentSvc = assignment.NewService(env.Assignments, env.Courses, env.NotificationSvc, env.Logger)
	return env
}

func CreateAccount(t *testing.T, repo user.Repository, name, email, pwd string, role auth.Role) user.Account {
	t.Helper()
	acc := user.Account{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if pwd != "" {
		if err := acc.SetPassword(pwd); err != nil {
			t.Fatalf("CreateAccount() failed: %v", err)
		}
	}
	acc, err := repo.CreateAccount(context.Background(), acc)
	if err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}
	return acc
}

func CreateCourse(t *testing.T, repo course.Repository, name string, instructorID int) course.Course {
	t.Helper()
	c, err := repo.CreateCourse(context.Background(), course.Course{
		Name:         name,
		InstructorID: instructorID,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return c
}

func Enroll(t *testing.T, repo course.Repository, studentID, courseID int) {
	t.Helper()
	e := course.Enrollment{StudentID: studentID, CourseID: courseID, CreatedAt: time.Now().UTC()}
	if err := repo.CreateEnrollment(context.Background(), e); err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
}

// CreateQuestions adds n unbound questions of typ to the course bank.
// Question i has the correct answer "A<i>".
func CreateQuestions(t *testing.T, repo question.Repository, courseID int, typ question.Type, n int) []question.Question {
	t.Helper()
	qs := make([]question.Question, 0, n)
	for i := 0; i < n; i++ {
		q, err := repo.CreateQuestion(context.Background(), question.Question{
			CourseID:      courseID,
			Type:          typ,
			Text:          fmt.Sprintf("question %d", i),
			Options:       []string{fmt.Sprintf("A%d", i), "B", "C"},
			CorrectAnswer: fmt.Sprintf("A%d", i),
		})
		if err != nil {
			t.Fatalf("CreateQuestions() failed: %v", err)
		}
		qs = append(qs, q)
	}
	return qs
}
