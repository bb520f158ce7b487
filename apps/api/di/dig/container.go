package dig_container

import (
	"fmt"
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/Chhotu7079/UniCore/apps/api/echo"
	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/assignment"
	"github.com/Chhotu7079/UniCore/core/course"
	"github.com/Chhotu7079/UniCore/core/grading"
	"github.com/Chhotu7079/UniCore/core/lesson"
	"github.com/Chhotu7079/UniCore/core/notification"
	"github.com/Chhotu7079/UniCore/core/question"
	"github.com/Chhotu7079/UniCore/core/quiz"
	"github.com/Chhotu7079/UniCore/core/user"
	emailsvc "github.com/Chhotu7079/UniCore/services/email"
	logsvc "github.com/Chhotu7079/UniCore/services/logger"
	"github.com/Chhotu7079/UniCore/storage/database"
	sqlxrepos "github.com/Chhotu7079/UniCore/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type serverParams struct {
	dig.In
	Conf            *core.Config
	Logger          core.Logger
	UserSvc         *user.Service
	CourseSvc       *course.Service
	QuestionSvc     *question.Service
	QuizSvc         *quiz.Service
	GradingSvc      *grading.Service
	NotificationSvc *notification.Service
	LessonSvc       *lesson.Service
	AssignmentSvc   *assignment.Service
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db.DB); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newTransactor(db *sqlx.DB) core.Transactor {
	return database.NewTransactor(db)
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(log.New(os.Stdout, "EMAIL : ", log.LstdFlags), conf)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newNotificationService(repo notification.Repository, accounts *user.Service, mailer core.EmailService, logger core.Logger) *notification.Service {
	return notification.NewService(repo, accounts, mailer, logger)
}

func newCourseService(repo course.Repository, accounts *user.Service, notifier *notification.Service, logger core.Logger) *course.Service {
	return course.NewService(repo, accounts, notifier, logger)
}

func newQuestionService(repo question.Repository, courses course.Repository, tx core.Transactor, logger core.Logger) *question.Service {
	return question.NewService(repo, courses, tx, logger)
}

func newLessonService(repo lesson.Repository, courses course.Repository, logger core.Logger) *lesson.Service {
	return lesson.NewService(repo, courses, logger)
}

func newAssignmentService(
	repo assignment.Repository,
	courses course.Repository,
	notifier *notification.Service,
	logger core.Logger,
) *assignment.Service {
	return assignment.NewService(repo, courses, notifier, logger)
}

func newQuizService(
	repo quiz.Repository,
	bank question.Repository,
	courses course.Repository,
	tx core.Transactor,
	notifier *notification.Service,
	logger core.Logger,
) *quiz.Service {
	return quiz.NewService(repo, bank, courses, tx, notifier, logger)
}

func newGradingService(
	repo grading.Repository,
	quizzes *quiz.Service,
	bank question.Repository,
	notifier *notification.Service,
	logger core.Logger,
) *grading.Service {
	return grading.NewService(repo, quizzes, bank, notifier, logger)
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(p.Conf, p.Logger, &echoapi.Options{
		UserSvc:         p.UserSvc,
		CourseSvc:       p.CourseSvc,
		QuestionSvc:     p.QuestionSvc,
		QuizSvc:         p.QuizSvc,
		GradingSvc:      p.GradingSvc,
		NotificationSvc: p.NotificationSvc,
		LessonSvc:       p.LessonSvc,
		AssignmentSvc:   p.AssignmentSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newTransactor))
	must(c.Provide(newEmailService))

	must(c.Provide(sqlxrepos.NewAccountRepository))
	must(c.Provide(sqlxrepos.NewCourseRepository))
	must(c.Provide(sqlxrepos.NewQuestionRepository))
	must(c.Provide(sqlxrepos.NewQuizRepository))
	must(c.Provide(sqlxrepos.NewGradingRepository))
	must(c.Provide(sqlxrepos.NewNotificationRepository))
	must(c.Provide(sqlxrepos.NewLessonRepository))
	must(c.Provide(sqlxrepos.NewAssignmentRepository))

	must(c.Provide(user.NewService))
	must(c.Provide(newNotificationService))
	must(c.Provide(newCourseService))
	must(c.Provide(newQuestionService))
	must(c.Provide(newQuizService))
	must(c.Provide(newGradingService))
	must(c.Provide(newLessonService))
	must(c.Provide(newAssignmentService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
