package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/assignment"
	"github.com/Chhotu7079/UniCore/core/course"
	"github.com/Chhotu7079/UniCore/core/grading"
	"github.com/Chhotu7079/UniCore/core/lesson"
	"github.com/Chhotu7079/UniCore/core/notification"
	"github.com/Chhotu7079/UniCore/core/question"
	"github.com/Chhotu7079/UniCore/core/quiz"
	"github.com/Chhotu7079/UniCore/core/user"
)

type (
	Options struct {
		DisableReqLogs bool

		UserSvc         *user.Service
		CourseSvc       *course.Service
		QuestionSvc     *question.Service
		QuizSvc         *quiz.Service
		GradingSvc      *grading.Service
		NotificationSvc *notification.Service
		LessonSvc       *lesson.Service
		AssignmentSvc   *assignment.Service
	}

	Server struct {
		conf     *core.Config
		logger   core.Logger
		opts     *Options
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(conf *core.Config, logger core.Logger, opts *Options) *Server {
	s := &Server{
		conf:     conf,
		logger:   logger,
		opts:     opts,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.logger, s.signalShutdown)
	s.app.Debug = s.conf.Debug

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	authed := []echo.MiddlewareFunc{middleware.JWTWithConfig(appJWTConfig(s.conf)), principalMiddleware}

	registerAuthAPI(v1, s.conf, s.opts.UserSvc)
	registerCourseAPI(v1, authed, s.opts.CourseSvc, s.opts.QuestionSvc, s.opts.QuizSvc)
	registerQuizAPI(v1, authed, s.opts.QuizSvc, s.opts.GradingSvc)
	registerNotificationAPI(v1, authed, s.opts.NotificationSvc)
	registerLessonAPI(v1, authed, s.opts.LessonSvc)
	registerAssignmentAPI(v1, authed, s.opts.AssignmentSvc)
}

// Start blocks until the listener stops. A listener failure is reported on Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.conf.AppName+" API!")
}
