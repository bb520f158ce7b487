package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Chhotu7079/UniCore/core/grading"
	"github.com/Chhotu7079/UniCore/core/quiz"
)

type (
	QuizResponse struct {
		quiz.Quiz
		Active      bool `json:"active"`
		MinutesLeft int  `json:"minutes_left"`
	}

	ScoreResponse struct {
		QuizID    int `json:"quiz_id"`
		StudentID int `json:"student_id"`
		Score     int `json:"score"`
	}

	GradesResponse struct {
		QuizID int      `json:"quiz_id"`
		Grades []string `json:"grades"`
	}

	quizApi struct {
		quizzes  *quiz.Service
		gradings *grading.Service
	}
)

func registerQuizAPI(g *echo.Group, authed []echo.MiddlewareFunc, quizzes *quiz.Service, gradings *grading.Service) {
	api := quizApi{quizzes: quizzes, gradings: gradings}

	qg := g.Group("/quizzes/:id", authed...)
	qg.GET("", api.retrieve)
	qg.GET("/questions", api.questions)
	qg.POST("/submissions", api.submit)
	qg.GET("/grades", api.grades)
	qg.GET("/grades/:sid", api.feedback)
}

// Handlers

func (api *quizApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	qz, err := api.quizzes.Get(ctx.Request().Context(), principal(ctx), id)
	if err != nil {
		return err
	}
	now := quiz.NowFunc()
	return ctx.JSON(http.StatusOK, QuizResponse{
		Quiz:        qz,
		Active:      qz.IsActive(now),
		MinutesLeft: qz.MinutesLeft(now),
	})
}

func (api *quizApi) questions(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	qs, err := api.quizzes.Questions(ctx.Request().Context(), principal(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, qs)
}

func (api *quizApi) submit(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data grading.Submission
	if err = bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to Submission")
	}
	p := principal(ctx)
	score, err := api.gradings.Submit(ctx.Request().Context(), p, id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, ScoreResponse{QuizID: id, StudentID: p.ID, Score: score})
}

func (api *quizApi) grades(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	lines, err := api.gradings.AllGrades(ctx.Request().Context(), principal(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, GradesResponse{QuizID: id, Grades: lines})
}

func (api *quizApi) feedback(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	sid, err := intParam(ctx, "sid")
	if err != nil {
		return err
	}
	score, err := api.gradings.Feedback(ctx.Request().Context(), principal(ctx), id, sid)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ScoreResponse{QuizID: id, StudentID: sid, Score: score})
}
