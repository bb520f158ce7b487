package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Chhotu7079/UniCore/core/course"
	"github.com/Chhotu7079/UniCore/core/question"
	"github.com/Chhotu7079/UniCore/core/quiz"
)

type (
	EnrolledStudentsResponse struct {
		CourseID   int   `json:"course_id"`
		StudentIDs []int `json:"student_ids"`
	}

	BulkLoadResponse struct {
		Loaded int `json:"loaded"`
	}

	ActiveQuizzesResponse struct {
		Quizzes []string `json:"quizzes"`
	}

	courseApi struct {
		courses   *course.Service
		questions *question.Service
		quizzes   *quiz.Service
	}
)

func registerCourseAPI(g *echo.Group, authed []echo.MiddlewareFunc, courses *course.Service, questions *question.Service, quizzes *quiz.Service) {
	api := courseApi{courses: courses, questions: questions, quizzes: quizzes}

	cg := g.Group("/courses", authed...)
	cg.POST("", api.create)
	cg.GET("", api.list)

	dg := cg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.delete)
	dg.POST("/enroll", api.enroll)
	dg.GET("/students", api.students)
	dg.DELETE("/students/:sid", api.unenroll)

	dg.POST("/questions", api.addQuestion)
	dg.PUT("/questions", api.bulkLoadQuestions)
	dg.GET("/questions", api.questionBank)

	dg.POST("/quizzes", api.createQuiz)
	dg.GET("/quizzes/active", api.activeQuizzes)
}

// Handlers

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	c, err := api.courses.Create(ctx.Request().Context(), principal(ctx), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *courseApi) list(ctx echo.Context) error {
	cs, err := api.courses.List(ctx.Request().Context(), principal(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cs)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	c, err := api.courses.Get(ctx.Request().Context(), principal(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data course.UpdateCourse
	if err = bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	c, err := api.courses.Update(ctx.Request().Context(), principal(ctx), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) delete(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.courses.Delete(ctx.Request().Context(), principal(ctx), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) enroll(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	e, err := api.courses.Enroll(ctx.Request().Context(), principal(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *courseApi) students(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	ids, err := api.courses.EnrolledStudents(ctx.Request().Context(), principal(ctx), id)
	if err != nil {
		return err
	}
	if ids == nil {
		ids = []int{}
	}
	return ctx.JSON(http.StatusOK, EnrolledStudentsResponse{CourseID: id, StudentIDs: ids})
}

func (api *courseApi) unenroll(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	sid, err := intParam(ctx, "sid")
	if err != nil {
		return err
	}
	if err = api.courses.Unenroll(ctx.Request().Context(), principal(ctx), id, sid); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) addQuestion(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data question.NewQuestion
	if err = bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	q, err := api.questions.Add(ctx.Request().Context(), principal(ctx), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, q)
}

func (api *courseApi) bulkLoadQuestions(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data []question.NewQuestion
	if err = bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to []NewQuestion")
	}
	n, err := api.questions.BulkLoad(ctx.Request().Context(), principal(ctx), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, BulkLoadResponse{Loaded: n})
}

func (api *courseApi) questionBank(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	qs, err := api.questions.CourseBank(ctx.Request().Context(), principal(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, qs)
}

func (api *courseApi) createQuiz(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data quiz.NewQuiz
	if err = bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to NewQuiz")
	}
	qz, err := api.quizzes.Create(ctx.Request().Context(), principal(ctx), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, qz)
}

func (api *courseApi) activeQuizzes(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	lines, err := api.quizzes.ListActive(ctx.Request().Context(), principal(ctx), id)
	if err != nil {
		return err
	}
	if lines == nil {
		lines = []string{}
	}
	return ctx.JSON(http.StatusOK, ActiveQuizzesResponse{Quizzes: lines})
}
