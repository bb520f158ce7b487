package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Chhotu7079/UniCore/core/lesson"
)

type (
	AttendanceResponse struct {
		LessonID   int   `json:"lesson_id"`
		StudentIDs []int `json:"student_ids"`
	}

	lessonApi struct {
		lessons *lesson.Service
	}
)

func registerLessonAPI(g *echo.Group, authed []echo.MiddlewareFunc, lessons *lesson.Service) {
	api := lessonApi{lessons: lessons}

	cg := g.Group("/courses/:id/lessons", authed...)
	cg.POST("", api.create)
	cg.GET("", api.list)

	lg := g.Group("/lessons/:id", authed...)
	lg.GET("", api.retrieve)
	lg.PUT("", api.update)
	lg.DELETE("", api.delete)
	lg.POST("/attend", api.attend)
	lg.GET("/attendance", api.attendance)
}

// Handlers

func (api *lessonApi) create(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data lesson.NewLesson
	if err = bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	l, err := api.lessons.Add(ctx.Request().Context(), principal(ctx), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, l)
}

func (api *lessonApi) list(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	ls, err := api.lessons.List(ctx.Request().Context(), principal(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ls)
}

func (api *lessonApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	l, err := api.lessons.Get(ctx.Request().Context(), principal(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, l)
}

func (api *lessonApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data lesson.NewLesson
	if err = bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	l, err := api.lessons.Update(ctx.Request().Context(), principal(ctx), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, l)
}

func (api *lessonApi) delete(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.lessons.Delete(ctx.Request().Context(), principal(ctx), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *lessonApi) attend(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data lesson.Entry
	if err = bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to Entry")
	}
	if err = api.lessons.Attend(ctx.Request().Context(), principal(ctx), id, data); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *lessonApi) attendance(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	ids, err := api.lessons.Attendance(ctx.Request().Context(), principal(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, AttendanceResponse{LessonID: id, StudentIDs: ids})
}
