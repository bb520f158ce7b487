package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Chhotu7079/UniCore/core/assignment"
)

type (
	SubmissionsResponse struct {
		AssignmentID int      `json:"assignment_id"`
		Grades       []string `json:"grades"`
	}

	assignmentApi struct {
		assignments *assignment.Service
	}
)

func registerAssignmentAPI(g *echo.Group, authed []echo.MiddlewareFunc, assignments *assignment.Service) {
	api := assignmentApi{assignments: assignments}

	cg := g.Group("/courses/:id/assignments", authed...)
	cg.POST("", api.create)
	cg.GET("", api.list)

	ag := g.Group("/assignments/:id", authed...)
	ag.GET("", api.retrieve)
	ag.POST("/submissions", api.submit)
	ag.GET("/submissions", api.submissions)
	ag.PUT("/submissions/:sid/grade", api.grade)
	ag.PUT("/submissions/:sid/feedback", api.saveFeedback)
	ag.GET("/submissions/:sid/feedback", api.feedback)
}

// Handlers

func (api *assignmentApi) create(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data assignment.NewAssignment
	if err = bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	a, err := api.assignments.Add(ctx.Request().Context(), principal(ctx), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *assignmentApi) list(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	as, err := api.assignments.List(ctx.Request().Context(), principal(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, as)
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	a, err := api.assignments.Get(ctx.Request().Context(), principal(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) submit(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data assignment.NewSubmission
	if err = bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	s, err := api.assignments.Submit(ctx.Request().Context(), principal(ctx), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *assignmentApi) submissions(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	lines, err := api.assignments.Submissions(ctx.Request().Context(), principal(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SubmissionsResponse{AssignmentID: id, Grades: lines})
}

// ids returns the assignment id and the student id of a per-submission route.
func (api *assignmentApi) ids(ctx echo.Context) (int, int, error) {
	id, err := intParam(ctx, "id")
	if err != nil {
		return 0, 0, err
	}
	sid, err := intParam(ctx, "sid")
	if err != nil {
		return 0, 0, err
	}
	return id, sid, nil
}

func (api *assignmentApi) grade(ctx echo.Context) error {
	id, sid, err := api.ids(ctx)
	if err != nil {
		return err
	}
	var data assignment.Grade
	if err = bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to Grade")
	}
	if err = api.assignments.Grade(ctx.Request().Context(), principal(ctx), id, sid, data); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *assignmentApi) saveFeedback(ctx echo.Context) error {
	id, sid, err := api.ids(ctx)
	if err != nil {
		return err
	}
	var data assignment.Feedback
	if err = bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to Feedback")
	}
	if err = api.assignments.SaveFeedback(ctx.Request().Context(), principal(ctx), id, sid, data); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *assignmentApi) feedback(ctx echo.Context) error {
	id, sid, err := api.ids(ctx)
	if err != nil {
		return err
	}
	s, err := api.assignments.Feedback(ctx.Request().Context(), principal(ctx), id, sid)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}
