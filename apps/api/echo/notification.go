package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Chhotu7079/UniCore/core/notification"
)

type notificationApi struct {
	svc *notification.Service
}

func registerNotificationAPI(g *echo.Group, authed []echo.MiddlewareFunc, svc *notification.Service) {
	api := notificationApi{svc: svc}
	g.GET("/users/:id/notifications", api.list, authed...)
}

// list returns the user's notifications, newest first, and marks them read.
// ?unread=true restricts the list to unread ones.
func (api *notificationApi) list(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	ns, err := api.svc.List(ctx.Request().Context(), principal(ctx), id, boolQuery(ctx, "unread"))
	if err != nil {
		return err
	}
	if ns == nil {
		ns = []notification.Notification{}
	}
	return ctx.JSON(http.StatusOK, ns)
}
