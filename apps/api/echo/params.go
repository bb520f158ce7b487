package echoapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// intParam reads a numeric path param. Non-numeric ids cannot match any row.
func intParam(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id < 1 {
		return 0, errHttpNotFound
	}
	return id, nil
}

func boolQuery(ctx echo.Context, name string) bool {
	b, _ := strconv.ParseBool(ctx.QueryParam(name))
	return b
}

// bindBody decodes the JSON body only. echo's Bind also maps path params
// onto struct fields, which would leak the route ids into request payloads.
func bindBody(ctx echo.Context, v interface{}) error {
	req := ctx.Request()
	if req.ContentLength == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "request body can't be empty")
	}
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}
	return nil
}
