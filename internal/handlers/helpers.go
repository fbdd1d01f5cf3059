package handlers

import (
	"net/http"
	"strconv"

	"github.com/PepegaBoss/foodgram-project-react/internal/apperrors"
	"github.com/PepegaBoss/foodgram-project-react/internal/middleware"
	"github.com/labstack/echo/v4"
)

// getUserIDFromContext returns the authenticated user's id, or 0 for
// anonymous requests.
func getUserIDFromContext(c echo.Context) uint {
	id, _ := middleware.UserIDFromContext(c)
	return id
}

// pathID parses a numeric path parameter. Anything else cannot name a row.
func pathID(c echo.Context, name, what string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.NotFound(what + " not found")
	}
	return uint(id), nil
}

// bindAndValidate decodes the request body into req and runs the registered
// validator on it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request payload")
	}
	return c.Validate(req)
}
