package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/PepegaBoss/foodgram-project-react/internal/apperrors"
	"github.com/PepegaBoss/foodgram-project-react/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HTTPErrorHandler renders errors as {"detail": msg}, or {"errors": {...}}
// for field validation failures.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		logger.L.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, body)
	}
	if werr != nil {
		logger.L.Warn("failed to write error response", zap.Error(werr))
	}
}

func errorResponse(err error) (int, echo.Map) {
	var ae *apperrors.Error
	if errors.As(err, &ae) {
		switch {
		case ae.Code == apperrors.CodeValidation && len(ae.Fields) > 0:
			return ae.HTTPStatus(), echo.Map{"errors": ae.Fields}
		case ae.Code == apperrors.CodeInternal:
			return ae.HTTPStatus(), echo.Map{"detail": "internal server error"}
		}
		return ae.HTTPStatus(), echo.Map{"detail": ae.Message}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = fmt.Sprint(he.Message)
		}
		return he.Code, echo.Map{"detail": msg}
	}

	return http.StatusInternalServerError, echo.Map{"detail": "internal server error"}
}
