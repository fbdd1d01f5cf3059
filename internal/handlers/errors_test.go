package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PepegaBoss/foodgram-project-react/internal/apperrors"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	HTTPErrorHandler(err, c)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHTTPErrorHandler(t *testing.T) {
	status, body := render(t, apperrors.NotFound("recipe not found"))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "recipe not found", body["detail"])

	status, body = render(t, apperrors.Conflict("already there"))
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "already there", body["detail"])

	status, body = render(t, apperrors.Validation(apperrors.FieldErrors{"tags": {"tags required"}}))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, map[string]any{"tags": []any{"tags required"}}, body["errors"])

	status, body = render(t, echo.NewHTTPError(http.StatusMethodNotAllowed, "nope"))
	assert.Equal(t, http.StatusMethodNotAllowed, status)
	assert.Equal(t, "nope", body["detail"])

	status, body = render(t, errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", body["detail"], "internals are not leaked")

	status, _ = render(t, apperrors.Forbidden("not yours"))
	assert.Equal(t, http.StatusForbidden, status)
}
