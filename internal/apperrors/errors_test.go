package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs_MatchesByCode(t *testing.T) {
	err := NotFound("recipe not found")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))

	wrapped := fmt.Errorf("load: %w", Conflict("already in favorites"))
	assert.True(t, errors.Is(wrapped, ErrConflict))
}

func TestWithCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal("store image").WithCause(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "store image: disk full", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeNotFound:     http.StatusNotFound,
		CodeConflict:     http.StatusConflict,
		CodeValidation:   http.StatusBadRequest,
		CodeForbidden:    http.StatusForbidden,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeInternal:     http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, code.HTTPStatus(), code)
	}
}

func TestFieldErrors(t *testing.T) {
	f := FieldErrors{}
	assert.True(t, f.Empty())
	f.Add("tags", "duplicate tag")
	f.Add("tags", "unknown tag")
	assert.Equal(t, []string{"duplicate tag", "unknown tag"}, f["tags"])

	err := Validation(f)
	assert.Equal(t, CodeValidation, CodeOf(err))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
}
