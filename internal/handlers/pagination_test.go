package handlers

import (
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/PepegaBoss/foodgram-project-react/internal/apperrors"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageContext(target string) echo.Context {
	return echo.New().NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
}

func TestParsePage(t *testing.T) {
	p, err := parsePage(pageContext("/api/recipes"), 10)
	require.NoError(t, err)
	assert.Equal(t, pageRequest{Page: 1, Limit: 10}, p)
	assert.Zero(t, p.Offset())

	p, err = parsePage(pageContext("/api/recipes?page=3&limit=6"), 10)
	require.NoError(t, err)
	assert.Equal(t, 12, p.Offset())

	p, err = parsePage(pageContext("/api/recipes?limit=-1"), 10)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Limit)

	for _, bad := range []string{"0", "-2", "two"} {
		_, err = parsePage(pageContext("/api/recipes?page="+bad), 10)
		assert.True(t, errors.Is(err, apperrors.ErrNotFound), bad)
	}
}

func TestParsePage_OffsetOverflow(t *testing.T) {
	huge := strconv.Itoa(math.MaxInt)
	for _, target := range []string{
		"/api/recipes?page=" + huge,
		"/api/recipes?page=" + strconv.Itoa(math.MaxInt/10+2),
		"/api/recipes?page=3&limit=" + huge,
	} {
		_, err := parsePage(pageContext(target), 10)
		assert.True(t, errors.Is(err, apperrors.ErrNotFound), target)
	}

	p, err := parsePage(pageContext("/api/recipes?page=1&limit="+huge), 10)
	require.NoError(t, err)
	assert.Zero(t, p.Offset())

	p, err = parsePage(pageContext("/api/recipes?page=1099511627776"), 10)
	require.NoError(t, err)
	assert.Positive(t, p.Offset())
	_, err = newListResponse(pageContext("/api/recipes"), p, 5, []int(nil))
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestNewListResponse_Links(t *testing.T) {
	c := pageContext("http://example.com/api/recipes?page=2&limit=2&tags=lunch")
	resp, err := newListResponse(c, pageRequest{Page: 2, Limit: 2}, 5, []int{3, 4})
	require.NoError(t, err)

	assert.EqualValues(t, 5, resp.Count)
	require.NotNil(t, resp.Next)
	assert.Equal(t, "http://example.com/api/recipes?limit=2&page=3&tags=lunch", *resp.Next)
	require.NotNil(t, resp.Previous)
	assert.Equal(t, "http://example.com/api/recipes?limit=2&tags=lunch", *resp.Previous)

	resp, err = newListResponse(c, pageRequest{Page: 3, Limit: 2}, 5, []int{5})
	require.NoError(t, err)
	assert.Nil(t, resp.Next)

	_, err = newListResponse(c, pageRequest{Page: 4, Limit: 2}, 5, []int(nil))
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	empty, err := newListResponse[int](pageContext("/api/recipes"), pageRequest{Page: 1, Limit: 2}, 0, nil)
	require.NoError(t, err)
	assert.NotNil(t, empty.Results)
	assert.Nil(t, empty.Next)
	assert.Nil(t, empty.Previous)
}
