package handlers

import (
	"math"
	"net/url"
	"strconv"

	"github.com/PepegaBoss/foodgram-project-react/internal/apperrors"
	"github.com/labstack/echo/v4"
)

// ListResponse is a page of results with links to its neighbours.
type ListResponse[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// pageRequest is the 1-based page and page size taken from ?page= and ?limit=.
type pageRequest struct {
	Page  int
	Limit int
}

func parsePage(c echo.Context, defaultLimit int) (pageRequest, error) {
	p := pageRequest{Page: 1, Limit: defaultLimit}
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.Limit = n
		}
	}
	if raw := c.QueryParam("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		// Pages whose offset overflows int cannot exist.
		if err != nil || n < 1 || (p.Limit > 0 && n-1 > math.MaxInt/p.Limit) {
			return p, apperrors.NotFound("invalid page")
		}
		p.Page = n
	}
	return p, nil
}

func (p pageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// newListResponse wraps one page. Asking for a page past the end is NotFound,
// except for the first page of an empty result.
func newListResponse[T any](c echo.Context, p pageRequest, total int64, results []T) (ListResponse[T], error) {
	if p.Page > 1 && int64(p.Offset()) >= total {
		return ListResponse[T]{}, apperrors.NotFound("invalid page")
	}
	if results == nil {
		results = []T{}
	}
	resp := ListResponse[T]{Count: total, Results: results}
	if int64(p.Offset()+len(results)) < total {
		next := pageURL(c, p.Page+1)
		resp.Next = &next
	}
	if p.Page > 1 {
		prev := pageURL(c, p.Page-1)
		resp.Previous = &prev
	}
	return resp, nil
}

func pageURL(c echo.Context, page int) string {
	req := c.Request()
	q := req.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u := url.URL{
		Scheme:   c.Scheme(),
		Host:     req.Host,
		Path:     req.URL.Path,
		RawQuery: q.Encode(),
	}
	return u.String()
}
