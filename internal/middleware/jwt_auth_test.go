package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/PepegaBoss/foodgram-project-react/internal/apperrors"
	"github.com/PepegaBoss/foodgram-project-react/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryDenylist map[string]time.Time

func (d memoryDenylist) Revoke(_ context.Context, id string, exp time.Time) error {
	d[id] = exp
	return nil
}

func (d memoryDenylist) IsRevoked(_ context.Context, id string) (bool, error) {
	_, ok := d[id]
	return ok, nil
}

func claimsFor(userID uint, id string, ttl time.Duration) *models.JwtCustomClaims {
	now := time.Now()
	return &models.JwtCustomClaims{
		UserID: userID,
		Email:  "cook@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

// run passes a request with the given Authorization header through the
// middleware and returns the handler's error and the resolved user id.
func run(t *testing.T, a *TokenAuth, header string) (uint, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var (
		id uint
		ok bool
	)
	err := a.JWTAuthMiddleware()(func(c echo.Context) error {
		id, ok = UserIDFromContext(c)
		return nil
	})(c)
	return id, ok, err
}

func TestJWTAuth_AnonymousPassesThrough(t *testing.T) {
	id, ok, err := run(t, NewTokenAuth("secret", nil), "")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, id)
}

func TestJWTAuth_AcceptsBearerAndTokenSchemes(t *testing.T) {
	a := NewTokenAuth("secret", nil)
	token, err := a.Sign(claimsFor(7, "jti-1", time.Hour))
	require.NoError(t, err)

	for _, scheme := range []string{"Bearer", "Token", "bearer"} {
		id, ok, err := run(t, a, scheme+" "+token)
		require.NoError(t, err, scheme)
		assert.True(t, ok)
		assert.EqualValues(t, 7, id)
	}
}

func TestJWTAuth_RejectsBadTokens(t *testing.T) {
	a := NewTokenAuth("secret", nil)
	expired, err := a.Sign(claimsFor(7, "old", -time.Minute))
	require.NoError(t, err)
	foreign, err := NewTokenAuth("other", nil).Sign(claimsFor(7, "x", time.Hour))
	require.NoError(t, err)

	for name, header := range map[string]string{
		"format":    "Bearer",
		"scheme":    "Basic abc",
		"garbage":   "Bearer not.a.jwt",
		"expired":   "Bearer " + expired,
		"signature": "Bearer " + foreign,
	} {
		_, _, err := run(t, a, header)
		assert.True(t, errors.Is(err, apperrors.ErrUnauthorized), "%s: %v", name, err)
	}
}

func TestJWTAuth_RevokedToken(t *testing.T) {
	deny := memoryDenylist{}
	a := NewTokenAuth("secret", deny)
	claims := claimsFor(7, "jti-2", time.Hour)
	token, err := a.Sign(claims)
	require.NoError(t, err)

	_, ok, err := run(t, a, "Bearer "+token)
	require.NoError(t, err)
	require.True(t, ok)

	c := echo.New().NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())
	require.NoError(t, a.Revoke(c, claims))

	_, _, err = run(t, a, "Bearer "+token)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestRequireAuth(t *testing.T) {
	e := echo.New()
	h := RequireAuth(func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.True(t, errors.Is(h(c), apperrors.ErrUnauthorized))

	rec := httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set(userContextKey, claimsFor(3, "", time.Hour))
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
