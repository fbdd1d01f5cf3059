package middleware

import (
	"errors"
	"strings"

	"github.com/PepegaBoss/foodgram-project-react/internal/apperrors"
	"github.com/PepegaBoss/foodgram-project-react/internal/models"
	"github.com/PepegaBoss/foodgram-project-react/pkg/cache"
	"github.com/PepegaBoss/foodgram-project-react/pkg/logger"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const userContextKey = "user"

// TokenAuth verifies access tokens signed with the service secret.
type TokenAuth struct {
	secret   []byte
	denylist cache.Denylist
}

// NewTokenAuth creates a TokenAuth. A nil denylist never revokes.
func NewTokenAuth(secret string, denylist cache.Denylist) *TokenAuth {
	if denylist == nil {
		denylist = cache.Noop{}
	}
	return &TokenAuth{secret: []byte(secret), denylist: denylist}
}

// JWTAuthMiddleware resolves the caller from the Authorization header.
// Requests without the header continue anonymously; a malformed, expired or
// revoked token is rejected.
func (a *TokenAuth) JWTAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return next(c)
			}

			// "Bearer <token>" or the "Token <token>" form older clients send
			parts := strings.Fields(authHeader)
			if len(parts) != 2 {
				return apperrors.Unauthorized("invalid Authorization header format")
			}
			switch strings.ToLower(parts[0]) {
			case "bearer", "token":
			default:
				return apperrors.Unauthorized("invalid Authorization header format")
			}

			claims, err := a.Parse(parts[1])
			if err != nil {
				return err
			}
			if claims.ID != "" {
				revoked, err := a.denylist.IsRevoked(c.Request().Context(), claims.ID)
				if err != nil {
					logger.L.Warn("token denylist lookup failed", zap.Error(err))
				} else if revoked {
					return apperrors.Unauthorized("token has been revoked")
				}
			}

			c.Set(userContextKey, claims)
			return next(c)
		}
	}
}

// Parse verifies the signature and expiry of tokenString.
func (a *TokenAuth) Parse(tokenString string) (*models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return nil, apperrors.Unauthorized("invalid token signature")
		}
		return nil, apperrors.Unauthorized("invalid token").WithCause(err)
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, apperrors.Unauthorized("invalid token")
	}
	return claims, nil
}

// Sign issues a token for claims.
func (a *TokenAuth) Sign(claims *models.JwtCustomClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Revoke denylists the token behind claims until it expires.
func (a *TokenAuth) Revoke(c echo.Context, claims *models.JwtCustomClaims) error {
	if claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return a.denylist.Revoke(c.Request().Context(), claims.ID, claims.ExpiresAt.Time)
}

// RequireAuth rejects anonymous requests.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := UserIDFromContext(c); !ok {
			return apperrors.Unauthorized("authentication credentials were not provided")
		}
		return next(c)
	}
}

// ClaimsFromContext returns the caller's claims, or nil when anonymous.
func ClaimsFromContext(c echo.Context) *models.JwtCustomClaims {
	claims, _ := c.Get(userContextKey).(*models.JwtCustomClaims)
	return claims
}

// UserIDFromContext returns the caller's user id.
func UserIDFromContext(c echo.Context) (uint, bool) {
	claims := ClaimsFromContext(c)
	if claims == nil {
		return 0, false
	}
	return claims.UserID, true
}
