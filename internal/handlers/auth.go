package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/PepegaBoss/foodgram-project-react/internal/apperrors"
	"github.com/PepegaBoss/foodgram-project-react/internal/middleware"
	"github.com/PepegaBoss/foodgram-project-react/internal/models"
	"github.com/PepegaBoss/foodgram-project-react/internal/repositories"
	"github.com/PepegaBoss/foodgram-project-react/pkg/logger"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// FirebaseVerifier checks Firebase ID tokens. *auth.Client implements it.
type FirebaseVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthHandler issues and revokes access tokens
type AuthHandler struct {
	userRepository repositories.UserRepository
	tokens         *middleware.TokenAuth
	firebaseAuth   FirebaseVerifier
	tokenTTL       time.Duration
}

// NewAuthHandler creates a new AuthHandler. firebaseAuth may be nil, which
// disables Firebase login.
func NewAuthHandler(userRepo repositories.UserRepository, tokens *middleware.TokenAuth, firebaseAuth FirebaseVerifier, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		tokens:         tokens,
		firebaseAuth:   firebaseAuth,
		tokenTTL:       tokenTTL,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/token/login", h.Login)
	g.POST("/token/logout", h.Logout, middleware.RequireAuth)
	if h.firebaseAuth != nil {
		g.POST("/firebase-login", h.FirebaseLogin)
	}
}

// Login exchanges email and password for an access token
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	invalid := apperrors.FieldError("non_field_errors", "unable to log in with provided credentials")
	user, err := h.userRepository.GetUserByEmail(c.Request().Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return invalid
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return invalid
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"auth_token": token})
}

// Logout revokes the token the request was made with
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.tokens.Revoke(c, middleware.ClaimsFromContext(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// FirebaseLogin verifies a Firebase ID token and issues a local token,
// linking or creating the matching account.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	token, err := h.firebaseAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return apperrors.Unauthorized("invalid Firebase ID token")
	}
	email, _ := token.Claims["email"].(string)
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return apperrors.FieldError("idToken", "token carries no email address")
	}

	user, err := h.userForFirebase(ctx, token.UID, email, token.Claims)
	if err != nil {
		return err
	}

	localJWT, err := h.generateJWT(user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"auth_token": localJWT})
}

func (h *AuthHandler) userForFirebase(ctx context.Context, uid, email string, claims map[string]interface{}) (*models.User, error) {
	user, err := h.userRepository.GetUserByFirebaseUID(ctx, uid)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	user, err = h.userRepository.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		user.FirebaseUID = &uid
		if err := h.userRepository.UpdateUser(ctx, user); err != nil {
			return nil, err
		}
		logger.L.Info("linked Firebase account", zap.Uint("user_id", user.ID))
		return user, nil
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}

	name, _ := claims["name"].(string)
	first, last, _ := strings.Cut(strings.TrimSpace(name), " ")
	user = &models.User{
		Email:       email,
		Username:    firebaseUsername(uid),
		FirstName:   first,
		LastName:    strings.TrimSpace(last),
		FirebaseUID: &uid,
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	logger.L.Info("created user from Firebase login", zap.Uint("user_id", user.ID))
	return user, nil
}

// firebaseUsername derives a unique username from a Firebase uid.
func firebaseUsername(uid string) string {
	name := "fb_" + uid
	if len(name) > models.UsernameMaxLength {
		name = name[:models.UsernameMaxLength]
	}
	return name
}

// generateJWT generates a JWT token for a given user
func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	now := time.Now()
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return h.tokens.Sign(claims)
}
