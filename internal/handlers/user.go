package handlers

import (
	"net/http"
	"strings"

	"github.com/PepegaBoss/foodgram-project-react/internal/apperrors"
	"github.com/PepegaBoss/foodgram-project-react/internal/middleware"
	"github.com/PepegaBoss/foodgram-project-react/internal/models"
	"github.com/PepegaBoss/foodgram-project-react/internal/repositories"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// UserHandler handles registration and profile requests
type UserHandler struct {
	userRepository   repositories.UserRepository
	followRepository repositories.FollowRepository
	pageSize         int
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, followRepo repositories.FollowRepository, pageSize int) *UserHandler {
	return &UserHandler{
		userRepository:   userRepo,
		followRepository: followRepo,
		pageSize:         pageSize,
	}
}

// RegisterUserRoutes registers user routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.POST("/users", h.Register)
	g.GET("/users", h.ListUsers)
	g.GET("/users/me", h.Me, middleware.RequireAuth)
	g.POST("/users/set_password", h.SetPassword, middleware.RequireAuth)
	g.GET("/users/:id", h.GetUser)
}

// Register creates an account with email and password
func (h *UserHandler) Register(c echo.Context) error {
	var req models.CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Internal("failed to hash password").WithCause(err)
	}

	user := &models.User{
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashedPassword),
	}
	if err := h.userRepository.CreateUser(c.Request().Context(), user); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, models.ProjectUser(user, false))
}

// ListUsers returns a page of users
func (h *UserHandler) ListUsers(c echo.Context) error {
	page, err := parsePage(c, h.pageSize)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	users, total, err := h.userRepository.ListUsers(ctx, page.Limit, page.Offset())
	if err != nil {
		return err
	}

	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	subscribed, err := h.followRepository.FollowedAmong(ctx, getUserIDFromContext(c), ids)
	if err != nil {
		return err
	}

	views := make([]models.UserView, 0, len(users))
	for i := range users {
		views = append(views, models.ProjectUser(&users[i], subscribed[users[i].ID]))
	}
	resp, err := newListResponse(c, page, total, views)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// GetUser returns a single user profile
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := pathID(c, "id", "user")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	subscribed, err := h.followRepository.IsFollowing(ctx, getUserIDFromContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.ProjectUser(user, subscribed))
}

// Me returns the authenticated user's profile
func (h *UserHandler) Me(c echo.Context) error {
	user, err := h.userRepository.GetUserByID(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.ProjectUser(user, false))
}

// SetPassword replaces the password after checking the current one
func (h *UserHandler) SetPassword(c echo.Context) error {
	var req models.SetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, getUserIDFromContext(c))
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return apperrors.FieldError("current_password", "invalid password")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Internal("failed to hash password").WithCause(err)
	}
	if err := h.userRepository.SetPassword(ctx, user.ID, string(hashedPassword)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
