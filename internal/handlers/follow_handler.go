package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/PepegaBoss/foodgram-project-react/internal/middleware"
	"github.com/PepegaBoss/foodgram-project-react/internal/models"
	"github.com/PepegaBoss/foodgram-project-react/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles subscribe/unsubscribe and the subscriptions feed
type FollowHandler struct {
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
	recipeRepository repositories.RecipeRepository
	projector        *RecipeProjector
	pageSize         int
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository, recipeRepo repositories.RecipeRepository, projector *RecipeProjector, pageSize int) *FollowHandler {
	return &FollowHandler{
		followRepository: followRepo,
		userRepository:   userRepo,
		recipeRepository: recipeRepo,
		projector:        projector,
		pageSize:         pageSize,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.GET("/users/subscriptions", h.Subscriptions, middleware.RequireAuth)
	g.POST("/users/:id/subscribe", h.Subscribe, middleware.RequireAuth)
	g.DELETE("/users/:id/subscribe", h.Unsubscribe, middleware.RequireAuth)
}

// Subscribe follows an author and returns them with a preview of their recipes
func (h *FollowHandler) Subscribe(c echo.Context) error {
	authorID, err := pathID(c, "id", "user")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	author, err := h.userRepository.GetUserByID(ctx, authorID)
	if err != nil {
		return err
	}
	if err := h.followRepository.CreateFollow(ctx, getUserIDFromContext(c), authorID); err != nil {
		return err
	}

	views, err := h.subscriptionViews(ctx, []models.User{*author}, recipesLimit(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, views[0])
}

// Unsubscribe stops following an author
func (h *FollowHandler) Unsubscribe(c echo.Context) error {
	authorID, err := pathID(c, "id", "user")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := h.userRepository.GetUserByID(ctx, authorID); err != nil {
		return err
	}
	if err := h.followRepository.DeleteFollow(ctx, getUserIDFromContext(c), authorID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Subscriptions returns a page of followed authors with their recipes
func (h *FollowHandler) Subscriptions(c echo.Context) error {
	page, err := parsePage(c, h.pageSize)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	authors, total, err := h.followRepository.GetFollowing(ctx, getUserIDFromContext(c), page.Limit, page.Offset())
	if err != nil {
		return err
	}
	views, err := h.subscriptionViews(ctx, authors, recipesLimit(c))
	if err != nil {
		return err
	}
	resp, err := newListResponse(c, page, total, views)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *FollowHandler) subscriptionViews(ctx context.Context, authors []models.User, limit int) ([]models.SubscriptionView, error) {
	ids := make([]uint, 0, len(authors))
	for _, a := range authors {
		ids = append(ids, a.ID)
	}
	recipes, err := h.recipeRepository.RecipesByAuthors(ctx, ids, limit)
	if err != nil {
		return nil, err
	}
	counts, err := h.recipeRepository.CountByAuthors(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.SubscriptionView, 0, len(authors))
	for i := range authors {
		a := &authors[i]
		short := make([]models.RecipeShortView, 0, len(recipes[a.ID]))
		for j := range recipes[a.ID] {
			short = append(short, h.projector.short(&recipes[a.ID][j]))
		}
		views = append(views, models.SubscriptionView{
			UserView:     models.ProjectUser(a, true),
			Recipes:      short,
			RecipesCount: counts[a.ID],
		})
	}
	return views, nil
}

// recipesLimit reads ?recipes_limit=; a missing or invalid value means no limit.
func recipesLimit(c echo.Context) int {
	n, err := strconv.Atoi(c.QueryParam("recipes_limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
