package handlers

import (
	"net/http"

	"github.com/PepegaBoss/foodgram-project-react/internal/middleware"
	"github.com/PepegaBoss/foodgram-project-react/internal/repositories"
	"github.com/labstack/echo/v4"
)

// MembershipHandler toggles recipes in the caller's favorites and shopping cart
type MembershipHandler struct {
	favoriteRepository repositories.MembershipRepository
	cartRepository     repositories.MembershipRepository
	recipeRepository   repositories.RecipeRepository
	projector          *RecipeProjector
}

// NewMembershipHandler creates a new MembershipHandler
func NewMembershipHandler(favoriteRepo, cartRepo repositories.MembershipRepository, recipeRepo repositories.RecipeRepository, projector *RecipeProjector) *MembershipHandler {
	return &MembershipHandler{
		favoriteRepository: favoriteRepo,
		cartRepository:     cartRepo,
		recipeRepository:   recipeRepo,
		projector:          projector,
	}
}

// RegisterMembershipRoutes registers favorite and shopping cart routes
func (h *MembershipHandler) RegisterMembershipRoutes(g *echo.Group) {
	g.POST("/recipes/:id/favorite", h.add(h.favoriteRepository), middleware.RequireAuth)
	g.DELETE("/recipes/:id/favorite", h.remove(h.favoriteRepository), middleware.RequireAuth)
	g.POST("/recipes/:id/shopping_cart", h.add(h.cartRepository), middleware.RequireAuth)
	g.DELETE("/recipes/:id/shopping_cart", h.remove(h.cartRepository), middleware.RequireAuth)
}

// add responds 201 with the short recipe, or 409 when already present.
func (h *MembershipHandler) add(repo repositories.MembershipRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		recipeID, err := pathID(c, "id", "recipe")
		if err != nil {
			return err
		}
		ctx := c.Request().Context()
		recipe, err := h.recipeRepository.GetRecipe(ctx, recipeID)
		if err != nil {
			return err
		}
		if err := repo.Add(ctx, getUserIDFromContext(c), recipeID); err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, h.projector.short(recipe))
	}
}

// remove responds 204, or 404 when there was nothing to remove.
func (h *MembershipHandler) remove(repo repositories.MembershipRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		recipeID, err := pathID(c, "id", "recipe")
		if err != nil {
			return err
		}
		ctx := c.Request().Context()
		if _, err := h.recipeRepository.GetRecipe(ctx, recipeID); err != nil {
			return err
		}
		if err := repo.Remove(ctx, getUserIDFromContext(c), recipeID); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}
