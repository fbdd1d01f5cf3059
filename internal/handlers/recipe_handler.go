package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/PepegaBoss/foodgram-project-react/internal/apperrors"
	"github.com/PepegaBoss/foodgram-project-react/internal/middleware"
	"github.com/PepegaBoss/foodgram-project-react/internal/models"
	"github.com/PepegaBoss/foodgram-project-react/internal/repositories"
	"github.com/PepegaBoss/foodgram-project-react/pkg/logger"
	"github.com/PepegaBoss/foodgram-project-react/pkg/storage"
	"github.com/PepegaBoss/foodgram-project-react/validators"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// recipeCatalog resolves recipe payload references against the repositories.
type recipeCatalog struct {
	repositories.TagRepository
	repositories.IngredientRepository
	repositories.RecipeRepository
}

// RecipeHandler handles recipe CRUD and the shopping list export
type RecipeHandler struct {
	recipeRepository repositories.RecipeRepository
	catalog          validators.Catalog
	images           storage.Store
	projector        *RecipeProjector
	pageSize         int
}

// NewRecipeHandler creates a new RecipeHandler
func NewRecipeHandler(recipeRepo repositories.RecipeRepository, tagRepo repositories.TagRepository, ingredientRepo repositories.IngredientRepository, images storage.Store, projector *RecipeProjector, pageSize int) *RecipeHandler {
	return &RecipeHandler{
		recipeRepository: recipeRepo,
		catalog:          recipeCatalog{tagRepo, ingredientRepo, recipeRepo},
		images:           images,
		projector:        projector,
		pageSize:         pageSize,
	}
}

// RegisterRecipeRoutes registers recipe routes
func (h *RecipeHandler) RegisterRecipeRoutes(g *echo.Group) {
	g.GET("/recipes", h.ListRecipes)
	g.POST("/recipes", h.CreateRecipe, middleware.RequireAuth)
	g.GET("/recipes/download_shopping_cart", h.DownloadShoppingCart, middleware.RequireAuth)
	g.GET("/recipes/:id", h.GetRecipe)
	g.PATCH("/recipes/:id", h.UpdateRecipe, middleware.RequireAuth)
	g.DELETE("/recipes/:id", h.DeleteRecipe, middleware.RequireAuth)
}

// ListRecipes returns a page of recipes, newest first. Supported filters:
// tags (repeatable slug, any of), author, is_favorited, is_in_shopping_cart.
func (h *RecipeHandler) ListRecipes(c echo.Context) error {
	page, err := parsePage(c, h.pageSize)
	if err != nil {
		return err
	}
	viewerID := getUserIDFromContext(c)

	filter := models.RecipeFilter{
		TagSlugs: c.QueryParams()["tags"],
		Limit:    page.Limit,
		Offset:   page.Offset(),
	}
	if raw := c.QueryParam("author"); raw != "" {
		author, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return apperrors.FieldError("author", "must be a user id")
		}
		filter.AuthorID = uint(author)
	}
	if viewerID != 0 {
		if queryFlag(c, "is_favorited") {
			filter.FavoritedBy = viewerID
		}
		if queryFlag(c, "is_in_shopping_cart") {
			filter.InShoppingCartOf = viewerID
		}
	}

	ctx := c.Request().Context()
	recipes, total, err := h.recipeRepository.ListRecipes(ctx, filter)
	if err != nil {
		return err
	}
	views, err := h.projector.project(ctx, viewerID, recipes)
	if err != nil {
		return err
	}
	resp, err := newListResponse(c, page, total, views)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) GetRecipe(c echo.Context) error {
	id, err := pathID(c, "id", "recipe")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	recipe, err := h.recipeRepository.GetRecipe(ctx, id)
	if err != nil {
		return err
	}
	view, err := h.projector.one(ctx, getUserIDFromContext(c), recipe)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// CreateRecipe validates the payload, stores the image and then writes the
// recipe aggregate. The image is removed again if the write fails.
func (h *RecipeHandler) CreateRecipe(c echo.Context) error {
	var payload validators.RecipePayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request payload")
	}

	ctx := c.Request().Context()
	authorID := getUserIDFromContext(c)
	validated, err := validators.ValidateRecipe(ctx, validators.ModeCreate, authorID, payload, h.catalog)
	if err != nil {
		return err
	}

	key, err := h.storeImage(ctx, validated.Image)
	if err != nil {
		return err
	}
	recipe, err := h.recipeRepository.CreateRecipe(ctx, authorID, toRecipeWrite(validated, key))
	if err != nil {
		h.discardImage(key)
		return err
	}

	view, err := h.projector.one(ctx, authorID, recipe)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, view)
}

// UpdateRecipe applies a partial update. Only the author may change a recipe.
func (h *RecipeHandler) UpdateRecipe(c echo.Context) error {
	id, err := pathID(c, "id", "recipe")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	userID := getUserIDFromContext(c)
	current, err := h.authorOnly(ctx, id, userID)
	if err != nil {
		return err
	}

	var payload validators.RecipePayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request payload")
	}
	validated, err := validators.ValidateRecipe(ctx, validators.ModeUpdate, userID, payload, h.catalog)
	if err != nil {
		return err
	}

	key, err := h.storeImage(ctx, validated.Image)
	if err != nil {
		return err
	}
	recipe, err := h.recipeRepository.UpdateRecipe(ctx, id, toRecipeWrite(validated, key))
	if err != nil {
		h.discardImage(key)
		return err
	}
	if key != "" && current.Image != key {
		h.discardImage(current.Image)
	}

	view, err := h.projector.one(ctx, userID, recipe)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// DeleteRecipe removes a recipe and its image. Only the author may delete.
func (h *RecipeHandler) DeleteRecipe(c echo.Context) error {
	id, err := pathID(c, "id", "recipe")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	recipe, err := h.authorOnly(ctx, id, getUserIDFromContext(c))
	if err != nil {
		return err
	}
	if err := h.recipeRepository.DeleteRecipe(ctx, id); err != nil {
		return err
	}
	h.discardImage(recipe.Image)
	return c.NoContent(http.StatusNoContent)
}

// DownloadShoppingCart exports the summed ingredients of every recipe in the
// caller's cart as a text attachment.
func (h *RecipeHandler) DownloadShoppingCart(c echo.Context) error {
	items, err := h.recipeRepository.ShoppingList(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="shopping_cart.txt"`)
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(renderShoppingList(items)))
}

func (h *RecipeHandler) authorOnly(ctx context.Context, recipeID, userID uint) (*models.Recipe, error) {
	recipe, err := h.recipeRepository.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != userID {
		return nil, apperrors.Forbidden("you do not have permission to perform this action")
	}
	return recipe, nil
}

// storeImage saves img under a fresh key. A nil image stores nothing.
func (h *RecipeHandler) storeImage(ctx context.Context, img *storage.Image) (string, error) {
	if img == nil {
		return "", nil
	}
	key := storage.NewKey(img.Ext)
	if err := h.images.Save(ctx, key, img); err != nil {
		return "", apperrors.Internal("failed to store image").WithCause(err)
	}
	return key, nil
}

// discardImage deletes key, logging failures. It runs detached from the
// request so a cancelled client does not leave orphans behind.
func (h *RecipeHandler) discardImage(key string) {
	if key == "" {
		return
	}
	if err := h.images.Delete(context.Background(), key); err != nil {
		logger.L.Warn("failed to delete recipe image", zap.String("key", key), zap.Error(err))
	}
}

func toRecipeWrite(v *validators.ValidatedRecipe, imageKey string) models.RecipeWrite {
	w := models.RecipeWrite{
		Name:        v.Name,
		Text:        v.Text,
		CookingTime: v.CookingTime,
		TagIDs:      v.TagIDs,
		Ingredients: v.Ingredients,
	}
	if imageKey != "" {
		w.Image = &imageKey
	}
	return w
}

// queryFlag treats "1" and "true" as set.
func queryFlag(c echo.Context, name string) bool {
	switch c.QueryParam(name) {
	case "1", "true", "True":
		return true
	}
	return false
}
