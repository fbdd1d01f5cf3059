package handlers

import (
	"net/http"

	"github.com/PepegaBoss/foodgram-project-react/internal/repositories"
	"github.com/labstack/echo/v4"
)

// CatalogHandler serves the read-only tag and ingredient catalogs. Neither
// list is paginated.
type CatalogHandler struct {
	tagRepository        repositories.TagRepository
	ingredientRepository repositories.IngredientRepository
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(tagRepo repositories.TagRepository, ingredientRepo repositories.IngredientRepository) *CatalogHandler {
	return &CatalogHandler{
		tagRepository:        tagRepo,
		ingredientRepository: ingredientRepo,
	}
}

// RegisterCatalogRoutes registers tag and ingredient routes
func (h *CatalogHandler) RegisterCatalogRoutes(g *echo.Group) {
	g.GET("/tags", h.ListTags)
	g.GET("/tags/:id", h.GetTag)
	g.GET("/ingredients", h.ListIngredients)
	g.GET("/ingredients/:id", h.GetIngredient)
}

func (h *CatalogHandler) ListTags(c echo.Context) error {
	tags, err := h.tagRepository.ListTags(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tags)
}

func (h *CatalogHandler) GetTag(c echo.Context) error {
	id, err := pathID(c, "id", "tag")
	if err != nil {
		return err
	}
	tag, err := h.tagRepository.GetTag(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tag)
}

// ListIngredients filters by ?name= as a case-insensitive prefix
func (h *CatalogHandler) ListIngredients(c echo.Context) error {
	ingredients, err := h.ingredientRepository.ListIngredients(c.Request().Context(), c.QueryParam("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ingredients)
}

func (h *CatalogHandler) GetIngredient(c echo.Context) error {
	id, err := pathID(c, "id", "ingredient")
	if err != nil {
		return err
	}
	ingredient, err := h.ingredientRepository.GetIngredient(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ingredient)
}
