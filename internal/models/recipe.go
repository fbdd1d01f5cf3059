package models

import (
	"sort"
	"time"
)

const RecipeNameMaxLength = 200

// Recipe is the aggregate root. Tag links and ingredient rows are written
// together with it by the recipe repository.
type Recipe struct {
	ID          uint               `json:"id" gorm:"primaryKey"`
	AuthorID    uint               `json:"author_id" gorm:"not null;index"`
	Author      User               `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Name        string             `json:"name" gorm:"size:200;not null"`
	Image       string             `json:"image" gorm:"not null"` // object store key
	Text        string             `json:"text" gorm:"type:text;not null"`
	CookingTime int                `json:"cooking_time" gorm:"not null"`
	PubDate     time.Time          `json:"pub_date" gorm:"not null;index"`
	RecipeTags  []RecipeTag        `json:"-" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	Ingredients []RecipeIngredient `json:"-" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

// RecipeTag links a recipe to one of its tags.
type RecipeTag struct {
	RecipeID uint `gorm:"primaryKey;autoIncrement:false"`
	TagID    uint `gorm:"primaryKey;autoIncrement:false;index"`
	Tag      Tag  `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE"`
}

// RecipeIngredient is one ingredient line of a recipe. Lines are read back in
// ID order, which is the order they were submitted in.
type RecipeIngredient struct {
	ID           uint       `gorm:"primaryKey"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient"`
	IngredientID uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient;index"`
	Ingredient   Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
	Amount       int        `gorm:"not null"`
}

// Tags returns the resolved tags of a recipe loaded with its links, by name.
func (r *Recipe) Tags() []Tag {
	tags := make([]Tag, 0, len(r.RecipeTags))
	for _, rt := range r.RecipeTags {
		tags = append(tags, rt.Tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags
}

// RecipeWrite is the input of the recipe writer. Nil scalars are left
// unchanged on update; tags and ingredients always replace the stored sets.
type RecipeWrite struct {
	Name        *string
	Text        *string
	CookingTime *int
	Image       *string // object store key
	TagIDs      []uint
	Ingredients []IngredientAmount
}

// IngredientAmount is a resolved (ingredient, amount) pair.
type IngredientAmount struct {
	IngredientID uint
	Amount       int
}

// RecipeFilter narrows a recipe listing. Zero values disable a filter.
type RecipeFilter struct {
	TagSlugs         []string
	AuthorID         uint
	FavoritedBy      uint
	InShoppingCartOf uint
	Limit            int
	Offset           int
}

// ShoppingListItem is one aggregated line of a shopping list export.
type ShoppingListItem struct {
	Name            string
	MeasurementUnit string
	Total           int
}

type RecipeIngredientView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeView is the read-side representation of a recipe for one viewer.
type RecipeView struct {
	ID               uint                   `json:"id"`
	Tags             []Tag                  `json:"tags"`
	Author           UserView               `json:"author"`
	Ingredients      []RecipeIngredientView `json:"ingredients"`
	IsFavorited      bool                   `json:"is_favorited"`
	IsInShoppingCart bool                   `json:"is_in_shopping_cart"`
	Name             string                 `json:"name"`
	Image            string                 `json:"image"`
	Text             string                 `json:"text"`
	CookingTime      int                    `json:"cooking_time"`
}

// RecipeShortView is the compact form returned by favorite, cart and
// subscription endpoints.
type RecipeShortView struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// ViewerFlags are the viewer-relative facts about one recipe.
type ViewerFlags struct {
	Favorited        bool
	InShoppingCart   bool
	AuthorSubscribed bool
}

// ProjectRecipe assembles the view of r. r must have Author, RecipeTags.Tag and
// Ingredients.Ingredient loaded. imageURL is the public URL of r.Image.
func ProjectRecipe(r *Recipe, imageURL string, flags ViewerFlags) RecipeView {
	ingredients := make([]RecipeIngredientView, 0, len(r.Ingredients))
	for _, ri := range r.Ingredients {
		ingredients = append(ingredients, RecipeIngredientView{
			ID:              ri.IngredientID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		})
	}
	return RecipeView{
		ID:               r.ID,
		Tags:             r.Tags(),
		Author:           ProjectUser(&r.Author, flags.AuthorSubscribed),
		Ingredients:      ingredients,
		IsFavorited:      flags.Favorited,
		IsInShoppingCart: flags.InShoppingCart,
		Name:             r.Name,
		Image:            imageURL,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}

// ProjectRecipeShort assembles the compact view of r.
func ProjectRecipeShort(r *Recipe, imageURL string) RecipeShortView {
	return RecipeShortView{
		ID:          r.ID,
		Name:        r.Name,
		Image:       imageURL,
		CookingTime: r.CookingTime,
	}
}
