package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/PepegaBoss/foodgram-project-react/internal/apperrors"
	"github.com/PepegaBoss/foodgram-project-react/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeRepository is the recipe aggregate store. Create and update write the
// recipe row, its tag links and its ingredient lines in one transaction.
type RecipeRepository interface {
	CreateRecipe(ctx context.Context, authorID uint, w models.RecipeWrite) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, recipeID uint, w models.RecipeWrite) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, recipeID uint) error
	GetRecipe(ctx context.Context, recipeID uint) (*models.Recipe, error)
	ListRecipes(ctx context.Context, f models.RecipeFilter) ([]models.Recipe, int64, error)
	RecipeExists(ctx context.Context, authorID uint, name, text string) (bool, error)
	RecipesByAuthors(ctx context.Context, authorIDs []uint, perAuthor int) (map[uint][]models.Recipe, error)
	CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error)
	ShoppingList(ctx context.Context, userID uint) ([]models.ShoppingListItem, error)
}

// PostgresRecipeRepository implements RecipeRepository
type PostgresRecipeRepository struct {
	db *gorm.DB
}

// NewPostgresRecipeRepository creates a new PostgresRecipeRepository
func NewPostgresRecipeRepository(db *gorm.DB) *PostgresRecipeRepository {
	return &PostgresRecipeRepository{db: db}
}

func (r *PostgresRecipeRepository) CreateRecipe(ctx context.Context, authorID uint, w models.RecipeWrite) (*models.Recipe, error) {
	if w.Name == nil || w.Text == nil || w.CookingTime == nil || w.Image == nil {
		return nil, errors.New("create recipe: missing scalar fields")
	}
	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        *w.Name,
		Text:        *w.Text,
		CookingTime: *w.CookingTime,
		Image:       *w.Image,
		PubDate:     time.Now().UTC(),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return err
		}
		if err := insertTags(tx, recipe.ID, w.TagIDs); err != nil {
			return err
		}
		return insertIngredients(tx, recipe.ID, w.Ingredients)
	})
	if err != nil {
		return nil, err
	}
	return r.GetRecipe(ctx, recipe.ID)
}

// UpdateRecipe locks the recipe row for the duration of the transaction so
// concurrent writers of the same recipe apply one after the other.
func (r *PostgresRecipeRepository) UpdateRecipe(ctx context.Context, recipeID uint, w models.RecipeWrite) (*models.Recipe, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := lockForUpdate(tx).First(&recipe, recipeID).Error; err != nil {
			return notFound(err, "recipe not found")
		}

		updates := map[string]any{}
		if w.Name != nil {
			updates["name"] = *w.Name
		}
		if w.Text != nil {
			updates["text"] = *w.Text
		}
		if w.CookingTime != nil {
			updates["cooking_time"] = *w.CookingTime
		}
		if w.Image != nil {
			updates["image"] = *w.Image
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Recipe{}).Where("id = ?", recipeID).Updates(updates).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
			return err
		}
		if err := insertTags(tx, recipeID, w.TagIDs); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return insertIngredients(tx, recipeID, w.Ingredients)
	})
	if err != nil {
		return nil, err
	}
	return r.GetRecipe(ctx, recipeID)
}

// DeleteRecipe removes the recipe with its lines, links and memberships.
func (r *PostgresRecipeRepository) DeleteRecipe(ctx context.Context, recipeID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []any{
			&models.Favorite{},
			&models.ShoppingCart{},
			&models.RecipeTag{},
			&models.RecipeIngredient{},
		} {
			if err := tx.Where("recipe_id = ?", recipeID).Delete(dependent).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.Recipe{}, recipeID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("recipe not found")
		}
		return nil
	})
}

func (r *PostgresRecipeRepository) GetRecipe(ctx context.Context, recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := withAggregate(r.db.WithContext(ctx)).First(&recipe, recipeID).Error; err != nil {
		return nil, notFound(err, "recipe not found")
	}
	return &recipe, nil
}

// ListRecipes returns one page of recipes, newest first, and the total count
// matching f.
func (r *PostgresRecipeRepository) ListRecipes(ctx context.Context, f models.RecipeFilter) ([]models.Recipe, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Model(&models.Recipe{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	q := withAggregate(r.filtered(ctx, f)).Order("pub_date DESC").Order("id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	if err := q.Find(&recipes).Error; err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

func (r *PostgresRecipeRepository) filtered(ctx context.Context, f models.RecipeFilter) *gorm.DB {
	q := r.db.WithContext(ctx)
	if len(f.TagSlugs) > 0 {
		slugs := make([]string, 0, len(f.TagSlugs))
		for _, s := range f.TagSlugs {
			slugs = append(slugs, strings.ToLower(s))
		}
		q = q.Where("recipes.id IN (?)", r.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("LOWER(tags.slug) IN ?", slugs))
	}
	if f.AuthorID != 0 {
		q = q.Where("recipes.author_id = ?", f.AuthorID)
	}
	if f.FavoritedBy != 0 {
		q = q.Where("recipes.id IN (?)", r.db.Model(&models.Favorite{}).
			Select("recipe_id").Where("user_id = ?", f.FavoritedBy))
	}
	if f.InShoppingCartOf != 0 {
		q = q.Where("recipes.id IN (?)", r.db.Model(&models.ShoppingCart{}).
			Select("recipe_id").Where("user_id = ?", f.InShoppingCartOf))
	}
	return q
}

func (r *PostgresRecipeRepository) RecipeExists(ctx context.Context, authorID uint, name, text string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ? AND name = ? AND text = ?", authorID, name, text).
		Count(&count).Error
	return count > 0, err
}

// RecipesByAuthors returns each author's recipes, newest first, at most
// perAuthor each when perAuthor > 0. Only scalar fields are loaded.
func (r *PostgresRecipeRepository) RecipesByAuthors(ctx context.Context, authorIDs []uint, perAuthor int) (map[uint][]models.Recipe, error) {
	result := make(map[uint][]models.Recipe, len(authorIDs))
	if len(authorIDs) == 0 {
		return result, nil
	}
	var recipes []models.Recipe
	err := r.db.WithContext(ctx).Where("author_id IN ?", authorIDs).
		Order("pub_date DESC").Order("id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	for _, rec := range recipes {
		if perAuthor > 0 && len(result[rec.AuthorID]) >= perAuthor {
			continue
		}
		result[rec.AuthorID] = append(result[rec.AuthorID], rec)
	}
	return result, nil
}

func (r *PostgresRecipeRepository) CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error) {
	result := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return result, nil
	}
	var rows []struct {
		AuthorID uint
		Total    int64
	}
	err := r.db.WithContext(ctx).Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.AuthorID] = row.Total
	}
	return result, nil
}

// ShoppingList sums ingredient amounts over every recipe in the user's cart,
// one line per (name, unit), ordered by name.
func (r *PostgresRecipeRepository) ShoppingList(ctx context.Context, userID uint) ([]models.ShoppingListItem, error) {
	var items []models.ShoppingListItem
	err := r.db.WithContext(ctx).Table("recipe_ingredients AS ri").
		Select("i.name AS name, i.measurement_unit AS measurement_unit, CAST(SUM(ri.amount) AS BIGINT) AS total").
		Joins("JOIN ingredient AS i ON i.id = ri.ingredient_id").
		Where("ri.recipe_id IN (?)", r.db.Model(&models.ShoppingCart{}).Select("recipe_id").Where("user_id = ?", userID)).
		Group("i.name, i.measurement_unit").
		Order("i.name").Order("i.measurement_unit").
		Scan(&items).Error
	return items, err
}

// withAggregate preloads the author, tags and ingredient lines in insertion order.
func withAggregate(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("RecipeTags").
		Preload("RecipeTags.Tag").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.id")
		}).
		Preload("Ingredients.Ingredient")
}

// lockForUpdate adds SELECT ... FOR UPDATE where the dialect supports it.
// SQLite serializes writers on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func insertTags(tx *gorm.DB, recipeID uint, tagIDs []uint) error {
	if len(tagIDs) == 0 {
		return nil
	}
	links := make([]models.RecipeTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		links = append(links, models.RecipeTag{RecipeID: recipeID, TagID: id})
	}
	return tx.Omit(clause.Associations).Create(&links).Error
}

func insertIngredients(tx *gorm.DB, recipeID uint, lines []models.IngredientAmount) error {
	if len(lines) == 0 {
		return nil
	}
	rows := make([]models.RecipeIngredient, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, models.RecipeIngredient{RecipeID: recipeID, IngredientID: l.IngredientID, Amount: l.Amount})
	}
	return tx.Omit(clause.Associations).CreateInBatches(&rows, 100).Error
}
