package repositories

import (
	"context"
	"fmt"
	"testing"

	"github.com/PepegaBoss/foodgram-project-react/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection: every ":memory:" connection is its own database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	u := &models.User{
		Email:     name + "@example.com",
		Username:  name,
		FirstName: name,
		LastName:  "Test",
		Password:  "hash",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedTags(t *testing.T, db *gorm.DB, slugs ...string) []models.Tag {
	t.Helper()
	tags := make([]models.Tag, 0, len(slugs))
	for i, slug := range slugs {
		tags = append(tags, models.Tag{Name: "Tag " + slug, Color: fmt.Sprintf("#00000%d", i), Slug: slug})
	}
	require.NoError(t, db.Create(&tags).Error)
	return tags
}

// seedIngredients takes name/unit pairs.
func seedIngredients(t *testing.T, db *gorm.DB, nameUnit ...string) []models.Ingredient {
	t.Helper()
	require.Zero(t, len(nameUnit)%2)
	out := make([]models.Ingredient, 0, len(nameUnit)/2)
	for i := 0; i < len(nameUnit); i += 2 {
		out = append(out, models.Ingredient{Name: nameUnit[i], MeasurementUnit: nameUnit[i+1]})
	}
	require.NoError(t, db.Create(&out).Error)
	return out
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func recipeWrite(name string, tagIDs []uint, lines ...models.IngredientAmount) models.RecipeWrite {
	return models.RecipeWrite{
		Name:        strPtr(name),
		Text:        strPtr(name + " text"),
		CookingTime: intPtr(15),
		Image:       strPtr("recipes/" + name + ".png"),
		TagIDs:      tagIDs,
		Ingredients: lines,
	}
}

func createRecipe(t *testing.T, repo *PostgresRecipeRepository, authorID uint, w models.RecipeWrite) *models.Recipe {
	t.Helper()
	r, err := repo.CreateRecipe(context.Background(), authorID, w)
	require.NoError(t, err)
	return r
}
