package repositories

import (
	"github.com/PepegaBoss/foodgram-project-react/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the relational schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeTag{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingCart{},
		&models.Follow{},
	)
}
