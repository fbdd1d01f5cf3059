package repositories

import (
	"context"

	"github.com/PepegaBoss/foodgram-project-react/internal/apperrors"
	"github.com/PepegaBoss/foodgram-project-react/internal/models"
	"gorm.io/gorm"
)

// MembershipRepository stores unique (user, recipe) pairs of one kind.
type MembershipRepository interface {
	// Add fails with Conflict when the pair already exists.
	Add(ctx context.Context, userID, recipeID uint) error
	// Remove fails with NotFound when no row was deleted.
	Remove(ctx context.Context, userID, recipeID uint) error
	// Contains reports which of recipeIDs the user holds.
	Contains(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error)
}

// Membership is a (user, recipe) row type.
type Membership interface {
	models.Favorite | models.ShoppingCart
}

// PostgresMembershipRepository implements MembershipRepository for one row type.
type PostgresMembershipRepository[T Membership] struct {
	db         *gorm.DB
	newRow     func(userID, recipeID uint) *T
	existsMsg  string
	missingMsg string
}

// NewFavoriteRepository creates the favorites store
func NewFavoriteRepository(db *gorm.DB) *PostgresMembershipRepository[models.Favorite] {
	return &PostgresMembershipRepository[models.Favorite]{
		db: db,
		newRow: func(userID, recipeID uint) *models.Favorite {
			return &models.Favorite{UserID: userID, RecipeID: recipeID}
		},
		existsMsg:  "recipe is already in favorites",
		missingMsg: "recipe is not in favorites",
	}
}

// NewShoppingCartRepository creates the shopping cart store
func NewShoppingCartRepository(db *gorm.DB) *PostgresMembershipRepository[models.ShoppingCart] {
	return &PostgresMembershipRepository[models.ShoppingCart]{
		db: db,
		newRow: func(userID, recipeID uint) *models.ShoppingCart {
			return &models.ShoppingCart{UserID: userID, RecipeID: recipeID}
		},
		existsMsg:  "recipe is already in the shopping cart",
		missingMsg: "recipe is not in the shopping cart",
	}
}

// Add checks for an existing pair first; the unique index settles races.
func (r *PostgresMembershipRepository[T]) Add(ctx context.Context, userID, recipeID uint) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(new(T)).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperrors.Conflict(r.existsMsg)
	}

	err := r.db.WithContext(ctx).Omit("User", "Recipe").Create(r.newRow(userID, recipeID)).Error
	if isUniqueViolation(err) {
		return apperrors.Conflict(r.existsMsg)
	}
	return err
}

func (r *PostgresMembershipRepository[T]) Remove(ctx context.Context, userID, recipeID uint) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound(r.missingMsg)
	}
	return nil
}

func (r *PostgresMembershipRepository[T]) Contains(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool, len(recipeIDs))
	if userID == 0 || len(recipeIDs) == 0 {
		return result, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(new(T)).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}
