package models

import "time"

// Favorite marks a recipe as favorited by a user
type Favorite struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_favorite_user_recipe"`
	RecipeID  uint      `json:"recipe_id" gorm:"not null;uniqueIndex:idx_favorite_user_recipe;index"`
	User      User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe    Recipe    `json:"-" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}

func (Favorite) TableName() string {
	return "favorite"
}

// ShoppingCart puts a recipe into a user's shopping cart
type ShoppingCart struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_shopping_cart_user_recipe"`
	RecipeID  uint      `json:"recipe_id" gorm:"not null;uniqueIndex:idx_shopping_cart_user_recipe;index"`
	User      User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe    Recipe    `json:"-" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}

func (ShoppingCart) TableName() string {
	return "shopping_cart"
}
