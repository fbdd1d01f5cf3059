package models

import "time"

// Follow records that Follower subscribes to Author's recipes
type Follow struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FollowerID uint      `json:"follower_id" gorm:"not null;index;uniqueIndex:idx_follower_author"`
	AuthorID   uint      `json:"author_id" gorm:"not null;index;uniqueIndex:idx_follower_author"`
	Follower   User      `json:"-" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Author     User      `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time `json:"created_at"`
}

// SubscriptionView is a followed author together with a preview of their recipes.
type SubscriptionView struct {
	UserView
	Recipes      []RecipeShortView `json:"recipes"`
	RecipesCount int64             `json:"recipes_count"`
}
