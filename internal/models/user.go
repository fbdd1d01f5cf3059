package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	EmailMaxLength    = 254
	UsernameMaxLength = 150
	PasswordMaxLength = 150
)

// User is a registered account. Email is the login identifier.
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Email       string    `json:"email" gorm:"size:254;uniqueIndex;not null"`
	Username    string    `json:"username" gorm:"size:150;uniqueIndex;not null"`
	FirstName   string    `json:"first_name" gorm:"size:150"`
	LastName    string    `json:"last_name" gorm:"size:150"`
	Password    string    `json:"-" gorm:"not null"` // bcrypt hash
	FirebaseUID *string   `json:"-" gorm:"uniqueIndex"`
	CreatedAt   time.Time `json:"-"`
}

type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=8,max=150"`
}

type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=150"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// FirebaseLoginRequest carries a Firebase ID token to exchange for a local token
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// UserView is the public representation of a user relative to a viewer.
type UserView struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// ProjectUser builds the view of u; subscribed is the viewer's follow flag.
func ProjectUser(u *User, subscribed bool) UserView {
	return UserView{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims.
// RegisteredClaims.ID is the token id used by the logout denylist.
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
