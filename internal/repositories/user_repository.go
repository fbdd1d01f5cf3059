package repositories

import (
	"context"

	"github.com/PepegaBoss/foodgram-project-react/internal/apperrors"
	"github.com/PepegaBoss/foodgram-project-react/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]models.User, int64, error)
	UpdateUser(ctx context.Context, user *models.User) error
	SetPassword(ctx context.Context, id uint, hash string) error
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser inserts a user; a taken email or username is a Conflict.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if isUniqueViolation(err) {
		return apperrors.Conflict("a user with this email or username already exists")
	}
	return err
}

// GetUserByID retrieves a user by ID
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user not found")
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email, the login identifier
func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err, "user not found")
	}
	return &user, nil
}

// GetUserByFirebaseUID retrieves a user linked to a Firebase account
func (r *PostgresUserRepository) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("firebase_uid = ?", firebaseUID).First(&user).Error; err != nil {
		return nil, notFound(err, "user not found")
	}
	return &user, nil
}

// ListUsers returns one page of users ordered by email and the total count
func (r *PostgresUserRepository) ListUsers(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := r.db.WithContext(ctx).Order("email").Limit(limit).Offset(offset).Find(&users).Error
	return users, total, err
}

// UpdateUser saves profile fields of an existing user
func (r *PostgresUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Save(user).Error
	if isUniqueViolation(err) {
		return apperrors.Conflict("a user with this email or username already exists")
	}
	return err
}

// SetPassword stores a new password hash
func (r *PostgresUserRepository) SetPassword(ctx context.Context, id uint, hash string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("user not found")
	}
	return nil
}
