package repositories

import (
	"context"

	"github.com/PepegaBoss/foodgram-project-react/internal/apperrors"
	"github.com/PepegaBoss/foodgram-project-react/internal/models"
	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	CreateFollow(ctx context.Context, followerID, authorID uint) error
	DeleteFollow(ctx context.Context, followerID, authorID uint) error
	IsFollowing(ctx context.Context, followerID, authorID uint) (bool, error)
	// FollowedAmong reports which of authorIDs the follower subscribes to.
	FollowedAmong(ctx context.Context, followerID uint, authorIDs []uint) (map[uint]bool, error)
	// GetFollowing returns one page of followed authors ordered by email.
	GetFollowing(ctx context.Context, followerID uint, limit, offset int) ([]models.User, int64, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

// CreateFollow subscribes followerID to authorID. Following oneself is a
// validation error and an existing subscription is a Conflict.
func (r *PostgresFollowRepository) CreateFollow(ctx context.Context, followerID, authorID uint) error {
	if followerID == authorID {
		return apperrors.FieldError("non_field_errors", "cannot follow self")
	}
	following, err := r.IsFollowing(ctx, followerID, authorID)
	if err != nil {
		return err
	}
	if following {
		return apperrors.Conflict("already subscribed to this author")
	}

	follow := &models.Follow{FollowerID: followerID, AuthorID: authorID}
	err = r.db.WithContext(ctx).Omit("Follower", "Author").Create(follow).Error
	if isUniqueViolation(err) {
		return apperrors.Conflict("already subscribed to this author")
	}
	return err
}

func (r *PostgresFollowRepository) DeleteFollow(ctx context.Context, followerID, authorID uint) error {
	res := r.db.WithContext(ctx).Where("follower_id = ? AND author_id = ?", followerID, authorID).Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("subscription not found")
	}
	return nil
}

func (r *PostgresFollowRepository) IsFollowing(ctx context.Context, followerID, authorID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ? AND author_id = ?", followerID, authorID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresFollowRepository) FollowedAmong(ctx context.Context, followerID uint, authorIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool, len(authorIDs))
	if followerID == 0 || len(authorIDs) == 0 {
		return result, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND author_id IN ?", followerID, authorIDs).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

func (r *PostgresFollowRepository) GetFollowing(ctx context.Context, followerID uint, limit, offset int) ([]models.User, int64, error) {
	sub := r.db.Table("follows").Select("author_id").Where("follower_id = ?", followerID)

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id IN (?)", sub).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	q := r.db.WithContext(ctx).Where("id IN (?)", sub).Order("email")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	err := q.Find(&users).Error
	return users, total, err
}
