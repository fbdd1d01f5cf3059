package repositories

import (
	"context"
	"time"

	"github.com/PepegaBoss/foodgram-project-react/internal/models"
	"github.com/PepegaBoss/foodgram-project-react/pkg/cache"
	"github.com/PepegaBoss/foodgram-project-react/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const tagsCacheKey = "tags:all"

// TagRepository reads the tag catalog
type TagRepository interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uint) (*models.Tag, error)
	ExistingTagIDs(ctx context.Context, ids []uint) (map[uint]bool, error)
}

// PostgresTagRepository implements TagRepository. The full list is cached
// because tags never change at runtime.
type PostgresTagRepository struct {
	db    *gorm.DB
	cache cache.Cache
	ttl   time.Duration
}

// NewPostgresTagRepository creates a new PostgresTagRepository
func NewPostgresTagRepository(db *gorm.DB, c cache.Cache, ttl time.Duration) *PostgresTagRepository {
	if c == nil {
		c = cache.Noop{}
	}
	return &PostgresTagRepository{db: db, cache: c, ttl: ttl}
}

func (r *PostgresTagRepository) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if hit, err := r.cache.Get(ctx, tagsCacheKey, &tags); err != nil {
		logger.L.Warn("tag cache read failed", zap.Error(err))
	} else if hit {
		return tags, nil
	}

	if err := r.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, tagsCacheKey, tags, r.ttl); err != nil {
		logger.L.Warn("tag cache write failed", zap.Error(err))
	}
	return tags, nil
}

func (r *PostgresTagRepository) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, notFound(err, "tag not found")
	}
	return &tag, nil
}

func (r *PostgresTagRepository) ExistingTagIDs(ctx context.Context, ids []uint) (map[uint]bool, error) {
	return existingIDs(ctx, r.db, &models.Tag{}, ids)
}

// existingIDs reports which of ids are present in model's table.
func existingIDs(ctx context.Context, db *gorm.DB, model any, ids []uint) (map[uint]bool, error) {
	result := make(map[uint]bool, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var found []uint
	if err := db.WithContext(ctx).Model(model).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	for _, id := range found {
		result[id] = true
	}
	return result, nil
}
