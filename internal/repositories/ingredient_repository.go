package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/PepegaBoss/foodgram-project-react/internal/models"
	"github.com/PepegaBoss/foodgram-project-react/pkg/cache"
	"github.com/PepegaBoss/foodgram-project-react/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IngredientRepository reads the ingredient catalog
type IngredientRepository interface {
	// ListIngredients returns ingredients whose name starts with prefix,
	// case-insensitively, ordered by name. An empty prefix lists everything.
	ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error)
	ExistingIngredientIDs(ctx context.Context, ids []uint) (map[uint]bool, error)
}

// PostgresIngredientRepository implements IngredientRepository
type PostgresIngredientRepository struct {
	db    *gorm.DB
	cache cache.Cache
	ttl   time.Duration
}

// NewPostgresIngredientRepository creates a new PostgresIngredientRepository
func NewPostgresIngredientRepository(db *gorm.DB, c cache.Cache, ttl time.Duration) *PostgresIngredientRepository {
	if c == nil {
		c = cache.Noop{}
	}
	return &PostgresIngredientRepository{db: db, cache: c, ttl: ttl}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *PostgresIngredientRepository) ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	key := "ingredients:" + prefix

	var ingredients []models.Ingredient
	if hit, err := r.cache.Get(ctx, key, &ingredients); err != nil {
		logger.L.Warn("ingredient cache read failed", zap.Error(err))
	} else if hit {
		return ingredients, nil
	}

	q := r.db.WithContext(ctx).Order("name").Order("id")
	if prefix != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likeEscaper.Replace(prefix)+"%")
	}
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, key, ingredients, r.ttl); err != nil {
		logger.L.Warn("ingredient cache write failed", zap.Error(err))
	}
	return ingredients, nil
}

func (r *PostgresIngredientRepository) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := r.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, notFound(err, "ingredient not found")
	}
	return &ingredient, nil
}

func (r *PostgresIngredientRepository) ExistingIngredientIDs(ctx context.Context, ids []uint) (map[uint]bool, error) {
	return existingIDs(ctx, r.db, &models.Ingredient{}, ids)
}
