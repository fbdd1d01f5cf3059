package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/PepegaBoss/foodgram-project-react/internal/apperrors"
	"github.com/PepegaBoss/foodgram-project-react/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryCache is a cache.Cache backed by a map, counting hits.
type memoryCache struct {
	items map[string][]byte
	hits  int
}

func newMemoryCache() *memoryCache { return &memoryCache{items: map[string][]byte{}} }

func (m *memoryCache) Get(_ context.Context, key string, dst any) (bool, error) {
	raw, ok := m.items[key]
	if !ok {
		return false, nil
	}
	m.hits++
	return true, json.Unmarshal(raw, dst)
}

func (m *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = raw
	return nil
}

func TestTagRepository_ListIsCached(t *testing.T) {
	db := newTestDB(t)
	seedTags(t, db, "lunch", "breakfast")
	c := newMemoryCache()
	repo := NewPostgresTagRepository(db, c, time.Minute)
	ctx := context.Background()

	tags, err := repo.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "breakfast", tags[0].Slug)
	assert.Zero(t, c.hits)

	require.NoError(t, db.Create(&models.Tag{Name: "Late", Color: "#ABCDEF", Slug: "late"}).Error)
	tags, err = repo.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 2, "served from cache")
	assert.Equal(t, 1, c.hits)
}

func TestTagRepository_GetAndExisting(t *testing.T) {
	db := newTestDB(t)
	tags := seedTags(t, db, "lunch")
	repo := NewPostgresTagRepository(db, nil, time.Minute)
	ctx := context.Background()

	got, err := repo.GetTag(ctx, tags[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "lunch", got.Slug)

	_, err = repo.GetTag(ctx, 999)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	existing, err := repo.ExistingTagIDs(ctx, []uint{tags[0].ID, 999})
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{tags[0].ID: true}, existing)
}

func TestIngredientRepository_PrefixSearch(t *testing.T) {
	db := newTestDB(t)
	seedIngredients(t, db,
		"Sugar", "g",
		"salt", "g",
		"sugar syrup", "ml",
		"flour", "g",
		"50%_cream", "ml",
	)
	repo := NewPostgresIngredientRepository(db, newMemoryCache(), time.Minute)
	ctx := context.Background()

	got, err := repo.ListIngredients(ctx, "SUG")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Sugar", got[0].Name)
	assert.Equal(t, "sugar syrup", got[1].Name)

	got, err = repo.ListIngredients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, got, 5)

	got, err = repo.ListIngredients(ctx, "50%_")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "50%_cream", got[0].Name)

	got, err = repo.ListIngredients(ctx, "5_%")
	require.NoError(t, err)
	assert.Empty(t, got, "wildcards are matched literally")
}

func TestIngredientRepository_GetAndExisting(t *testing.T) {
	db := newTestDB(t)
	ing := seedIngredients(t, db, "salt", "g")
	repo := NewPostgresIngredientRepository(db, nil, time.Minute)
	ctx := context.Background()

	got, err := repo.GetIngredient(ctx, ing[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "g", got.MeasurementUnit)

	_, err = repo.GetIngredient(ctx, 999)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	existing, err := repo.ExistingIngredientIDs(ctx, []uint{ing[0].ID, 999})
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{ing[0].ID: true}, existing)
}
