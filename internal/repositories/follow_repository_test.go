package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/PepegaBoss/foodgram-project-react/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollow_SelfIsValidationError(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresFollowRepository(db)
	for _, id := range []uint{0, 1, 7, 1 << 20} {
		err := repo.CreateFollow(context.Background(), id, id)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrValidation), "id %d: %v", id, err)

		var appErr *apperrors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, []string{"cannot follow self"}, appErr.Fields["non_field_errors"])
	}
}

func TestFollow_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresFollowRepository(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	ctx := context.Background()

	require.NoError(t, repo.CreateFollow(ctx, alice.ID, bob.ID))
	require.NoError(t, repo.CreateFollow(ctx, alice.ID, carol.ID))

	err := repo.CreateFollow(ctx, alice.ID, bob.ID)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))

	following, err := repo.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	following, err = repo.IsFollowing(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, following)

	among, err := repo.FollowedAmong(ctx, alice.ID, []uint{alice.ID, bob.ID, carol.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{bob.ID: true, carol.ID: true}, among)

	users, total, err := repo.GetFollowing(ctx, alice.ID, 1, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, users, 1)
	assert.Equal(t, bob.ID, users[0].ID, "ordered by email")

	require.NoError(t, repo.DeleteFollow(ctx, alice.ID, bob.ID))
	err = repo.DeleteFollow(ctx, alice.ID, bob.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestFollow_UnknownAuthorFails(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresFollowRepository(db)
	alice := seedUser(t, db, "alice")
	assert.Error(t, repo.CreateFollow(context.Background(), alice.ID, 999))
}
