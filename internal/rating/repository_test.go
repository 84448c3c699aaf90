package rating_test

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/footwear-shop/internal/db/dbtest"
	"github.com/vasiliy-maslov/footwear-shop/internal/rating"
)

func newRating(userID, shoeID uuid.UUID, value int) *rating.Rating {
	now := time.Now().UTC()
	return &rating.Rating{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    userID,
		ShoeID:    shoeID,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPostgresRatingRepository_UpsertLaw(t *testing.T) {
	pg := dbtest.Open(t)
	dbtest.Truncate(t, pg, "ratings")
	repo := rating.NewRepository(pg.Pool)
	ctx := context.Background()

	userID := uuid.Must(uuid.NewV4())
	shoeID := uuid.Must(uuid.NewV4())

	first := newRating(userID, shoeID, 2)
	inserted, err := repo.Upsert(ctx, first)
	require.NoError(t, err)
	assert.True(t, inserted)

	second := newRating(userID, shoeID, 5)
	inserted, err = repo.Upsert(ctx, second)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, first.ID, second.ID, "existing row keeps its id")

	got, err := repo.Get(ctx, shoeID, userID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 5, got.Value)

	var count int
	require.NoError(t, pg.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM ratings WHERE shoe_id = $1", shoeID).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestPostgresRatingRepository_Average(t *testing.T) {
	pg := dbtest.Open(t)
	dbtest.Truncate(t, pg, "ratings")
	repo := rating.NewRepository(pg.Pool)
	ctx := context.Background()

	shoeID := uuid.Must(uuid.NewV4())

	avg, err := repo.Average(ctx, shoeID)
	require.NoError(t, err)
	assert.Equal(t, rating.Average{}, avg)

	for _, v := range []int{5, 4, 3} {
		_, err := repo.Upsert(ctx, newRating(uuid.Must(uuid.NewV4()), shoeID, v))
		require.NoError(t, err)
	}

	avg, err = repo.Average(ctx, shoeID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, avg.AverageRating, 1e-9)
	assert.Equal(t, 3, avg.TotalRatings)

	missing, err := repo.Get(ctx, shoeID, uuid.Must(uuid.NewV4()))
	require.NoError(t, err)
	assert.Nil(t, missing)
}
