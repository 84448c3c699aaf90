package rating

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	// Upsert stores r, replacing the value of an existing (user, shoe) rating.
	// inserted reports whether a new row was created.
	Upsert(ctx context.Context, r *Rating) (inserted bool, err error)
	// Get returns nil, nil when the user has not rated the shoe.
	Get(ctx context.Context, shoeID, userID uuid.UUID) (*Rating, error)
	Average(ctx context.Context, shoeID uuid.UUID) (Average, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Upsert(ctx context.Context, rt *Rating) (bool, error) {
	query := `
		INSERT INTO ratings (id, user_id, shoe_id, rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, shoe_id)
		DO UPDATE SET rating = EXCLUDED.rating, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, (xmax = 0) AS inserted
	`

	var inserted bool
	err := r.db.QueryRow(ctx, query,
		rt.ID,
		rt.UserID,
		rt.ShoeID,
		rt.Value,
		rt.CreatedAt,
		rt.UpdatedAt,
	).Scan(&rt.ID, &rt.CreatedAt, &inserted)
	if err != nil {
		return false, fmt.Errorf("repository: failed to upsert rating for shoe %s: %w", rt.ShoeID, err)
	}

	return inserted, nil
}

func (r *postgresRepository) Get(ctx context.Context, shoeID, userID uuid.UUID) (*Rating, error) {
	query := `
		SELECT id, user_id, shoe_id, rating, created_at, updated_at
		FROM ratings
		WHERE shoe_id = $1 AND user_id = $2
	`

	var rt Rating
	err := r.db.QueryRow(ctx, query, shoeID, userID).Scan(
		&rt.ID,
		&rt.UserID,
		&rt.ShoeID,
		&rt.Value,
		&rt.CreatedAt,
		&rt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("repository: failed to select rating for shoe %s: %w", shoeID, err)
	}

	return &rt, nil
}

func (r *postgresRepository) Average(ctx context.Context, shoeID uuid.UUID) (Average, error) {
	query := `
		SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*)
		FROM ratings
		WHERE shoe_id = $1
	`

	var avg Average
	if err := r.db.QueryRow(ctx, query, shoeID).Scan(&avg.AverageRating, &avg.TotalRatings); err != nil {
		return Average{}, fmt.Errorf("repository: failed to compute average rating for shoe %s: %w", shoeID, err)
	}

	return avg, nil
}
