package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vasiliy-maslov/footwear-shop/internal/apperror"
)

var ErrItemNotFound = fmt.Errorf("cart item %w", apperror.ErrNotFound)

type Repository interface {
	// Upsert inserts item, or adds item.Quantity to the existing line with the
	// same user, shoe and size and refreshes its stock. It returns the stored line.
	Upsert(ctx context.Context, item *Item) (*Item, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Item, error)
	SetQuantity(ctx context.Context, id uuid.UUID, quantity int, updatedAt time.Time) (*Item, error)
	Remove(ctx context.Context, id uuid.UUID) error
	ClearByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

const itemColumns = `id, user_id, shoe_id, name, brand, price, image, quantity, size, stock, created_at, updated_at`

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(
		&it.ID,
		&it.UserID,
		&it.ShoeID,
		&it.Name,
		&it.Brand,
		&it.Price,
		&it.Image,
		&it.Quantity,
		&it.Size,
		&it.Stock,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *postgresRepository) Upsert(ctx context.Context, item *Item) (*Item, error) {
	query := `
		INSERT INTO cart_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id, shoe_id, size)
		DO UPDATE SET
			quantity = cart_items.quantity + EXCLUDED.quantity,
			stock = EXCLUDED.stock,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + itemColumns

	stored, err := scanItem(r.db.QueryRow(ctx, query,
		item.ID,
		item.UserID,
		item.ShoeID,
		item.Name,
		item.Brand,
		item.Price,
		item.Image,
		item.Quantity,
		item.Size,
		item.Stock,
		item.CreatedAt,
		item.UpdatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("repository: failed to upsert cart item for user %s: %w", item.UserID, err)
	}

	return stored, nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM cart_items WHERE user_id = $1 ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query cart items for user %s: %w", userID, err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan cart item for user %s: %w", userID, err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating cart items for user %s: %w", userID, err)
	}

	return items, nil
}

func (r *postgresRepository) SetQuantity(ctx context.Context, id uuid.UUID, quantity int, updatedAt time.Time) (*Item, error) {
	query := `
		UPDATE cart_items
		SET quantity = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + itemColumns

	it, err := scanItem(r.db.QueryRow(ctx, query, quantity, updatedAt, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("repository: failed to update cart item %s: %w", id, err)
	}

	return it, nil
}

func (r *postgresRepository) Remove(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete cart item %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *postgresRepository) ClearByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to clear cart for user %s: %w", userID, err)
	}
	return cmdTag.RowsAffected(), nil
}
