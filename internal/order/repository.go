package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/footwear-shop/internal/apperror"
)

var (
	ErrOrderNotFound = fmt.Errorf("order %w", apperror.ErrNotFound)
	// ErrStatusMismatch is returned by a conditional status update when the
	// order exists but is not in one of the expected statuses.
	ErrStatusMismatch = fmt.Errorf("order status changed concurrently: %w", apperror.ErrConflict)
)

type Repository interface {
	// Create stores the order and its items in one transaction.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	// UpdateStatus applies change when the current status is one of from, or
	// unconditionally when from is empty. It returns the updated order.
	UpdateStatus(ctx context.Context, id uuid.UUID, from []Status, change StatusChange) (*Order, error)
}

const orderColumns = `id, user_id, full_name, phone, street, city, state, zip_code, payment_method,
	subtotal, shipping_cost, total_amount, order_status, order_date, estimated_delivery,
	tracking_number, notes, created_at, updated_at`

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, o *Order) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic_value", p).Stringer("order_id", o.ID).Msg("Panic recovered during order create, rolling back")
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", o.ID).Msg("Failed to rollback transaction after panic")
			}
			panic(p)
		} else if err != nil {
			log.Warn().Err(err).Stringer("order_id", o.ID).Msg("Transaction for order create failed, rolling back")
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", o.ID).Msg("Failed to rollback transaction")
			}
		} else if commitErr := tx.Commit(ctx); commitErr != nil {
			log.Error().Err(commitErr).Stringer("order_id", o.ID).Msg("Failed to commit transaction")
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
		}
	}()

	queryOrder := `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err = tx.Exec(ctx, queryOrder,
		o.ID,
		o.UserID,
		o.ShippingAddress.FullName,
		o.ShippingAddress.Phone,
		o.ShippingAddress.Street,
		o.ShippingAddress.City,
		o.ShippingAddress.State,
		o.ShippingAddress.ZipCode,
		o.PaymentMethod,
		o.Subtotal,
		o.ShippingCost,
		o.TotalAmount,
		string(o.Status),
		o.OrderDate,
		o.EstimatedDelivery,
		o.TrackingNumber,
		o.Notes,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}

	batch := &pgx.Batch{}
	for i, item := range o.Items {
		itemID, genErr := uuid.NewV4()
		if genErr != nil {
			return fmt.Errorf("repository: failed to generate order item id: %w", genErr)
		}
		batch.Queue(`
			INSERT INTO order_items (id, order_id, position, shoe_id, name, brand, price, image, quantity, size)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			itemID, o.ID, i, item.ShoeID, item.Name, item.Brand, item.Price, item.Image, item.Quantity, item.Size,
		)
	}
	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("repository: failed to insert order items for order %s: %w", o.ID, err)
	}

	return nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o      Order
		status string
	)
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.ShippingAddress.FullName,
		&o.ShippingAddress.Phone,
		&o.ShippingAddress.Street,
		&o.ShippingAddress.City,
		&o.ShippingAddress.State,
		&o.ShippingAddress.ZipCode,
		&o.PaymentMethod,
		&o.Subtotal,
		&o.ShippingCost,
		&o.TotalAmount,
		&status,
		&o.OrderDate,
		&o.EstimatedDelivery,
		&o.TrackingNumber,
		&o.Notes,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Status = Status(status)
	o.Items = make([]Item, 0)
	return &o, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}

	if err := r.attachItems(ctx, map[uuid.UUID]*Order{o.ID: o}, []uuid.UUID{o.ID}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepository) ListAll(ctx context.Context) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY order_date DESC, id`)
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY order_date DESC, id`, userID)
}

func (r *postgresRepository) list(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer rows.Close()

	ordersMap := make(map[uuid.UUID]*Order)
	var orderIDs []uuid.UUID
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		ordersMap[o.ID] = o
		orderIDs = append(orderIDs, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating orders: %w", err)
	}

	if len(orderIDs) == 0 {
		return []Order{}, nil
	}

	if err := r.attachItems(ctx, ordersMap, orderIDs); err != nil {
		return nil, err
	}

	result := make([]Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		result = append(result, *ordersMap[id])
	}
	return result, nil
}

func (r *postgresRepository) attachItems(ctx context.Context, orders map[uuid.UUID]*Order, ids []uuid.UUID) error {
	rows, err := r.db.Query(ctx, `
		SELECT order_id, shoe_id, name, brand, price, image, quantity, size
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`, ids)
	if err != nil {
		return fmt.Errorf("repository: failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID uuid.UUID
			item    Item
		)
		if err := rows.Scan(&orderID, &item.ShoeID, &item.Name, &item.Brand, &item.Price, &item.Image, &item.Quantity, &item.Size); err != nil {
			return fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		if o, ok := orders[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("repository: failed iterating order items: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []Status, change StatusChange) (*Order, error) {
	var allowed []string
	for _, s := range from {
		allowed = append(allowed, string(s))
	}

	query := `
		UPDATE orders
		SET order_status = $1,
			estimated_delivery = COALESCE($2, estimated_delivery),
			tracking_number = COALESCE($3, tracking_number),
			notes = COALESCE($4, notes),
			updated_at = $5
		WHERE id = $6 AND ($7::text[] IS NULL OR order_status = ANY($7::text[]))
	`
	cmdTag, err := r.db.Exec(ctx, query,
		string(change.Status),
		change.EstimatedDelivery,
		change.TrackingNumber,
		change.Notes,
		change.UpdatedAt,
		id,
		allowed,
	)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", id).Stringer("new_status", change.Status).Msg("repository: failed to update order status")
		return nil, fmt.Errorf("repository: failed to update order status %s: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		var current string
		err := r.db.QueryRow(ctx, `SELECT order_status FROM orders WHERE id = $1`, id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			log.Warn().Stringer("order_id", id).Stringer("new_status", change.Status).Msg("repository: order not found for status update")
			return nil, ErrOrderNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("repository: failed to read order status %s: %w", id, err)
		}
		return nil, fmt.Errorf("order is %s: %w", current, ErrStatusMismatch)
	}

	return r.GetByID(ctx, id)
}
