package memory

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/footwear-shop/internal/order"
)

type OrderRepository struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]order.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[uuid.UUID]order.Order)}
}

func (r *OrderRepository) Create(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; ok {
		return fmt.Errorf("memory: order %s already exists", o.ID)
	}
	r.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (r *OrderRepository) GetByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	out := cloneOrder(o)
	return &out, nil
}

func (r *OrderRepository) ListAll(_ context.Context) ([]order.Order, error) {
	return r.list(func(order.Order) bool { return true }), nil
}

func (r *OrderRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]order.Order, error) {
	return r.list(func(o order.Order) bool { return o.UserID == userID }), nil
}

func (r *OrderRepository) UpdateStatus(_ context.Context, id uuid.UUID, from []order.Status, change order.StatusChange) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	if len(from) > 0 && !slices.Contains(from, o.Status) {
		return nil, fmt.Errorf("order is %s: %w", o.Status, order.ErrStatusMismatch)
	}

	o.Status = change.Status
	if change.EstimatedDelivery != nil {
		o.EstimatedDelivery = *change.EstimatedDelivery
	}
	if change.TrackingNumber != nil {
		o.TrackingNumber = *change.TrackingNumber
	}
	if change.Notes != nil {
		o.Notes = *change.Notes
	}
	o.UpdatedAt = change.UpdatedAt
	r.orders[id] = o

	out := cloneOrder(o)
	return &out, nil
}

func (r *OrderRepository) list(keep func(order.Order) bool) []order.Order {
	r.mu.RLock()
	out := make([]order.Order, 0)
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, cloneOrder(o))
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if c := out[i].OrderDate.Compare(out[j].OrderDate); c != 0 {
			return c > 0
		}
		return bytes.Compare(out[i].ID.Bytes(), out[j].ID.Bytes()) < 0
	})
	return out
}

func cloneOrder(o order.Order) order.Order {
	o.Items = append([]order.Item{}, o.Items...)
	return o
}
