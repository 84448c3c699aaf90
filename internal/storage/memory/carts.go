package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/footwear-shop/internal/cart"
)

type cartKey struct {
	userID uuid.UUID
	shoeID uuid.UUID
	size   string
}

type CartRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]cart.Item
	index map[cartKey]uuid.UUID
}

func NewCartRepository() *CartRepository {
	return &CartRepository{
		items: make(map[uuid.UUID]cart.Item),
		index: make(map[cartKey]uuid.UUID),
	}
}

func (r *CartRepository) Upsert(_ context.Context, item *cart.Item) (*cart.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cartKey{userID: item.UserID, shoeID: item.ShoeID, size: item.Size}
	if id, ok := r.index[key]; ok {
		existing := r.items[id]
		existing.Quantity += item.Quantity
		existing.Stock = item.Stock
		existing.UpdatedAt = item.UpdatedAt
		r.items[id] = existing
		return &existing, nil
	}

	stored := *item
	r.items[stored.ID] = stored
	r.index[key] = stored.ID
	return &stored, nil
}

func (r *CartRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]cart.Item, error) {
	r.mu.RLock()
	items := make([]cart.Item, 0)
	for _, it := range r.items {
		if it.UserID == userID {
			items = append(items, it)
		}
	}
	r.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if c := items[i].CreatedAt.Compare(items[j].CreatedAt); c != 0 {
			return c > 0
		}
		return bytes.Compare(items[i].ID.Bytes(), items[j].ID.Bytes()) < 0
	})
	return items, nil
}

func (r *CartRepository) SetQuantity(_ context.Context, id uuid.UUID, quantity int, updatedAt time.Time) (*cart.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.items[id]
	if !ok {
		return nil, cart.ErrItemNotFound
	}
	it.Quantity = quantity
	it.UpdatedAt = updatedAt
	r.items[id] = it
	return &it, nil
}

func (r *CartRepository) Remove(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.items[id]
	if !ok {
		return cart.ErrItemNotFound
	}
	delete(r.items, id)
	delete(r.index, cartKey{userID: it.UserID, shoeID: it.ShoeID, size: it.Size})
	return nil
}

func (r *CartRepository) ClearByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, it := range r.items {
		if it.UserID == userID {
			delete(r.items, id)
			delete(r.index, cartKey{userID: it.UserID, shoeID: it.ShoeID, size: it.Size})
			n++
		}
	}
	return n, nil
}
