// Package memory keeps every store in process memory. It backs the service
// when STORAGE_DRIVER=memory and the end-to-end tests.
package memory

import (
	"bytes"
	"cmp"
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/footwear-shop/internal/shoe"
)

type ShoeRepository struct {
	mu    sync.RWMutex
	shoes map[uuid.UUID]shoe.Shoe
}

func NewShoeRepository() *ShoeRepository {
	return &ShoeRepository{shoes: make(map[uuid.UUID]shoe.Shoe)}
}

func (r *ShoeRepository) Create(_ context.Context, s *shoe.Shoe) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shoes[s.ID] = cloneShoe(*s)
	return nil
}

func (r *ShoeRepository) GetByID(_ context.Context, id uuid.UUID) (*shoe.Shoe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.shoes[id]
	if !ok {
		return nil, shoe.ErrNotFound
	}
	out := cloneShoe(s)
	return &out, nil
}

func (r *ShoeRepository) List(_ context.Context, q shoe.ListQuery) ([]shoe.Shoe, int, error) {
	r.mu.RLock()
	matched := make([]shoe.Shoe, 0, len(r.shoes))
	for _, s := range r.shoes {
		if matches(s, q) {
			matched = append(matched, cloneShoe(s))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool { return less(matched[i], matched[j], q.Sort) })

	total := len(matched)
	start := min(q.Offset(), total)
	end := start + min(max(q.Limit, 0), total-start)
	return matched[start:end], total, nil
}

func (r *ShoeRepository) Update(_ context.Context, s *shoe.Shoe) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.shoes[s.ID]
	if !ok {
		return shoe.ErrNotFound
	}
	s.CreatedAt = existing.CreatedAt
	r.shoes[s.ID] = cloneShoe(*s)
	return nil
}

func (r *ShoeRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.shoes[id]; !ok {
		return shoe.ErrNotFound
	}
	delete(r.shoes, id)
	return nil
}

func (r *ShoeRepository) All(_ context.Context) ([]shoe.Shoe, error) {
	r.mu.RLock()
	items := make([]shoe.Shoe, 0, len(r.shoes))
	for _, s := range r.shoes {
		items = append(items, cloneShoe(s))
	}
	r.mu.RUnlock()

	newest := shoe.ParseSort("")
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j], newest) })
	return items, nil
}

func (r *ShoeRepository) Summary(_ context.Context, lowStockThreshold int) (*shoe.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sum := &shoe.Summary{TotalProducts: len(r.shoes)}
	for _, s := range r.shoes {
		sum.TotalStock += s.Stock
		sum.TotalValue += s.Price * float64(s.Stock)
		switch {
		case s.Stock == 0:
			sum.OutOfStock++
		case s.Stock <= lowStockThreshold:
			sum.LowStock++
		}
	}
	return sum, nil
}

func cloneShoe(s shoe.Shoe) shoe.Shoe {
	s.Sizes = append([]string(nil), s.Sizes...)
	s.Colors = append([]string(nil), s.Colors...)
	return s
}

func matches(s shoe.Shoe, q shoe.ListQuery) bool {
	for _, f := range q.Filters {
		if !matchesFilter(s, f) {
			return false
		}
	}
	if len(q.SearchTerms) > 0 {
		words := shoe.SearchTerms(s.Name + " " + s.Brand + " " + s.Description)
		if !overlaps(words, q.SearchTerms) {
			return false
		}
	}
	return true
}

func matchesFilter(s shoe.Shoe, f shoe.Filter) bool {
	switch f.Field {
	case shoe.FieldSizes:
		return overlaps(s.Sizes, f.Values)
	case shoe.FieldColors:
		return overlaps(s.Colors, f.Values)
	case shoe.FieldPrice:
		for _, v := range f.Values {
			if p, err := strconv.ParseFloat(v, 64); err == nil && p == s.Price {
				return true
			}
		}
		return false
	case shoe.FieldStock:
		for _, v := range f.Values {
			if n, err := strconv.Atoi(v); err == nil && n == s.Stock {
				return true
			}
		}
		return false
	}

	var got string
	switch f.Field {
	case shoe.FieldName:
		got = s.Name
	case shoe.FieldBrand:
		got = s.Brand
	case shoe.FieldCategory:
		got = string(s.Category)
	case shoe.FieldDescription:
		got = s.Description
	default:
		return true
	}
	for _, v := range f.Values {
		if v == got {
			return true
		}
	}
	return false
}

func overlaps(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

func less(a, b shoe.Shoe, fields []shoe.SortField) bool {
	for _, f := range fields {
		c := compareField(a, b, f.Field)
		if c == 0 {
			continue
		}
		if f.Desc {
			return c > 0
		}
		return c < 0
	}
	return bytes.Compare(a.ID.Bytes(), b.ID.Bytes()) < 0
}

func compareField(a, b shoe.Shoe, field shoe.Field) int {
	switch field {
	case shoe.FieldName:
		return strings.Compare(a.Name, b.Name)
	case shoe.FieldBrand:
		return strings.Compare(a.Brand, b.Brand)
	case shoe.FieldCategory:
		return strings.Compare(string(a.Category), string(b.Category))
	case shoe.FieldPrice:
		return cmp.Compare(a.Price, b.Price)
	case shoe.FieldStock:
		return cmp.Compare(a.Stock, b.Stock)
	case shoe.FieldCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
	return 0
}
