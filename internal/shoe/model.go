package shoe

import (
	"strings"
	"time"

	"github.com/gofrs/uuid"
)

type Category string

const (
	CategoryMen    Category = "men"
	CategoryWomen  Category = "women"
	CategoryKids   Category = "kids"
	CategoryUnisex Category = "unisex"
)

func (c Category) String() string {
	return string(c)
}

// Shoe is a catalog entry.
type Shoe struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand"`
	Category    Category  `json:"category"`
	Image       string    `json:"image"`
	Sizes       []string  `json:"sizes"`
	Colors      []string  `json:"colors"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Input is the full payload for create and replace.
type Input struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Brand       string   `json:"brand" validate:"required"`
	Category    Category `json:"category" validate:"required,oneof=men women kids unisex"`
	Image       string   `json:"image" validate:"required,imageuri"`
	Sizes       []string `json:"sizes" validate:"required,min=1,dive,required"`
	Colors      []string `json:"colors" validate:"required,min=1,dive,required"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
	Description string   `json:"description" validate:"max=500"`
}

// normalize trims free-text fields the same way the store persists them.
func (in *Input) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Brand = strings.TrimSpace(in.Brand)
	in.Category = Category(strings.TrimSpace(string(in.Category)))
	in.Image = strings.TrimSpace(in.Image)
	in.Description = strings.TrimSpace(in.Description)
	in.Sizes = trimAll(in.Sizes)
	in.Colors = trimAll(in.Colors)
}

func (in Input) apply(s *Shoe) {
	s.Name = in.Name
	s.Brand = in.Brand
	s.Category = in.Category
	s.Image = in.Image
	s.Sizes = append([]string(nil), in.Sizes...)
	s.Colors = append([]string(nil), in.Colors...)
	s.Price = *in.Price
	s.Stock = 0
	if in.Stock != nil {
		s.Stock = *in.Stock
	}
	s.Description = in.Description
}

func trimAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

// ListResult is one page of a catalog query.
type ListResult struct {
	Items       []Shoe `json:"items"`
	Count       int    `json:"count"`
	Total       int    `json:"total"`
	Pages       int    `json:"pages"`
	CurrentPage int    `json:"currentPage"`
}

// Summary aggregates the inventory for the admin console.
type Summary struct {
	TotalProducts int     `json:"totalProducts"`
	TotalStock    int     `json:"totalStock"`
	TotalValue    float64 `json:"totalValue"`
	OutOfStock    int     `json:"outOfStock"`
	LowStock      int     `json:"lowStock"`
}
