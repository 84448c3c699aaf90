package cart

import (
	"time"

	"github.com/gofrs/uuid"
)

// Item is one cart line. Name, brand, price, image and stock are copied from
// the shoe when the line is first added; stock is refreshed on every merge.
type Item struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	ShoeID    uuid.UUID `json:"shoeId"`
	Name      string    `json:"name"`
	Brand     string    `json:"brand"`
	Price     float64   `json:"price"`
	Image     string    `json:"image"`
	Quantity  int       `json:"quantity"`
	Size      string    `json:"size"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type AddInput struct {
	UserID   uuid.UUID
	ShoeID   uuid.UUID
	Size     string
	Quantity *int
}
