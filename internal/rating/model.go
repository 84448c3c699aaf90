package rating

import (
	"time"

	"github.com/gofrs/uuid"
)

const (
	MinValue = 1
	MaxValue = 5
)

// Rating is one user's score for one shoe. A user holds at most one rating per shoe.
type Rating struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	ShoeID    uuid.UUID `json:"shoeId"`
	Value     int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Average struct {
	AverageRating float64 `json:"averageRating"`
	TotalRatings  int     `json:"totalRatings"`
}
