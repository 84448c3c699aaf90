package memory

import (
	"context"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/footwear-shop/internal/rating"
)

type ratingKey struct {
	userID uuid.UUID
	shoeID uuid.UUID
}

type RatingRepository struct {
	mu      sync.RWMutex
	ratings map[ratingKey]rating.Rating
}

func NewRatingRepository() *RatingRepository {
	return &RatingRepository{ratings: make(map[ratingKey]rating.Rating)}
}

func (r *RatingRepository) Upsert(_ context.Context, rt *rating.Rating) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := ratingKey{userID: rt.UserID, shoeID: rt.ShoeID}
	if existing, ok := r.ratings[key]; ok {
		existing.Value = rt.Value
		existing.UpdatedAt = rt.UpdatedAt
		r.ratings[key] = existing
		rt.ID = existing.ID
		rt.CreatedAt = existing.CreatedAt
		return false, nil
	}
	r.ratings[key] = *rt
	return true, nil
}

func (r *RatingRepository) Get(_ context.Context, shoeID, userID uuid.UUID) (*rating.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.ratings[ratingKey{userID: userID, shoeID: shoeID}]
	if !ok {
		return nil, nil
	}
	return &rt, nil
}

func (r *RatingRepository) Average(_ context.Context, shoeID uuid.UUID) (rating.Average, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var avg rating.Average
	sum := 0
	for key, rt := range r.ratings {
		if key.shoeID == shoeID {
			sum += rt.Value
			avg.TotalRatings++
		}
	}
	if avg.TotalRatings > 0 {
		avg.AverageRating = float64(sum) / float64(avg.TotalRatings)
	}
	return avg, nil
}
