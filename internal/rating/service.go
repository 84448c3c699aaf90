package rating

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/footwear-shop/internal/apperror"
)

type Service interface {
	// Submit records value as userID's rating of shoeID. updated is true when
	// an earlier rating was replaced.
	Submit(ctx context.Context, userID, shoeID uuid.UUID, value float64) (updated bool, err error)
	GetUserRating(ctx context.Context, shoeID, userID uuid.UUID) (*int, error)
	GetAverage(ctx context.Context, shoeID uuid.UUID) (Average, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Submit(ctx context.Context, userID, shoeID uuid.UUID, value float64) (bool, error) {
	ve := apperror.NewValidationError()
	if userID == uuid.Nil {
		ve.Add("userId", "User ID is required")
	}
	if shoeID == uuid.Nil {
		ve.Add("shoeId", "Shoe ID is required")
	}
	if value != math.Trunc(value) || value < MinValue || value > MaxValue {
		ve.Add("rating", fmt.Sprintf("Rating must be a whole number between %d and %d", MinValue, MaxValue))
	}
	if err := ve.OrNil(); err != nil {
		log.Warn().Err(err).Msg("service: rating rejected")
		return false, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return false, fmt.Errorf("service: failed to generate rating id: %w", err)
	}

	now := time.Now().UTC()
	rt := &Rating{
		ID:        id,
		UserID:    userID,
		ShoeID:    shoeID,
		Value:     int(value),
		CreatedAt: now,
		UpdatedAt: now,
	}

	inserted, err := s.repo.Upsert(ctx, rt)
	if err != nil {
		log.Error().Err(err).Stringer("shoe_id", shoeID).Msg("service: failed to upsert rating in repository")
		return false, fmt.Errorf("service: failed to submit rating: %w", err)
	}

	log.Info().
		Stringer("shoe_id", shoeID).
		Stringer("user_id", userID).
		Int("rating", rt.Value).
		Bool("updated", !inserted).
		Msg("service: rating stored")
	return !inserted, nil
}

func (s *service) GetUserRating(ctx context.Context, shoeID, userID uuid.UUID) (*int, error) {
	rt, err := s.repo.Get(ctx, shoeID, userID)
	if err != nil {
		log.Error().Err(err).Stringer("shoe_id", shoeID).Msg("service: failed to fetch user rating in repository")
		return nil, fmt.Errorf("service: failed to fetch user rating: %w", err)
	}
	if rt == nil {
		return nil, nil
	}
	v := rt.Value
	return &v, nil
}

func (s *service) GetAverage(ctx context.Context, shoeID uuid.UUID) (Average, error) {
	avg, err := s.repo.Average(ctx, shoeID)
	if err != nil {
		log.Error().Err(err).Stringer("shoe_id", shoeID).Msg("service: failed to compute average rating in repository")
		return Average{}, fmt.Errorf("service: failed to compute average rating: %w", err)
	}
	return avg, nil
}
