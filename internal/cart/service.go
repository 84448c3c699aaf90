package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/footwear-shop/internal/apperror"
	"github.com/vasiliy-maslov/footwear-shop/internal/shoe"
)

// Catalog is the part of the shoe store the cart reads snapshots from.
type Catalog interface {
	GetByID(ctx context.Context, id uuid.UUID) (*shoe.Shoe, error)
}

type Service interface {
	Add(ctx context.Context, in AddInput) (*Item, error)
	List(ctx context.Context, userID uuid.UUID) ([]Item, error)
	SetQuantity(ctx context.Context, itemID uuid.UUID, quantity int) (*Item, error)
	Remove(ctx context.Context, itemID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo    Repository
	catalog Catalog
}

func NewService(repo Repository, catalog Catalog) Service {
	return &service{repo: repo, catalog: catalog}
}

func (s *service) Add(ctx context.Context, in AddInput) (*Item, error) {
	in.Size = strings.TrimSpace(in.Size)
	quantity := 1
	if in.Quantity != nil {
		quantity = *in.Quantity
	}

	ve := apperror.NewValidationError()
	if in.UserID == uuid.Nil {
		ve.Add("userId", "User ID is required")
	}
	if in.ShoeID == uuid.Nil {
		ve.Add("shoeId", "Shoe ID is required")
	}
	if in.Size == "" {
		ve.Add("size", "Size is required")
	}
	if quantity < 1 {
		ve.Add("quantity", "Quantity must be at least 1")
	}
	if err := ve.OrNil(); err != nil {
		log.Warn().Err(err).Msg("service: cart add rejected")
		return nil, err
	}

	sh, err := s.catalog.GetByID(ctx, in.ShoeID)
	if err != nil {
		if errors.Is(err, shoe.ErrNotFound) {
			log.Warn().Stringer("shoe_id", in.ShoeID).Msg("service: shoe not found for cart add")
			return nil, shoe.ErrNotFound
		}
		log.Error().Err(err).Stringer("shoe_id", in.ShoeID).Msg("service: failed to fetch shoe for cart add")
		return nil, fmt.Errorf("service: failed to fetch shoe for cart: %w", err)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate cart item id: %w", err)
	}

	now := time.Now().UTC()
	item, err := s.repo.Upsert(ctx, &Item{
		ID:        id,
		UserID:    in.UserID,
		ShoeID:    sh.ID,
		Name:      sh.Name,
		Brand:     sh.Brand,
		Price:     sh.Price,
		Image:     sh.Image,
		Quantity:  quantity,
		Size:      in.Size,
		Stock:     sh.Stock,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		log.Error().Err(err).Stringer("user_id", in.UserID).Msg("service: failed to upsert cart item in repository")
		return nil, fmt.Errorf("service: failed to add cart item: %w", err)
	}

	log.Info().
		Stringer("user_id", item.UserID).
		Stringer("shoe_id", item.ShoeID).
		Str("size", item.Size).
		Int("quantity", item.Quantity).
		Msg("service: cart item added")
	return item, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]Item, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch cart in repository")
		return nil, fmt.Errorf("service: failed to fetch cart: %w", err)
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

func (s *service) SetQuantity(ctx context.Context, itemID uuid.UUID, quantity int) (*Item, error) {
	if quantity < 1 {
		return nil, apperror.NewValidationError(apperror.FieldError{Field: "quantity", Message: "Quantity must be at least 1"})
	}

	item, err := s.repo.SetQuantity(ctx, itemID, quantity, time.Now().UTC())
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			log.Warn().Stringer("item_id", itemID).Msg("service: cart item not found for update")
			return nil, ErrItemNotFound
		}
		log.Error().Err(err).Stringer("item_id", itemID).Msg("service: failed to update cart item in repository")
		return nil, fmt.Errorf("service: failed to update cart item: %w", err)
	}
	return item, nil
}

func (s *service) Remove(ctx context.Context, itemID uuid.UUID) error {
	if err := s.repo.Remove(ctx, itemID); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			log.Warn().Stringer("item_id", itemID).Msg("service: cart item not found for remove")
			return ErrItemNotFound
		}
		log.Error().Err(err).Stringer("item_id", itemID).Msg("service: failed to remove cart item in repository")
		return fmt.Errorf("service: failed to remove cart item: %w", err)
	}
	return nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	n, err := s.repo.ClearByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to clear cart in repository")
		return fmt.Errorf("service: failed to clear cart: %w", err)
	}
	log.Info().Stringer("user_id", userID).Int64("removed", n).Msg("service: cart cleared")
	return nil
}
