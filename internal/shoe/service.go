package shoe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/footwear-shop/internal/validation"
)

var inputMessages = validation.Messages{
	"name.required":   "Name is required",
	"name.max":        "Name cannot exceed 100 characters",
	"brand":           "Brand is required",
	"category":        "Invalid category",
	"image.required":  "Image is required",
	"image.imageuri":  "Invalid image URL or base64 data",
	"sizes":           "At least one size is required",
	"colors":          "At least one color is required",
	"price":           "Price must be a positive number",
	"stock":           "Stock must be a positive integer",
	"description.max": "Description cannot exceed 500 characters",
}

type Service interface {
	CreateShoe(ctx context.Context, in Input) (*Shoe, error)
	ListShoes(ctx context.Context, q ListQuery) (*ListResult, error)
	GetShoe(ctx context.Context, id uuid.UUID) (*Shoe, error)
	UpdateShoe(ctx context.Context, id uuid.UUID, in Input) (*Shoe, error)
	DeleteShoe(ctx context.Context, id uuid.UUID) error
	InventorySummary(ctx context.Context) (*Summary, error)
	ExportInventory(ctx context.Context, w io.Writer) error
}

type service struct {
	repo              Repository
	validate          *validator.Validate
	lowStockThreshold int
	now               func() time.Time
}

type Option func(*service)

// WithLowStockThreshold sets the stock level at or below which a shoe counts as low stock.
func WithLowStockThreshold(n int) Option {
	return func(s *service) { s.lowStockThreshold = n }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func NewService(repo Repository, opts ...Option) Service {
	s := &service{
		repo:              repo,
		validate:          validation.New(),
		lowStockThreshold: 5,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) validateInput(in *Input) error {
	in.normalize()
	return validation.Struct(s.validate, in, inputMessages)
}

func (s *service) CreateShoe(ctx context.Context, in Input) (*Shoe, error) {
	if err := s.validateInput(&in); err != nil {
		log.Warn().Err(err).Msg("service: shoe input rejected")
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate shoe id: %w", err)
	}

	now := s.now().UTC()
	shoe := &Shoe{ID: id, CreatedAt: now, UpdatedAt: now}
	in.apply(shoe)

	if err := s.repo.Create(ctx, shoe); err != nil {
		log.Error().Err(err).Msg("service: failed to create shoe in repository")
		return nil, fmt.Errorf("service: failed to create shoe: %w", err)
	}

	log.Info().Stringer("shoe_id", shoe.ID).Str("name", shoe.Name).Msg("service: shoe created")
	return shoe, nil
}

func (s *service) ListShoes(ctx context.Context, q ListQuery) (*ListResult, error) {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	q.Limit = ClampLimit(q.Limit)
	if len(q.Sort) == 0 {
		q.Sort = ParseSort("")
	}

	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list shoes in repository")
		return nil, fmt.Errorf("service: failed to list shoes: %w", err)
	}
	if items == nil {
		items = []Shoe{}
	}

	return &ListResult{
		Items:       items,
		Count:       len(items),
		Total:       total,
		Pages:       PageCount(total, q.Limit),
		CurrentPage: q.Page,
	}, nil
}

func (s *service) GetShoe(ctx context.Context, id uuid.UUID) (*Shoe, error) {
	shoe, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Stringer("shoe_id", id).Msg("service: shoe not found by id")
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("shoe_id", id).Msg("service: failed to fetch shoe by id in repository")
		return nil, fmt.Errorf("service: failed to fetch shoe by id: %w", err)
	}
	return shoe, nil
}

func (s *service) UpdateShoe(ctx context.Context, id uuid.UUID, in Input) (*Shoe, error) {
	if err := s.validateInput(&in); err != nil {
		log.Warn().Err(err).Stringer("shoe_id", id).Msg("service: shoe update rejected")
		return nil, err
	}

	shoe := &Shoe{ID: id, UpdatedAt: s.now().UTC()}
	in.apply(shoe)

	if err := s.repo.Update(ctx, shoe); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("shoe_id", id).Msg("service: failed to update shoe in repository")
		return nil, fmt.Errorf("service: failed to update shoe: %w", err)
	}

	log.Info().Stringer("shoe_id", id).Msg("service: shoe updated")
	return shoe, nil
}

func (s *service) DeleteShoe(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Stringer("shoe_id", id).Msg("service: shoe not found for delete")
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("shoe_id", id).Msg("service: failed to delete shoe in repository")
		return fmt.Errorf("service: failed to delete shoe: %w", err)
	}

	log.Info().Stringer("shoe_id", id).Msg("service: shoe deleted")
	return nil
}

func (s *service) InventorySummary(ctx context.Context) (*Summary, error) {
	summary, err := s.repo.Summary(ctx, s.lowStockThreshold)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to compute inventory summary")
		return nil, fmt.Errorf("service: failed to compute inventory summary: %w", err)
	}
	return summary, nil
}

func (s *service) ExportInventory(ctx context.Context, w io.Writer) error {
	shoes, err := s.repo.All(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to load shoes for export")
		return fmt.Errorf("service: failed to load shoes for export: %w", err)
	}
	if err := WriteWorkbook(w, shoes); err != nil {
		return fmt.Errorf("service: failed to write inventory workbook: %w", err)
	}
	return nil
}
