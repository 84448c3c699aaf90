package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/footwear-shop/internal/apperror"
	"github.com/vasiliy-maslov/footwear-shop/internal/validation"
)

const (
	EventCreated = "order.created"
	EventStatus  = "order.status"
)

// allowedTransitions lists the statuses reachable from each status when
// transitions are enforced. Moving to the current status is always allowed.
var allowedTransitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusProcessing: true,
		StatusShipped:    true,
		StatusDelivered:  true,
		StatusCancelled:  true,
	},
	StatusProcessing: {
		StatusShipped:   true,
		StatusDelivered: true,
		StatusCancelled: true,
	},
	StatusShipped: {
		StatusDelivered: true,
	},
	StatusDelivered: {},
	StatusCancelled: {},
}

var (
	ErrInvalidTransition = fmt.Errorf("invalid order status transition: %w", apperror.ErrConflict)
	ErrNotCancellable    = fmt.Errorf("only pending orders can be cancelled: %w", apperror.ErrConflict)
)

var placeMessages = validation.Messages{
	"userId":                   "User ID is required",
	"items.required":           "Order must contain at least one item",
	"items.min":                "Order must contain at least one item",
	"shippingAddress.required": "Shipping address is required",
	"subtotal.required":        "Subtotal is required",
	"totalAmount.required":     "Total amount is required",
}

// CartClearer empties a user's cart after checkout.
type CartClearer interface {
	ClearByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Publisher receives order events. Delivery is best effort.
type Publisher interface {
	Publish(eventType string, payload any)
}

type Service interface {
	PlaceOrder(ctx context.Context, in PlaceInput) (*Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	SetStatus(ctx context.Context, id uuid.UUID, upd StatusUpdate) (*Order, error)
	Cancel(ctx context.Context, id uuid.UUID) (*Order, error)
}

type service struct {
	orderRepo          Repository
	carts              CartClearer
	publisher          Publisher
	validate           *validator.Validate
	enforceTransitions bool
	now                func() time.Time
}

type Option func(*service)

// WithPublisher sends order events to p.
func WithPublisher(p Publisher) Option {
	return func(s *service) { s.publisher = p }
}

// WithTransitionPolicy toggles the status state machine. When off any known
// status may follow any other.
func WithTransitionPolicy(enforce bool) Option {
	return func(s *service) { s.enforceTransitions = enforce }
}

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func NewService(orderRepo Repository, carts CartClearer, opts ...Option) Service {
	s := &service{
		orderRepo:          orderRepo,
		carts:              carts,
		validate:           validation.New(),
		enforceTransitions: true,
		now:                time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) PlaceOrder(ctx context.Context, in PlaceInput) (*Order, error) {
	if err := validation.Struct(s.validate, in, placeMessages); err != nil {
		log.Warn().Err(err).Msg("service: order rejected")
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate order id: %w", err)
	}

	paymentMethod := strings.TrimSpace(in.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = DefaultPaymentMethod
	}

	now := s.now().UTC()
	o := &Order{
		ID:                id,
		UserID:            in.UserID,
		Items:             append([]Item(nil), in.Items...),
		ShippingAddress:   *in.ShippingAddress,
		PaymentMethod:     paymentMethod,
		Subtotal:          in.Subtotal,
		ShippingCost:      in.ShippingCost,
		TotalAmount:       in.TotalAmount,
		Status:            StatusPending,
		OrderDate:         now,
		EstimatedDelivery: now.Add(deliveryWindow),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.orderRepo.Create(ctx, o); err != nil {
		log.Error().Err(err).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().Stringer("order_id", o.ID).Stringer("user_id", o.UserID).Float64("total", o.TotalAmount).Msg("service: order created")

	// The order is committed; a failed clear leaves stale cart lines but the
	// order stands.
	if _, err := s.carts.ClearByUser(ctx, o.UserID); err != nil {
		log.Error().Err(err).Stringer("order_id", o.ID).Stringer("user_id", o.UserID).Msg("service: failed to clear cart after checkout")
	}

	s.publish(EventCreated, o)
	return o, nil
}

func (s *service) ListAll(ctx context.Context) ([]Order, error) {
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to fetch orders in repository")
		return nil, fmt.Errorf("service: failed to fetch orders: %w", err)
	}
	return orders, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch user orders in repository")
		return nil, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}
	return orders, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Stringer("order_id", id).Msg("service: order not found by id")
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to fetch order by id in repository")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}
	return o, nil
}

func (s *service) SetStatus(ctx context.Context, id uuid.UUID, upd StatusUpdate) (*Order, error) {
	if !upd.Status.Valid() {
		return nil, apperror.NewValidationError(apperror.FieldError{
			Field:   "status",
			Message: "Invalid order status",
		})
	}

	change := StatusChange{
		Status:         upd.Status,
		TrackingNumber: upd.TrackingNumber,
		Notes:          upd.Notes,
		UpdatedAt:      s.now().UTC(),
	}
	if upd.Status == StatusShipped {
		eta := change.UpdatedAt.Add(shippedDeliveryWindow)
		change.EstimatedDelivery = &eta
	}

	var from []Status
	if s.enforceTransitions {
		from = sourcesOf(upd.Status)
	}

	o, err := s.orderRepo.UpdateStatus(ctx, id, from, change)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			log.Warn().Stringer("order_id", id).Stringer("new_status", upd.Status).Msg("service: order not found, cannot update status")
			return nil, ErrOrderNotFound
		case errors.Is(err, ErrStatusMismatch):
			log.Warn().Err(err).Stringer("order_id", id).Stringer("new_status", upd.Status).Msg("service: invalid status transition attempt")
			return nil, fmt.Errorf("cannot move to %s: %w", upd.Status, ErrInvalidTransition)
		}
		log.Error().Err(err).Stringer("order_id", id).Stringer("new_status", upd.Status).Msg("service: failed to update order status in repository")
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().Stringer("order_id", id).Stringer("new_status", o.Status).Msg("service: order status updated")
	s.publish(EventStatus, o)
	return o, nil
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*Order, error) {
	change := StatusChange{Status: StatusCancelled, UpdatedAt: s.now().UTC()}

	o, err := s.orderRepo.UpdateStatus(ctx, id, []Status{StatusPending}, change)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			log.Warn().Stringer("order_id", id).Msg("service: order not found for cancel")
			return nil, ErrOrderNotFound
		case errors.Is(err, ErrStatusMismatch):
			log.Warn().Err(err).Stringer("order_id", id).Msg("service: order is not cancellable")
			return nil, ErrNotCancellable
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to cancel order in repository")
		return nil, fmt.Errorf("service: failed to cancel order: %w", err)
	}

	log.Info().Stringer("order_id", id).Msg("service: order cancelled")
	s.publish(EventStatus, o)
	return o, nil
}

func (s *service) publish(eventType string, o *Order) {
	if s.publisher != nil {
		s.publisher.Publish(eventType, o)
	}
}

// sourcesOf returns every status from which target may be reached.
func sourcesOf(target Status) []Status {
	from := []Status{target}
	for _, src := range statuses {
		if allowedTransitions[src][target] {
			from = append(from, src)
		}
	}
	return from
}
