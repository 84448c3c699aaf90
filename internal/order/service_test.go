package order_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/footwear-shop/internal/apperror"
	"github.com/vasiliy-maslov/footwear-shop/internal/order"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) ListAll(ctx context.Context) ([]order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []order.Status, change order.StatusChange) (*order.Order, error) {
	args := m.Called(ctx, id, from, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

type MockCartClearer struct {
	mock.Mock
}

func (m *MockCartClearer) ClearByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(eventType string, payload any) {
	m.Called(eventType, payload)
}

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func validPlaceInput(userID uuid.UUID) order.PlaceInput {
	return order.PlaceInput{
		UserID: userID,
		Items: []order.Item{{
			ShoeID:   uuid.Must(uuid.NewV4()),
			Name:     "Air Runner",
			Brand:    "Stride",
			Price:    1200,
			Image:    "https://cdn.example.com/a.png",
			Quantity: 1,
			Size:     "9",
		}},
		ShippingAddress: &order.ShippingAddress{
			FullName: "Sam Doe",
			Phone:    "+15550100",
			Street:   "1 Main St",
			City:     "Springfield",
			State:    "IL",
			ZipCode:  "62701",
		},
		Subtotal:    1200,
		TotalAmount: 1200,
	}
}

func TestOrderService_PlaceOrder_Success(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockCarts := new(MockCartClearer)
	mockPub := new(MockPublisher)
	svc := order.NewService(mockRepo, mockCarts, order.WithPublisher(mockPub), order.WithClock(clock))

	userID := uuid.Must(uuid.NewV4())
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once()
	mockCarts.On("ClearByUser", mock.Anything, userID).Return(int64(1), nil).Once()
	mockPub.On("Publish", order.EventCreated, mock.AnythingOfType("*order.Order")).Once()

	o, err := svc.PlaceOrder(context.Background(), validPlaceInput(userID))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, o.ID)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, order.DefaultPaymentMethod, o.PaymentMethod)
	assert.Equal(t, now, o.OrderDate)
	assert.Equal(t, now.Add(7*24*time.Hour), o.EstimatedDelivery)
	assert.Len(t, o.Items, 1)

	mockRepo.AssertExpectations(t)
	mockCarts.AssertExpectations(t)
	mockPub.AssertExpectations(t)
}

func TestOrderService_PlaceOrder_CartClearFailureKeepsOrder(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockCarts := new(MockCartClearer)
	svc := order.NewService(mockRepo, mockCarts)

	userID := uuid.Must(uuid.NewV4())
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	mockCarts.On("ClearByUser", mock.Anything, userID).Return(int64(0), errors.New("connection refused")).Once()

	in := validPlaceInput(userID)
	in.PaymentMethod = "Card"
	o, err := svc.PlaceOrder(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Card", o.PaymentMethod)
}

func TestOrderService_PlaceOrder_Validation(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name      string
		mutate    func(in *order.PlaceInput)
		wantField string
	}{
		{name: "no_user", mutate: func(in *order.PlaceInput) { in.UserID = uuid.Nil }, wantField: "userId"},
		{name: "no_items", mutate: func(in *order.PlaceInput) { in.Items = nil }, wantField: "items"},
		{name: "empty_items", mutate: func(in *order.PlaceInput) { in.Items = []order.Item{} }, wantField: "items"},
		{name: "no_address", mutate: func(in *order.PlaceInput) { in.ShippingAddress = nil }, wantField: "shippingAddress"},
		{name: "no_city", mutate: func(in *order.PlaceInput) { in.ShippingAddress.City = "" }, wantField: "shippingAddress.city"},
		{name: "zero_subtotal", mutate: func(in *order.PlaceInput) { in.Subtotal = 0 }, wantField: "subtotal"},
		{name: "zero_total", mutate: func(in *order.PlaceInput) { in.TotalAmount = 0 }, wantField: "totalAmount"},
		{name: "item_quantity", mutate: func(in *order.PlaceInput) { in.Items[0].Quantity = 0 }, wantField: "items.quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockOrderRepository)
			mockCarts := new(MockCartClearer)

			in := validPlaceInput(userID)
			tt.mutate(&in)

			_, err := order.NewService(mockRepo, mockCarts).PlaceOrder(context.Background(), in)
			require.ErrorIs(t, err, apperror.ErrValidation)

			fields := apperror.Fields(err)
			require.Len(t, fields, 1)
			assert.Equal(t, tt.wantField, fields[0].Field)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			mockCarts.AssertNotCalled(t, "ClearByUser", mock.Anything, mock.Anything)
		})
	}
}

func TestOrderService_Cancel(t *testing.T) {
	id := uuid.Must(uuid.NewV4())
	pendingOnly := []order.Status{order.StatusPending}

	t.Run("pending", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		mockRepo.On("UpdateStatus", mock.Anything, id, pendingOnly, order.StatusChange{Status: order.StatusCancelled, UpdatedAt: now}).
			Return(&order.Order{ID: id, Status: order.StatusCancelled}, nil).Once()

		o, err := order.NewService(mockRepo, new(MockCartClearer), order.WithClock(clock)).Cancel(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, order.StatusCancelled, o.Status)
	})

	t.Run("not_pending", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		mockRepo.On("UpdateStatus", mock.Anything, id, pendingOnly, mock.Anything).
			Return(nil, order.ErrStatusMismatch).Once()

		_, err := order.NewService(mockRepo, new(MockCartClearer)).Cancel(context.Background(), id)
		require.ErrorIs(t, err, order.ErrNotCancellable)
		require.ErrorIs(t, err, apperror.ErrConflict)
	})

	t.Run("missing", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		mockRepo.On("UpdateStatus", mock.Anything, id, pendingOnly, mock.Anything).
			Return(nil, order.ErrOrderNotFound).Once()

		_, err := order.NewService(mockRepo, new(MockCartClearer)).Cancel(context.Background(), id)
		require.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestOrderService_SetStatus(t *testing.T) {
	id := uuid.Must(uuid.NewV4())
	tracking := "TRK-1"

	t.Run("unknown_status", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		_, err := order.NewService(mockRepo, new(MockCartClearer)).SetStatus(context.Background(), id, order.StatusUpdate{Status: "Lost"})
		require.ErrorIs(t, err, apperror.ErrValidation)
		mockRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("shipped_sets_eta_and_sources", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		mockPub := new(MockPublisher)
		eta := now.Add(3 * 24 * time.Hour)
		wantChange := order.StatusChange{
			Status:            order.StatusShipped,
			EstimatedDelivery: &eta,
			TrackingNumber:    &tracking,
			UpdatedAt:         now,
		}
		wantFrom := []order.Status{order.StatusShipped, order.StatusPending, order.StatusProcessing}
		updated := &order.Order{ID: id, Status: order.StatusShipped, EstimatedDelivery: eta, TrackingNumber: tracking}

		mockRepo.On("UpdateStatus", mock.Anything, id, wantFrom, wantChange).Return(updated, nil).Once()
		mockPub.On("Publish", order.EventStatus, updated).Once()

		svc := order.NewService(mockRepo, new(MockCartClearer), order.WithClock(clock), order.WithPublisher(mockPub))
		o, err := svc.SetStatus(context.Background(), id, order.StatusUpdate{Status: order.StatusShipped, TrackingNumber: &tracking})
		require.NoError(t, err)
		assert.Equal(t, eta, o.EstimatedDelivery)
		mockRepo.AssertExpectations(t)
		mockPub.AssertExpectations(t)
	})

	t.Run("illegal_move_is_conflict", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		mockRepo.On("UpdateStatus", mock.Anything, id, []order.Status{order.StatusPending}, mock.Anything).
			Return(nil, order.ErrStatusMismatch).Once()

		_, err := order.NewService(mockRepo, new(MockCartClearer)).SetStatus(context.Background(), id, order.StatusUpdate{Status: order.StatusPending})
		require.ErrorIs(t, err, order.ErrInvalidTransition)
	})

	t.Run("permissive_policy_is_unconditional", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		mockRepo.On("UpdateStatus", mock.Anything, id, []order.Status(nil), mock.Anything).
			Return(&order.Order{ID: id, Status: order.StatusPending}, nil).Once()

		svc := order.NewService(mockRepo, new(MockCartClearer), order.WithTransitionPolicy(false))
		o, err := svc.SetStatus(context.Background(), id, order.StatusUpdate{Status: order.StatusPending})
		require.NoError(t, err)
		assert.Equal(t, order.StatusPending, o.Status)
	})
}

func TestOrderService_GetOrder_NotFound(t *testing.T) {
	id := uuid.Must(uuid.NewV4())
	mockRepo := new(MockOrderRepository)
	mockRepo.On("GetByID", mock.Anything, id).Return(nil, order.ErrOrderNotFound).Once()

	_, err := order.NewService(mockRepo, new(MockCartClearer)).GetOrder(context.Background(), id)
	require.ErrorIs(t, err, apperror.ErrNotFound)
}
