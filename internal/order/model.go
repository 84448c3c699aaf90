package order

import (
	"strings"
	"time"

	"github.com/gofrs/uuid"
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

var statuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is one of the known order statuses.
func (s Status) Valid() bool {
	for _, known := range statuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStatus matches raw against the known statuses ignoring case. Unknown
// values are returned as is and fail Valid.
func ParseStatus(raw string) Status {
	raw = strings.TrimSpace(raw)
	for _, known := range statuses {
		if strings.EqualFold(raw, string(known)) {
			return known
		}
	}
	return Status(raw)
}

const DefaultPaymentMethod = "Cash on Delivery"

const (
	deliveryWindow        = 7 * 24 * time.Hour
	shippedDeliveryWindow = 3 * 24 * time.Hour
)

type ShippingAddress struct {
	FullName string `json:"fullName" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Street   string `json:"street" validate:"required"`
	City     string `json:"city" validate:"required"`
	State    string `json:"state" validate:"required"`
	ZipCode  string `json:"zipCode" validate:"required"`
}

// Item is a value copy of a shoe at checkout time.
type Item struct {
	ShoeID   uuid.UUID `json:"shoeId" validate:"required"`
	Name     string    `json:"name" validate:"required"`
	Brand    string    `json:"brand"`
	Price    float64   `json:"price" validate:"gte=0"`
	Image    string    `json:"image"`
	Quantity int       `json:"quantity" validate:"gte=1"`
	Size     string    `json:"size" validate:"required"`
}

type Order struct {
	ID                uuid.UUID       `json:"id"`
	UserID            uuid.UUID       `json:"userId"`
	Items             []Item          `json:"items"`
	ShippingAddress   ShippingAddress `json:"shippingAddress"`
	PaymentMethod     string          `json:"paymentMethod"`
	Subtotal          float64         `json:"subtotal"`
	ShippingCost      float64         `json:"shippingCost"`
	TotalAmount       float64         `json:"totalAmount"`
	Status            Status          `json:"orderStatus"`
	OrderDate         time.Time       `json:"orderDate"`
	EstimatedDelivery time.Time       `json:"estimatedDelivery"`
	TrackingNumber    string          `json:"trackingNumber,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// PlaceInput is a checkout request. A zero subtotal or total counts as missing.
type PlaceInput struct {
	UserID          uuid.UUID        `json:"userId" validate:"required"`
	Items           []Item           `json:"items" validate:"required,min=1,dive"`
	ShippingAddress *ShippingAddress `json:"shippingAddress" validate:"required"`
	PaymentMethod   string           `json:"paymentMethod"`
	Subtotal        float64          `json:"subtotal" validate:"required,gte=0"`
	ShippingCost    float64          `json:"shippingCost" validate:"gte=0"`
	TotalAmount     float64          `json:"totalAmount" validate:"required,gte=0"`
}

// StatusUpdate changes an order's status. Tracking number and notes are left
// untouched when nil.
type StatusUpdate struct {
	Status         Status  `json:"status"`
	TrackingNumber *string `json:"trackingNumber"`
	Notes          *string `json:"notes"`
}

// StatusChange is what the repository writes for a status update.
type StatusChange struct {
	Status            Status
	EstimatedDelivery *time.Time
	TrackingNumber    *string
	Notes             *string
	UpdatedAt         time.Time
}
