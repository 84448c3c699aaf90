package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vasiliy-maslov/footwear-shop/internal/apperror"
	"github.com/vasiliy-maslov/footwear-shop/internal/order"
)

type OrderItemRequest struct {
	ShoeID   string  `json:"shoeId"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity"`
	Size     string  `json:"size"`
}

type PlaceOrderRequest struct {
	UserID          string                 `json:"userId"`
	Items           []OrderItemRequest     `json:"items"`
	ShippingAddress *order.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	Subtotal        float64                `json:"subtotal"`
	ShippingCost    float64                `json:"shippingCost"`
	TotalAmount     float64                `json:"totalAmount"`
}

// UpdateStatusRequest accepts the new status as status or orderStatus.
type UpdateStatusRequest struct {
	Status         string  `json:"status"`
	OrderStatus    string  `json:"orderStatus"`
	TrackingNumber *string `json:"trackingNumber"`
	Notes          *string `json:"notes"`
}

type OrderHandler struct {
	service order.Service
	events  http.Handler
}

// NewOrderHandler serves the order routes. events, when not nil, handles the
// admin websocket feed.
func NewOrderHandler(service order.Service, events http.Handler) *OrderHandler {
	return &OrderHandler{service: service, events: events}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Route("/orders", func(r chi.Router) {
		r.Post("/create", h.handlePlaceOrder)
		r.Get("/", h.handleListOrders)
		r.Get("/user/{userId}", h.handleListUserOrders)
		if h.events != nil {
			r.Handle("/ws", h.events)
		}
		r.Get("/{orderId}", h.handleGetOrder)
		r.Put("/{orderId}/status", h.handleUpdateStatus)
		r.Put("/{orderId}/cancel", h.handleCancelOrder)
	})
}

func (h *OrderHandler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondBadPayload(w, err)
		return
	}

	ve := apperror.NewValidationError()
	in := order.PlaceInput{
		UserID:          parseBodyID(ve, "userId", req.UserID),
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Subtotal:        req.Subtotal,
		ShippingCost:    req.ShippingCost,
		TotalAmount:     req.TotalAmount,
	}
	for i, item := range req.Items {
		in.Items = append(in.Items, order.Item{
			ShoeID:   parseBodyID(ve, fmt.Sprintf("items[%d].shoeId", i), item.ShoeID),
			Name:     item.Name,
			Brand:    item.Brand,
			Price:    item.Price,
			Image:    item.Image,
			Quantity: item.Quantity,
			Size:     item.Size,
		})
	}
	if err := ve.OrNil(); err != nil {
		respondServiceError(w, err, "")
		return
	}

	placed, err := h.service.PlaceOrder(r.Context(), in)
	if err != nil {
		respondServiceError(w, err, "")
		return
	}

	respondOK(w, http.StatusCreated, "Order placed successfully", placed)
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListAll(r.Context())
	if err != nil {
		respondServiceError(w, err, "")
		return
	}
	respondOK(w, http.StatusOK, "", nonNilOrders(orders))
}

func (h *OrderHandler) handleListUserOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := uuidParam(w, r, "userId")
	if !ok {
		return
	}

	orders, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "")
		return
	}
	respondOK(w, http.StatusOK, "", nonNilOrders(orders))
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := uuidParam(w, r, "orderId")
	if !ok {
		return
	}

	found, err := h.service.GetOrder(r.Context(), orderID)
	if err != nil {
		respondServiceError(w, err, "Order not found")
		return
	}
	respondOK(w, http.StatusOK, "", found)
}

func (h *OrderHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := uuidParam(w, r, "orderId")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondBadPayload(w, err)
		return
	}
	raw := req.Status
	if raw == "" {
		raw = req.OrderStatus
	}

	updated, err := h.service.SetStatus(r.Context(), orderID, order.StatusUpdate{
		Status:         order.ParseStatus(raw),
		TrackingNumber: req.TrackingNumber,
		Notes:          req.Notes,
	})
	if err != nil {
		respondServiceError(w, err, "Order not found")
		return
	}
	respondOK(w, http.StatusOK, "Order status updated", updated)
}

func (h *OrderHandler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := uuidParam(w, r, "orderId")
	if !ok {
		return
	}

	cancelled, err := h.service.Cancel(r.Context(), orderID)
	if err != nil {
		if mapErrorToStatusCode(err) == http.StatusBadRequest {
			respondWithError(w, http.StatusBadRequest, "Cannot cancel order that is not pending", nil)
			return
		}
		respondServiceError(w, err, "Order not found")
		return
	}
	respondOK(w, http.StatusOK, "Order cancelled successfully", cancelled)
}

func nonNilOrders(orders []order.Order) []order.Order {
	if orders == nil {
		return []order.Order{}
	}
	return orders
}
