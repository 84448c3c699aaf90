package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vasiliy-maslov/footwear-shop/internal/apperror"
	"github.com/vasiliy-maslov/footwear-shop/internal/cart"
)

// AddToCartRequest accepts the shoe id as shoeId or, from older clients, productId.
type AddToCartRequest struct {
	UserID    string `json:"userId"`
	ShoeID    string `json:"shoeId"`
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Quantity  *int   `json:"quantity"`
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

type CartHandler struct {
	service cart.Service
}

func NewCartHandler(service cart.Service) *CartHandler {
	return &CartHandler{service: service}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Route("/cart", func(r chi.Router) {
		r.Post("/add", h.handleAddToCart)
		r.Get("/user/{userId}", h.handleListCart)
		r.Delete("/user/{userId}/clear", h.handleClearCart)
		r.Put("/{itemId}", h.handleUpdateQuantity)
		r.Delete("/{itemId}", h.handleRemoveItem)
	})
}

func (h *CartHandler) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var req AddToCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondBadPayload(w, err)
		return
	}

	shoeID := req.ShoeID
	if shoeID == "" {
		shoeID = req.ProductID
	}

	ve := apperror.NewValidationError()
	in := cart.AddInput{
		UserID:   parseBodyID(ve, "userId", req.UserID),
		ShoeID:   parseBodyID(ve, "shoeId", shoeID),
		Size:     req.Size,
		Quantity: req.Quantity,
	}
	if err := ve.OrNil(); err != nil {
		respondServiceError(w, err, "")
		return
	}

	item, err := h.service.Add(r.Context(), in)
	if err != nil {
		respondServiceError(w, err, "Shoe not found")
		return
	}

	respondOK(w, http.StatusOK, "Added to cart", item)
}

func (h *CartHandler) handleListCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := uuidParam(w, r, "userId")
	if !ok {
		return
	}

	items, err := h.service.List(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "")
		return
	}

	respondOK(w, http.StatusOK, "", items)
}

func (h *CartHandler) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	itemID, ok := uuidParam(w, r, "itemId")
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondBadPayload(w, err)
		return
	}
	quantity := 0
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	item, err := h.service.SetQuantity(r.Context(), itemID, quantity)
	if err != nil {
		respondServiceError(w, err, "Cart item not found")
		return
	}

	respondOK(w, http.StatusOK, "Quantity updated", item)
}

func (h *CartHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := uuidParam(w, r, "itemId")
	if !ok {
		return
	}

	if err := h.service.Remove(r.Context(), itemID); err != nil {
		respondServiceError(w, err, "Cart item not found")
		return
	}

	respondOK(w, http.StatusOK, "Item removed from cart", nil)
}

func (h *CartHandler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := uuidParam(w, r, "userId")
	if !ok {
		return
	}

	if err := h.service.Clear(r.Context(), userID); err != nil {
		respondServiceError(w, err, "")
		return
	}

	respondOK(w, http.StatusOK, "Cart cleared successfully", nil)
}
