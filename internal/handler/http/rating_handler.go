package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vasiliy-maslov/footwear-shop/internal/apperror"
	"github.com/vasiliy-maslov/footwear-shop/internal/rating"
)

type SubmitRatingRequest struct {
	UserID string   `json:"userId"`
	Rating *float64 `json:"rating"`
}

// UserRatingResponse carries a null rating when the user has not rated the shoe.
type UserRatingResponse struct {
	Rating *int `json:"rating"`
}

type RatingHandler struct {
	service rating.Service
}

func NewRatingHandler(service rating.Service) *RatingHandler {
	return &RatingHandler{service: service}
}

func (h *RatingHandler) RegisterRoutes(router chi.Router) {
	router.Route("/rating", func(r chi.Router) {
		r.Post("/{shoeId}", h.handleSubmitRating)
		r.Get("/user/{shoeId}/{userId}", h.handleGetUserRating)
		r.Get("/average/{shoeId}", h.handleGetAverage)
	})
}

func (h *RatingHandler) handleSubmitRating(w http.ResponseWriter, r *http.Request) {
	shoeID, ok := uuidParam(w, r, "shoeId")
	if !ok {
		return
	}

	var req SubmitRatingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondBadPayload(w, err)
		return
	}

	ve := apperror.NewValidationError()
	userID := parseBodyID(ve, "userId", req.UserID)
	if req.Rating == nil {
		ve.Add("rating", "Rating is required")
	}
	if err := ve.OrNil(); err != nil {
		respondServiceError(w, err, "")
		return
	}

	updated, err := h.service.Submit(r.Context(), userID, shoeID, *req.Rating)
	if err != nil {
		respondServiceError(w, err, "")
		return
	}

	if updated {
		respondOK(w, http.StatusOK, "Rating updated", nil)
		return
	}
	respondOK(w, http.StatusCreated, "Rating submitted", nil)
}

func (h *RatingHandler) handleGetUserRating(w http.ResponseWriter, r *http.Request) {
	shoeID, ok := uuidParam(w, r, "shoeId")
	if !ok {
		return
	}
	userID, ok := uuidParam(w, r, "userId")
	if !ok {
		return
	}

	value, err := h.service.GetUserRating(r.Context(), shoeID, userID)
	if err != nil {
		respondServiceError(w, err, "")
		return
	}
	respondOK(w, http.StatusOK, "", UserRatingResponse{Rating: value})
}

func (h *RatingHandler) handleGetAverage(w http.ResponseWriter, r *http.Request) {
	shoeID, ok := uuidParam(w, r, "shoeId")
	if !ok {
		return
	}

	avg, err := h.service.GetAverage(r.Context(), shoeID)
	if err != nil {
		respondServiceError(w, err, "")
		return
	}
	respondOK(w, http.StatusOK, "", avg)
}
