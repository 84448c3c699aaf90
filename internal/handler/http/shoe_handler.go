package http

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/footwear-shop/internal/shoe"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ShoeRequest is the create/replace payload. The singular size and color keys
// are accepted for older clients.
type ShoeRequest struct {
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Category    string   `json:"category"`
	Image       string   `json:"image"`
	Sizes       []string `json:"sizes"`
	Size        []string `json:"size"`
	Colors      []string `json:"colors"`
	Color       []string `json:"color"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	Description string   `json:"description"`
}

func (req ShoeRequest) toInput() shoe.Input {
	in := shoe.Input{
		Name:        req.Name,
		Brand:       req.Brand,
		Category:    shoe.Category(req.Category),
		Image:       req.Image,
		Sizes:       req.Sizes,
		Colors:      req.Colors,
		Price:       req.Price,
		Stock:       req.Stock,
		Description: req.Description,
	}
	if len(in.Sizes) == 0 {
		in.Sizes = req.Size
	}
	if len(in.Colors) == 0 {
		in.Colors = req.Color
	}
	return in
}

type ShoeHandler struct {
	service shoe.Service
}

func NewShoeHandler(service shoe.Service) *ShoeHandler {
	return &ShoeHandler{service: service}
}

func (h *ShoeHandler) RegisterRoutes(router chi.Router) {
	router.Route("/shoes", func(r chi.Router) {
		r.Post("/", h.handleCreateShoe)
		r.Post("/add", h.handleCreateShoe)
		r.Get("/", h.handleListShoes)
		r.Get("/stats", h.handleInventorySummary)
		r.Get("/export", h.handleExportInventory)
		r.Get("/{id}", h.handleGetShoe)
		r.Put("/{id}", h.handleUpdateShoe)
		r.Delete("/{id}", h.handleDeleteShoe)
	})
}

func (h *ShoeHandler) handleCreateShoe(w http.ResponseWriter, r *http.Request) {
	var req ShoeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondBadPayload(w, err)
		return
	}

	created, err := h.service.CreateShoe(r.Context(), req.toInput())
	if err != nil {
		respondServiceError(w, err, "Shoe not found")
		return
	}

	respondOK(w, http.StatusCreated, "Shoe added successfully", created)
}

func (h *ShoeHandler) handleListShoes(w http.ResponseWriter, r *http.Request) {
	q, err := shoe.ParseListQuery(r.URL.Query())
	if err != nil {
		respondServiceError(w, err, "")
		return
	}

	res, err := h.service.ListShoes(r.Context(), q)
	if err != nil {
		respondServiceError(w, err, "")
		return
	}

	respondWithJSON(w, http.StatusOK, ListEnvelope{
		Envelope:    Envelope{Success: true, Data: res.Items},
		Count:       res.Count,
		Total:       res.Total,
		Pages:       res.Pages,
		CurrentPage: res.CurrentPage,
	})
}

func (h *ShoeHandler) handleGetShoe(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	found, err := h.service.GetShoe(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Shoe not found")
		return
	}

	respondOK(w, http.StatusOK, "", found)
}

func (h *ShoeHandler) handleUpdateShoe(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req ShoeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondBadPayload(w, err)
		return
	}

	updated, err := h.service.UpdateShoe(r.Context(), id, req.toInput())
	if err != nil {
		respondServiceError(w, err, "Shoe not found")
		return
	}

	respondOK(w, http.StatusOK, "Shoe updated successfully", updated)
}

func (h *ShoeHandler) handleDeleteShoe(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteShoe(r.Context(), id); err != nil {
		respondServiceError(w, err, "Shoe not found")
		return
	}

	respondOK(w, http.StatusOK, "Shoe deleted successfully", nil)
}

func (h *ShoeHandler) handleInventorySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.InventorySummary(r.Context())
	if err != nil {
		respondServiceError(w, err, "")
		return
	}

	respondOK(w, http.StatusOK, "", summary)
}

func (h *ShoeHandler) handleExportInventory(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.service.ExportInventory(r.Context(), &buf); err != nil {
		respondServiceError(w, err, "")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="inventory.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Error().Err(err).Msg("Failed to write inventory workbook")
	}
}
