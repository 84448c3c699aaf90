package http

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// placeholderPalette is indexed by image index modulo its length.
var placeholderPalette = []string{
	"#3b82f6",
	"#10b981",
	"#f59e0b",
	"#ef4444",
	"#8b5cf6",
	"#ec4899",
}

const (
	defaultPlaceholderSize = 500
	maxPlaceholderPixels   = 64
)

type PlaceholderResponse struct {
	Success bool   `json:"success"`
	Image   string `json:"image"`
	Color   string `json:"color,omitempty"`
}

// MiscHandler serves the liveness, welcome and placeholder image routes.
type MiscHandler struct{}

func NewMiscHandler() *MiscHandler {
	return &MiscHandler{}
}

func (h *MiscHandler) RegisterRoutes(router chi.Router) {
	router.Get("/status", h.handleStatus)
	router.Get("/welcome", h.handleWelcome)
	router.Get("/images/placeholder/{index}/{size}", h.handlePlaceholder(false))
	router.Get("/images/placeholder-svg/{index}/{size}", h.handlePlaceholder(true))
}

func (h *MiscHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "running"})
}

func (h *MiscHandler) handleWelcome(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the API!"})
}

func (h *MiscHandler) handlePlaceholder(withColor bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index := atoiOr(chi.URLParam(r, "index"), 0)
		size := atoiOr(chi.URLParam(r, "size"), defaultPlaceholderSize)
		hex := placeholderColor(index)

		dataURI, err := placeholderPNG(hex, size)
		if err != nil {
			log.Error().Err(err).Int("index", index).Msg("Failed to render placeholder image")
			respondWithError(w, http.StatusInternalServerError, "Server error", nil)
			return
		}

		resp := PlaceholderResponse{Success: true, Image: dataURI}
		if withColor {
			resp.Color = hex
		}
		respondWithJSON(w, http.StatusOK, resp)
	}
}

func placeholderColor(index int) string {
	n := len(placeholderPalette)
	return placeholderPalette[(index%n+n)%n]
}

// placeholderPNG renders a solid square of the given colour as a PNG data URI.
// The square is capped at maxPlaceholderPixels; clients scale it up.
func placeholderPNG(hex string, size int) (string, error) {
	side := min(max(size, 1), maxPlaceholderPixels)
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: parseHexColor(hex)}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func parseHexColor(hex string) color.RGBA {
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return color.RGBA{A: 0xff}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

func atoiOr(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
