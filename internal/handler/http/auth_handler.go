package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/footwear-shop/internal/user"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenParser resolves a bearer token to the user it was issued for.
type TokenParser interface {
	Parse(raw string) (uuid.UUID, error)
}

type ctxKey int

const userIDKey ctxKey = iota

// UserIDFromContext returns the id stored by RequireAuth.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// RequireAuth rejects requests without a valid bearer token with 401.
func RequireAuth(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !found || strings.TrimSpace(raw) == "" {
				respondWithError(w, http.StatusUnauthorized, "Unauthorized", nil)
				return
			}
			userID, err := tokens.Parse(strings.TrimSpace(raw))
			if err != nil {
				log.Warn().Err(err).Msg("Rejected bearer token")
				respondWithError(w, http.StatusUnauthorized, "Unauthorized", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
		})
	}
}

type AuthHandler struct {
	service user.Service
	tokens  TokenParser
}

func NewAuthHandler(service user.Service, tokens TokenParser) *AuthHandler {
	return &AuthHandler{service: service, tokens: tokens}
}

func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Post("/register", h.handleRegister)
	router.Post("/login", h.handleLogin)
	router.With(RequireAuth(h.tokens)).Get("/me", h.handleProfile)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req user.RegisterInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondBadPayload(w, err)
		return
	}

	created, err := h.service.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, user.ErrEmailExists) {
			respondWithError(w, http.StatusBadRequest, "User already exists", nil)
			return
		}
		respondServiceError(w, err, "")
		return
	}

	respondOK(w, http.StatusCreated, "User registered successfully", created)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondBadPayload(w, err)
		return
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			respondWithError(w, http.StatusBadRequest, "Invalid credentials", nil)
			return
		}
		respondServiceError(w, err, "")
		return
	}

	respondOK(w, http.StatusOK, "Login successful", session)
}

func (h *AuthHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	profile, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "User not found")
		return
	}
	respondOK(w, http.StatusOK, "", profile)
}
