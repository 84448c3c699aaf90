package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/footwear-shop/internal/apperror"
)

// maxBodyBytes allows base64 images inside shoe payloads.
const maxBodyBytes = 50 << 20

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	Data    any                   `json:"data,omitempty"`
	Errors  []apperror.FieldError `json:"errors,omitempty"`
}

// ListEnvelope adds paging counters to the envelope.
type ListEnvelope struct {
	Envelope
	Count       int `json:"count"`
	Total       int `json:"total"`
	Pages       int `json:"pages"`
	CurrentPage int `json:"currentPage"`
}

func respondOK(w http.ResponseWriter, code int, message string, data any) {
	respondWithJSON(w, code, Envelope{Success: true, Message: message, Data: data})
}

// respondWithError writes a failed envelope. Field errors carried by err are
// listed under "errors".
func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	respondWithJSON(w, code, Envelope{Success: false, Message: message, Errors: apperror.Fields(err)})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"Server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError translates a service error into the envelope. Storage
// failures are logged and answered with a generic message.
func respondServiceError(w http.ResponseWriter, err error, notFoundMessage string) {
	code := mapErrorToStatusCode(err)
	switch {
	case code == http.StatusInternalServerError:
		log.Error().Err(err).Msg("Request failed with storage error")
		respondWithError(w, code, "Server error", nil)
	case errors.Is(err, apperror.ErrNotFound):
		respondWithError(w, code, notFoundMessage, nil)
	case errors.Is(err, apperror.ErrValidation):
		respondWithError(w, code, validationMessage(err), err)
	default:
		respondWithError(w, code, conflictMessage(err), nil)
	}
}

func validationMessage(err error) string {
	var ve *apperror.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return err.Error()
}

// conflictMessage strips the wrapped kind from a conflict error.
func conflictMessage(err error) string {
	return strings.TrimSuffix(err.Error(), ": "+apperror.ErrConflict.Error())
}

// decodeJSON reads one JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}

func respondBadPayload(w http.ResponseWriter, err error) {
	log.Warn().Err(err).Msg("Failed to decode request body")
	respondWithError(w, http.StatusBadRequest, "Invalid request payload", nil)
}

// uuidParam parses a UUID path parameter, answering 400 when it is malformed.
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.FromString(raw)
	if err != nil {
		log.Warn().Err(err).Str(name, raw).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s parameter", name), nil)
		return uuid.Nil, false
	}
	return id, true
}

// parseBodyID parses an identifier from a request body, recording a field
// error when it is present but malformed. An empty value yields uuid.Nil.
func parseBodyID(ve *apperror.ValidationError, field, raw string) uuid.UUID {
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.FromString(raw)
	if err != nil {
		ve.Add(field, "Invalid "+field)
		return uuid.Nil
	}
	return id
}
