package http_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	miscHandler "github.com/vasiliy-maslov/footwear-shop/internal/handler/http"
	"github.com/vasiliy-maslov/footwear-shop/internal/user"
)

func TestMiscHandler_Placeholder(t *testing.T) {
	router := chi.NewRouter()
	miscHandler.NewMiscHandler().RegisterRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/images/placeholder-svg/9/500", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body miscHandler.PlaceholderResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, "#ef4444", body.Color)

	raw, found := strings.CutPrefix(body.Image, "data:image/png;base64,")
	require.True(t, found)
	data, err := base64.StdEncoding.DecodeString(raw)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, []uint32{0xef, 0x44, 0x44}, []uint32{r >> 8, g >> 8, b >> 8})
}

func TestMiscHandler_PlaceholderNegativeIndex(t *testing.T) {
	router := chi.NewRouter()
	miscHandler.NewMiscHandler().RegisterRoutes(router)

	tests := []struct {
		index string
		want  string
	}{
		{index: "-1", want: "#ec4899"},
		{index: "-6", want: "#3b82f6"},
		{index: "-9223372036854775808", want: "#8b5cf6"},
	}

	for _, tt := range tests {
		t.Run(tt.index, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/images/placeholder-svg/"+tt.index+"/10", nil))
			require.Equal(t, http.StatusOK, rr.Code)

			var body miscHandler.PlaceholderResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, tt.want, body.Color)
		})
	}
}

func TestMiscHandler_StatusAndWelcome(t *testing.T) {
	router := chi.NewRouter()
	miscHandler.NewMiscHandler().RegisterRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.JSONEq(t, `{"status":"running"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/welcome", nil))
	assert.JSONEq(t, `{"message":"Welcome to the API!"}`, rr.Body.String())
}

func TestRequireAuth(t *testing.T) {
	tokens := user.NewTokens("secret", time.Hour)
	userID := uuid.Must(uuid.NewV4())

	var seen uuid.UUID
	protected := miscHandler.RequireAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = miscHandler.UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	protected.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	protected.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	token, _, err := tokens.Issue(userID)
	require.NoError(t, err)

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	protected.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, userID, seen)
}
