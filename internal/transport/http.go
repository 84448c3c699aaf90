package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/handlers"
	"github.com/vasiliy-maslov/footwear-shop/internal/cart"
	handler "github.com/vasiliy-maslov/footwear-shop/internal/handler/http"
	"github.com/vasiliy-maslov/footwear-shop/internal/order"
	"github.com/vasiliy-maslov/footwear-shop/internal/rating"
	"github.com/vasiliy-maslov/footwear-shop/internal/shoe"
	"github.com/vasiliy-maslov/footwear-shop/internal/user"
)

// Services is everything the router dispatches to. Events may be nil.
type Services struct {
	Shoes   shoe.Service
	Ratings rating.Service
	Carts   cart.Service
	Orders  order.Service
	Users   user.Service
	Tokens  handler.TokenParser
	Events  http.Handler
}

// NewRouter mounts every API route under /api behind the common middleware
// stack and CORS.
func NewRouter(svc Services, corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api", func(api chi.Router) {
		handler.NewShoeHandler(svc.Shoes).RegisterRoutes(api)
		handler.NewRatingHandler(svc.Ratings).RegisterRoutes(api)
		handler.NewCartHandler(svc.Carts).RegisterRoutes(api)
		handler.NewOrderHandler(svc.Orders, svc.Events).RegisterRoutes(api)
		handler.NewAuthHandler(svc.Users, svc.Tokens).RegisterRoutes(api)
		handler.NewMiscHandler().RegisterRoutes(api)
	})

	cors := handlers.CORS(
		handlers.AllowedOrigins(corsOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With"}),
	)
	return cors(r)
}
