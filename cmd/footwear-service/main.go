package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/footwear-shop/internal/cart"
	"github.com/vasiliy-maslov/footwear-shop/internal/config"
	"github.com/vasiliy-maslov/footwear-shop/internal/notify"
	"github.com/vasiliy-maslov/footwear-shop/internal/order"
	"github.com/vasiliy-maslov/footwear-shop/internal/rating"
	"github.com/vasiliy-maslov/footwear-shop/internal/shoe"
	"github.com/vasiliy-maslov/footwear-shop/internal/storage"
	"github.com/vasiliy-maslov/footwear-shop/internal/transport"
	"github.com/vasiliy-maslov/footwear-shop/internal/user"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	setupLogger(cfg.App)

	log.Info().Str("storage", cfg.App.StorageDriver).Msg("Footwear service starting...")

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 30*time.Second)
	repos, err := storage.Open(connectCtx, cfg)
	cancelConnect()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer repos.Close()

	hub := notify.NewHub()
	defer hub.Close()

	tokens := user.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	router := transport.NewRouter(transport.Services{
		Shoes:   shoe.NewService(repos.Shoes, shoe.WithLowStockThreshold(cfg.Catalog.LowStockThreshold)),
		Ratings: rating.NewService(repos.Ratings),
		Carts:   cart.NewService(repos.Carts, repos.Shoes),
		Orders: order.NewService(repos.Orders, repos.Carts,
			order.WithPublisher(hub),
			order.WithTransitionPolicy(cfg.Orders.EnforceTransitions),
		),
		Users:  user.NewService(repos.Users, tokens),
		Tokens: tokens,
		Events: hub,
	}, cfg.App.CORSOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Shutdown failed")
		return
	}
	log.Info().Msg("Server stopped")
}

func setupLogger(app config.AppConfig) {
	level, err := zerolog.ParseLevel(app.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if app.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Logger = log.With().Str("service", app.Name).Logger()
}
