// Package storage opens the repositories for the configured driver.
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/footwear-shop/internal/cart"
	"github.com/vasiliy-maslov/footwear-shop/internal/config"
	"github.com/vasiliy-maslov/footwear-shop/internal/db"
	"github.com/vasiliy-maslov/footwear-shop/internal/order"
	"github.com/vasiliy-maslov/footwear-shop/internal/rating"
	"github.com/vasiliy-maslov/footwear-shop/internal/shoe"
	"github.com/vasiliy-maslov/footwear-shop/internal/storage/memory"
	"github.com/vasiliy-maslov/footwear-shop/internal/user"
)

type Repositories struct {
	Shoes   shoe.Repository
	Ratings rating.Repository
	Carts   cart.Repository
	Orders  order.Repository
	Users   user.Repository

	close func()
}

// Close releases the underlying connections.
func (r *Repositories) Close() {
	if r.close != nil {
		r.close()
	}
}

func Open(ctx context.Context, cfg *config.Config) (*Repositories, error) {
	switch cfg.App.StorageDriver {
	case config.StorageDriverMemory:
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &Repositories{
			Shoes:   store.Shoes,
			Ratings: store.Ratings,
			Carts:   store.Carts,
			Orders:  store.Orders,
			Users:   store.Users,
		}, nil
	case config.StorageDriverPostgres:
		pg, err := db.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		return &Repositories{
			Shoes:   shoe.NewRepository(pg.SQL),
			Ratings: rating.NewRepository(pg.Pool),
			Carts:   cart.NewRepository(pg.Pool),
			Orders:  order.NewRepository(pg.Pool),
			Users:   user.NewRepository(pg.Pool),
			close:   pg.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.App.StorageDriver)
	}
}
