package memory

import (
	"github.com/vasiliy-maslov/footwear-shop/internal/cart"
	"github.com/vasiliy-maslov/footwear-shop/internal/order"
	"github.com/vasiliy-maslov/footwear-shop/internal/rating"
	"github.com/vasiliy-maslov/footwear-shop/internal/shoe"
	"github.com/vasiliy-maslov/footwear-shop/internal/user"
)

var (
	_ shoe.Repository   = (*ShoeRepository)(nil)
	_ rating.Repository = (*RatingRepository)(nil)
	_ cart.Repository   = (*CartRepository)(nil)
	_ order.Repository  = (*OrderRepository)(nil)
	_ user.Repository   = (*UserRepository)(nil)
)

// Store groups one repository per aggregate.
type Store struct {
	Shoes   *ShoeRepository
	Ratings *RatingRepository
	Carts   *CartRepository
	Orders  *OrderRepository
	Users   *UserRepository
}

func NewStore() *Store {
	return &Store{
		Shoes:   NewShoeRepository(),
		Ratings: NewRatingRepository(),
		Carts:   NewCartRepository(),
		Orders:  NewOrderRepository(),
		Users:   NewUserRepository(),
	}
}
