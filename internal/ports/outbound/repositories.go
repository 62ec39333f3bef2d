// Package outbound declares the ports the application core drives:
// storage, cache and the generative text gateway.
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/deliveria/api/internal/domain/meal"
	"github.com/deliveria/api/internal/domain/order"
	"github.com/deliveria/api/internal/domain/user"
)

// ErrCacheMiss is returned by CacheRepository.Get for absent or expired keys.
var ErrCacheMiss = errors.New("cache miss")

// MealRepository persists the orderable catalog.
type MealRepository interface {
	Create(ctx context.Context, m *meal.Meal) error
	FindByID(ctx context.Context, id uint) (*meal.Meal, error)
	FindByIDs(ctx context.Context, ids []uint) (map[uint]*meal.Meal, error)
	ListAvailable(ctx context.Context) ([]*meal.Meal, error)
	Count(ctx context.Context) (int64, error)
}

// UserRepository persists diner accounts.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	FindByID(ctx context.Context, id uint) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
}

// OrderRepository persists orders together with their items.
type OrderRepository interface {
	Create(ctx context.Context, o *order.Order) error
	FindByID(ctx context.Context, id uint) (*order.Order, error)
	ListByUser(ctx context.Context, userID uint) ([]*order.Order, error)
	UpdateStatus(ctx context.Context, id uint, from, to order.Status) error
}

// CacheRepository is a byte-oriented key/value cache with TTLs.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
}
