//go:build !integration

package postgres

import (
	"context"
	"io"
	"time"

	"meal-review-bot/internal/domain/model"
	"meal-review-bot/internal/domain/ports/repository"
	red "meal-review-bot/internal/infra/redis"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerCatalogueRepo mocks the database repository the decorator wraps.
// Methods the decorator only forwards come from the embedded interface and
// panic if a test reaches them.
type mockInnerCatalogueRepo struct {
	repository.CatalogueRepository

	CreateRestaurantFunc func(ctx context.Context, tx repository.Tx, r *model.Restaurant) (int64, error)
	FindRestaurantsFunc  func(ctx context.Context, tx repository.Tx, filter model.RestaurantFilter) ([]*model.Restaurant, error)
	UpdateRestaurantFunc func(ctx context.Context, tx repository.Tx, id int64, field model.RestaurantField, value string) error
	DeleteRestaurantFunc func(ctx context.Context, tx repository.Tx, id int64) error
}

func (m *mockInnerCatalogueRepo) CreateRestaurant(ctx context.Context, tx repository.Tx, r *model.Restaurant) (int64, error) {
	return m.CreateRestaurantFunc(ctx, tx, r)
}
func (m *mockInnerCatalogueRepo) FindRestaurants(ctx context.Context, tx repository.Tx, filter model.RestaurantFilter) ([]*model.Restaurant, error) {
	return m.FindRestaurantsFunc(ctx, tx, filter)
}
func (m *mockInnerCatalogueRepo) UpdateRestaurant(ctx context.Context, tx repository.Tx, id int64, field model.RestaurantField, value string) error {
	return m.UpdateRestaurantFunc(ctx, tx, id, field, value)
}
func (m *mockInnerCatalogueRepo) DeleteRestaurant(ctx context.Context, tx repository.Tx, id int64) error {
	return m.DeleteRestaurantFunc(ctx, tx, id)
}

// mockRedisClient mocks our Redis client wrapper. Unset funcs behave like an
// empty cache.
type mockRedisClient struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc    func(ctx context.Context, keys ...string) error
	PingFunc   func(ctx context.Context) error
	IncrFunc   func(ctx context.Context, key string) (int64, error)
	ExpireFunc func(ctx context.Context, key string, expiration time.Duration) error
	CloseFunc  func() error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc == nil {
		return "", redis.Nil
	}
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc == nil {
		return nil
	}
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	return true, nil
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc == nil {
		return nil
	}
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) CompareAndDelete(ctx context.Context, key, value string) (bool, error) {
	return true, nil
}
func (m *mockRedisClient) Ping(ctx context.Context) error {
	if m.PingFunc == nil {
		return nil
	}
	return m.PingFunc(ctx)
}
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	return m.IncrFunc(ctx, key)
}
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return m.ExpireFunc(ctx, key, expiration)
}
func (m *mockRedisClient) Close() error {
	if m.CloseFunc == nil {
		return nil
	}
	return m.CloseFunc()
}

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}
