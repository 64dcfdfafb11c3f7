package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"meal-review-bot/internal/domain/model"
	"meal-review-bot/internal/domain/ports/repository"
	"meal-review-bot/internal/infra/metrics"
	red "meal-review-bot/internal/infra/redis"

	"github.com/rs/zerolog"
)

var _ repository.CatalogueRepository = (*catalogueRepoCacheDecorator)(nil)

const restaurantsAllKey = "restaurants:all"

// catalogueRepoCacheDecorator caches restaurant reads outside transactions.
// Every restaurant write drops the keys it could have made stale, after the
// write so a concurrent miss cannot refill the old row.
type catalogueRepoCacheDecorator struct {
	repository.CatalogueRepository
	cache red.RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewCatalogueRepoCacheDecorator(inner repository.CatalogueRepository, cache red.RedisClient, ttl time.Duration, logger *zerolog.Logger) repository.CatalogueRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &catalogueRepoCacheDecorator{
		CatalogueRepository: inner,
		cache:               cache,
		ttl:                 ttl,
		log:                 logger,
	}
}

func restaurantKey(id int64) string { return fmt.Sprintf("restaurant:%d", id) }

func (d *catalogueRepoCacheDecorator) FindRestaurants(ctx context.Context, tx repository.Tx, filter model.RestaurantFilter) ([]*model.Restaurant, error) {
	var key, name string
	switch {
	case tx != nil:
	case filter.Kind == model.FilterAll:
		key, name = restaurantsAllKey, "restaurant_list"
	case filter.Kind == model.FilterByID:
		key, name = restaurantKey(filter.ID), "restaurant"
	}
	if key == "" {
		return d.CatalogueRepository.FindRestaurants(ctx, tx, filter)
	}

	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var rs []*model.Restaurant
		if json.Unmarshal([]byte(val), &rs) == nil {
			metrics.IncCacheRequest(name, "hit")
			return rs, nil
		}
	} else if !red.IsNil(err) {
		d.log.Warn().Err(err).Str("key", key).Msg("restaurant cache read failed")
	}

	metrics.IncCacheRequest(name, "miss")
	rs, err := d.CatalogueRepository.FindRestaurants(ctx, tx, filter)
	if err != nil {
		return nil, err
	}
	if len(rs) > 0 {
		bytes, _ := json.Marshal(rs)
		if err := d.cache.Set(ctx, key, bytes, d.ttl); err != nil {
			d.log.Warn().Err(err).Str("key", key).Msg("restaurant cache write failed")
		}
	}
	return rs, nil
}

func (d *catalogueRepoCacheDecorator) invalidate(ctx context.Context, keys ...string) {
	if err := d.cache.Del(ctx, keys...); err != nil {
		d.log.Warn().Err(err).Strs("keys", keys).Msg("restaurant cache invalidation failed")
	}
}

func (d *catalogueRepoCacheDecorator) CreateRestaurant(ctx context.Context, tx repository.Tx, r *model.Restaurant) (int64, error) {
	id, err := d.CatalogueRepository.CreateRestaurant(ctx, tx, r)
	d.invalidate(ctx, restaurantsAllKey)
	return id, err
}

func (d *catalogueRepoCacheDecorator) UpdateRestaurant(ctx context.Context, tx repository.Tx, id int64, field model.RestaurantField, value string) error {
	err := d.CatalogueRepository.UpdateRestaurant(ctx, tx, id, field, value)
	d.invalidate(ctx, restaurantKey(id), restaurantsAllKey)
	return err
}

func (d *catalogueRepoCacheDecorator) DeleteRestaurant(ctx context.Context, tx repository.Tx, id int64) error {
	err := d.CatalogueRepository.DeleteRestaurant(ctx, tx, id)
	d.invalidate(ctx, restaurantKey(id), restaurantsAllKey)
	return err
}
