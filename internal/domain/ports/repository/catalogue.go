package repository

import (
	"context"

	"meal-review-bot/internal/domain/model"
)

// CatalogueRepository is the port for restaurant, dish and review persistence.
// Lookups that find nothing return domain.ErrNotFound.
type CatalogueRepository interface {
	CreateRestaurant(ctx context.Context, tx Tx, r *model.Restaurant) (int64, error)
	FindRestaurants(ctx context.Context, tx Tx, filter model.RestaurantFilter) ([]*model.Restaurant, error)
	UpdateRestaurant(ctx context.Context, tx Tx, id int64, field model.RestaurantField, value string) error
	DeleteRestaurant(ctx context.Context, tx Tx, id int64) error

	CreateDish(ctx context.Context, tx Tx, d *model.Dish) (int64, error)
	FindDish(ctx context.Context, tx Tx, id int64) (*model.Dish, error)
	ListDishes(ctx context.Context, tx Tx, restaurantID int64) ([]*model.Dish, error)

	SaveReviewer(ctx context.Context, tx Tx, reviewer model.Reviewer) error
	CreateReview(ctx context.Context, tx Tx, r *model.Review) (int64, error)
	GetReview(ctx context.Context, tx Tx, lookup model.ReviewLookup) (*model.Review, error)
	ListReviews(ctx context.Context, tx Tx, dishID int64) ([]*model.Review, error)
}
