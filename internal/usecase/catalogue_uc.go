package usecase

import (
	"context"
	"sort"
	"strings"

	"meal-review-bot/internal/domain"
	"meal-review-bot/internal/domain/model"
	"meal-review-bot/internal/domain/ports/repository"
	"meal-review-bot/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ CatalogueUseCase = (*catalogueUC)(nil)

// CatalogueUseCase is what the conversation engine and the read-only API
// need from the restaurant/dish/review store.
type CatalogueUseCase interface {
	AddRestaurant(ctx context.Context, name, address string) (*model.Restaurant, error)
	GetRestaurant(ctx context.Context, id int64) (*model.Restaurant, error)
	ListRestaurants(ctx context.Context) ([]*model.Restaurant, error)
	SearchRestaurants(ctx context.Context, pattern string) ([]*model.Restaurant, error)
	UpdateRestaurant(ctx context.Context, id int64, field model.RestaurantField, value string) error
	DeleteRestaurant(ctx context.Context, id int64) error

	AddDish(ctx context.Context, restaurantID int64, name string, imageRef *string) (*model.Dish, error)
	GetDish(ctx context.Context, id int64) (*model.Dish, error)
	ListDishes(ctx context.Context, restaurantID int64) ([]*model.Dish, error)

	AddReview(ctx context.Context, dishID int64, reviewer model.Reviewer, score int, details string) (*model.Review, error)
	GetReview(ctx context.Context, lookup model.ReviewLookup) (*model.Review, error)
	ListReviews(ctx context.Context, dishID int64) ([]*model.Review, error)
}

type catalogueUC struct {
	repo repository.CatalogueRepository
	tm   repository.TransactionManager
	log  *zerolog.Logger
}

func NewCatalogueUseCase(repo repository.CatalogueRepository, tm repository.TransactionManager, logger *zerolog.Logger) *catalogueUC {
	return &catalogueUC{repo: repo, tm: tm, log: logger}
}

func (c *catalogueUC) AddRestaurant(ctx context.Context, name, address string) (*model.Restaurant, error) {
	defer logging.TraceDuration(c.log, "CatalogueUC.AddRestaurant")()

	r, err := model.NewRestaurant(name, address)
	if err != nil {
		return nil, err
	}
	id, err := c.repo.CreateRestaurant(ctx, repository.NoTX, r)
	if err != nil {
		return nil, err
	}
	r.ID = id
	return r, nil
}

// GetRestaurant returns domain.ErrNotFound when no restaurant has the id.
func (c *catalogueUC) GetRestaurant(ctx context.Context, id int64) (*model.Restaurant, error) {
	defer logging.TraceDuration(c.log, "CatalogueUC.GetRestaurant")()

	rs, err := c.repo.FindRestaurants(ctx, repository.NoTX, model.RestaurantByID(id))
	if err != nil {
		return nil, err
	}
	if len(rs) == 0 {
		return nil, domain.ErrNotFound
	}
	return rs[0], nil
}

func (c *catalogueUC) ListRestaurants(ctx context.Context) ([]*model.Restaurant, error) {
	defer logging.TraceDuration(c.log, "CatalogueUC.ListRestaurants")()

	rs, err := c.repo.FindRestaurants(ctx, repository.NoTX, model.AllRestaurants())
	if err != nil {
		return nil, err
	}
	sortByID(rs)
	return rs, nil
}

// SearchRestaurants keeps the restaurants whose name contains the pattern's
// characters in order, ignoring case. Results are ordered by id.
func (c *catalogueUC) SearchRestaurants(ctx context.Context, pattern string) ([]*model.Restaurant, error) {
	defer logging.TraceDuration(c.log, "CatalogueUC.SearchRestaurants")()

	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, domain.ErrInvalidArgument
	}
	all, err := c.ListRestaurants(ctx)
	if err != nil {
		return nil, err
	}
	return FuzzyFilter(all, pattern), nil
}

// FuzzyFilter is the pure part of SearchRestaurants. The input order is kept.
func FuzzyFilter(rs []*model.Restaurant, pattern string) []*model.Restaurant {
	out := make([]*model.Restaurant, 0, len(rs))
	for _, r := range rs {
		if fuzzy.MatchFold(pattern, r.Name) {
			out = append(out, r)
		}
	}
	return out
}

func (c *catalogueUC) UpdateRestaurant(ctx context.Context, id int64, field model.RestaurantField, value string) error {
	defer logging.TraceDuration(c.log, "CatalogueUC.UpdateRestaurant")()

	value = strings.TrimSpace(value)
	if !field.Valid() || value == "" {
		return domain.ErrInvalidArgument
	}
	return c.repo.UpdateRestaurant(ctx, repository.NoTX, id, field, value)
}

func (c *catalogueUC) DeleteRestaurant(ctx context.Context, id int64) error {
	defer logging.TraceDuration(c.log, "CatalogueUC.DeleteRestaurant")()
	return c.repo.DeleteRestaurant(ctx, repository.NoTX, id)
}

func (c *catalogueUC) AddDish(ctx context.Context, restaurantID int64, name string, imageRef *string) (*model.Dish, error) {
	defer logging.TraceDuration(c.log, "CatalogueUC.AddDish")()

	d, err := model.NewDish(restaurantID, name, imageRef)
	if err != nil {
		return nil, err
	}
	id, err := c.repo.CreateDish(ctx, repository.NoTX, d)
	if err != nil {
		return nil, err
	}
	d.ID = id
	return d, nil
}

func (c *catalogueUC) GetDish(ctx context.Context, id int64) (*model.Dish, error) {
	defer logging.TraceDuration(c.log, "CatalogueUC.GetDish")()
	return c.repo.FindDish(ctx, repository.NoTX, id)
}

func (c *catalogueUC) ListDishes(ctx context.Context, restaurantID int64) ([]*model.Dish, error) {
	defer logging.TraceDuration(c.log, "CatalogueUC.ListDishes")()
	return c.repo.ListDishes(ctx, repository.NoTX, restaurantID)
}

// AddReview stores the reviewer and the review in one transaction.
func (c *catalogueUC) AddReview(ctx context.Context, dishID int64, reviewer model.Reviewer, score int, details string) (*model.Review, error) {
	defer logging.TraceDuration(c.log, "CatalogueUC.AddReview")()

	rv, err := model.NewReview(dishID, reviewer, score, details)
	if err != nil {
		return nil, err
	}

	err = c.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		if err := c.repo.SaveReviewer(ctx, tx, reviewer); err != nil {
			return err
		}
		id, err := c.repo.CreateReview(ctx, tx, rv)
		if err != nil {
			return err
		}
		rv.ID = id
		return nil
	})
	if err != nil {
		c.log.Error().Err(err).Int64("dish_id", dishID).Msg("failed to add review")
		return nil, err
	}
	return rv, nil
}

func (c *catalogueUC) GetReview(ctx context.Context, lookup model.ReviewLookup) (*model.Review, error) {
	defer logging.TraceDuration(c.log, "CatalogueUC.GetReview")()
	return c.repo.GetReview(ctx, repository.NoTX, lookup)
}

func (c *catalogueUC) ListReviews(ctx context.Context, dishID int64) ([]*model.Review, error) {
	defer logging.TraceDuration(c.log, "CatalogueUC.ListReviews")()
	return c.repo.ListReviews(ctx, repository.NoTX, dishID)
}

func sortByID(rs []*model.Restaurant) {
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].ID < rs[j].ID })
}
