//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"testing"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"meal-review-bot/internal/domain"
	"meal-review-bot/internal/domain/model"
	"meal-review-bot/internal/domain/ports/repository"
	"meal-review-bot/internal/infra/i18n"
)

// =============================
// Repositories
// =============================

// ---- In-memory CatalogueRepository ----

type MockCatalogueRepo struct {
	mu          sync.Mutex
	nextID      int64
	restaurants map[int64]*model.Restaurant
	dishes      map[int64]*model.Dish
	reviews     map[int64]*model.Review
	reviewers   map[int64]model.Reviewer

	CreateRestaurantFunc func(ctx context.Context, tx repository.Tx, r *model.Restaurant) (int64, error)
	FindRestaurantsFunc  func(ctx context.Context, tx repository.Tx, filter model.RestaurantFilter) ([]*model.Restaurant, error)
	UpdateRestaurantFunc func(ctx context.Context, tx repository.Tx, id int64, field model.RestaurantField, value string) error
	CreateDishFunc       func(ctx context.Context, tx repository.Tx, d *model.Dish) (int64, error)
	CreateReviewFunc     func(ctx context.Context, tx repository.Tx, r *model.Review) (int64, error)

	// tracing of invocations
	Calls struct {
		CreateRestaurant []model.Restaurant
		FindRestaurants  int
		UpdateRestaurant []string
		DeleteRestaurant []int64
		CreateDish       []model.Dish
		SaveReviewer     []model.Reviewer
		CreateReview     []model.Review
	}
}

var _ repository.CatalogueRepository = (*MockCatalogueRepo)(nil)

func NewMockCatalogueRepo() *MockCatalogueRepo {
	return &MockCatalogueRepo{
		nextID:      100,
		restaurants: make(map[int64]*model.Restaurant),
		dishes:      make(map[int64]*model.Dish),
		reviews:     make(map[int64]*model.Review),
		reviewers:   make(map[int64]model.Reviewer),
	}
}

// SeedRestaurant stores r under its own id without recording a call.
func (m *MockCatalogueRepo) SeedRestaurant(id int64, name, address string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restaurants[id] = &model.Restaurant{ID: id, Name: name, Address: address}
}

func (m *MockCatalogueRepo) SeedDish(id, restaurantID int64, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dishes[id] = &model.Dish{ID: id, RestaurantID: restaurantID, Name: name}
}

func (m *MockCatalogueRepo) Restaurant(id int64) *model.Restaurant {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.restaurants[id]; ok {
		cp := *r
		return &cp
	}
	return nil
}

func (m *MockCatalogueRepo) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *MockCatalogueRepo) CreateRestaurant(ctx context.Context, tx repository.Tx, r *model.Restaurant) (int64, error) {
	m.mu.Lock()
	m.Calls.CreateRestaurant = append(m.Calls.CreateRestaurant, *r)
	m.mu.Unlock()
	if m.CreateRestaurantFunc != nil {
		return m.CreateRestaurantFunc(ctx, tx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	cp.ID = m.id()
	m.restaurants[cp.ID] = &cp
	return cp.ID, nil
}

func (m *MockCatalogueRepo) FindRestaurants(ctx context.Context, tx repository.Tx, filter model.RestaurantFilter) ([]*model.Restaurant, error) {
	m.mu.Lock()
	m.Calls.FindRestaurants++
	m.mu.Unlock()
	if m.FindRestaurantsFunc != nil {
		return m.FindRestaurantsFunc(ctx, tx, filter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Restaurant
	for _, r := range m.restaurants {
		switch filter.Kind {
		case model.FilterByID:
			if r.ID != filter.ID {
				continue
			}
		case model.FilterByRange:
			if r.ID < filter.From || r.ID > filter.To {
				continue
			}
		}
		cp := *r
		out = append(out, &cp)
	}
	// map order is random; callers must not depend on it
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MockCatalogueRepo) UpdateRestaurant(ctx context.Context, tx repository.Tx, id int64, field model.RestaurantField, value string) error {
	m.mu.Lock()
	m.Calls.UpdateRestaurant = append(m.Calls.UpdateRestaurant, string(field)+"="+value)
	m.mu.Unlock()
	if m.UpdateRestaurantFunc != nil {
		return m.UpdateRestaurantFunc(ctx, tx, id, field, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.restaurants[id]
	if !ok {
		return domain.ErrNotFound
	}
	if field == model.RestaurantFieldName {
		r.Name = value
	} else {
		r.Address = value
	}
	return nil
}

func (m *MockCatalogueRepo) DeleteRestaurant(ctx context.Context, tx repository.Tx, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.DeleteRestaurant = append(m.Calls.DeleteRestaurant, id)
	if _, ok := m.restaurants[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.restaurants, id)
	return nil
}

func (m *MockCatalogueRepo) CreateDish(ctx context.Context, tx repository.Tx, d *model.Dish) (int64, error) {
	m.mu.Lock()
	m.Calls.CreateDish = append(m.Calls.CreateDish, *d)
	m.mu.Unlock()
	if m.CreateDishFunc != nil {
		return m.CreateDishFunc(ctx, tx, d)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.restaurants[d.RestaurantID]; !ok {
		return 0, domain.ErrNotFound
	}
	cp := *d
	cp.ID = m.id()
	m.dishes[cp.ID] = &cp
	return cp.ID, nil
}

func (m *MockCatalogueRepo) FindDish(ctx context.Context, tx repository.Tx, id int64) (*model.Dish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.dishes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *MockCatalogueRepo) ListDishes(ctx context.Context, tx repository.Tx, restaurantID int64) ([]*model.Dish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Dish
	for _, d := range m.dishes {
		if d.RestaurantID == restaurantID {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockCatalogueRepo) SaveReviewer(ctx context.Context, tx repository.Tx, reviewer model.Reviewer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.SaveReviewer = append(m.Calls.SaveReviewer, reviewer)
	m.reviewers[reviewer.ID] = reviewer
	return nil
}

func (m *MockCatalogueRepo) CreateReview(ctx context.Context, tx repository.Tx, r *model.Review) (int64, error) {
	m.mu.Lock()
	m.Calls.CreateReview = append(m.Calls.CreateReview, *r)
	m.mu.Unlock()
	if m.CreateReviewFunc != nil {
		return m.CreateReviewFunc(ctx, tx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.dishes[r.DishID]; !ok {
		return 0, domain.ErrNotFound
	}
	cp := *r
	cp.ID = m.id()
	m.reviews[cp.ID] = &cp
	return cp.ID, nil
}

func (m *MockCatalogueRepo) GetReview(ctx context.Context, tx repository.Tx, lookup model.ReviewLookup) (*model.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if (lookup.ID != 0 && r.ID == lookup.ID) || (lookup.ID == 0 && r.DishID == lookup.DishID) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockCatalogueRepo) ListReviews(ctx context.Context, tx repository.Tx, dishID int64) ([]*model.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Review
	for _, r := range m.reviews {
		if r.DishID == dishID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---- Transaction Manager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs fn immediately with NoTX unless WithTxFunc is set.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// =============================
// Utilities
// =============================

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// newTestTranslator loads the embedded English catalogue so assertions
// match what users actually see.
func newTestTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		t.Fatalf("failed to load translator: %v", err)
	}
	return tr
}
