package postgres

import (
	"context"
	"errors"
	"fmt"

	"meal-review-bot/internal/domain"
	"meal-review-bot/internal/domain/model"
	"meal-review-bot/internal/domain/ports/repository"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

var _ repository.CatalogueRepository = (*PostgresCatalogueRepo)(nil)

// foreign_key_violation
const pgForeignKeyViolation = "23503"

type PostgresCatalogueRepo struct {
	pool *pgxpool.Pool
}

func NewCatalogueRepo(pool *pgxpool.Pool) *PostgresCatalogueRepo {
	return &PostgresCatalogueRepo{pool: pool}
}

// mapErr turns "no row" and "parent row missing" into domain.ErrNotFound.
func mapErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (r *PostgresCatalogueRepo) CreateRestaurant(ctx context.Context, tx repository.Tx, rest *model.Restaurant) (int64, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	const sql = `INSERT INTO restaurant (name, address) VALUES ($1, $2) RETURNING id;`
	var id int64
	if err := exec.QueryRow(ctx, sql, rest.Name, rest.Address).Scan(&id); err != nil {
		return 0, mapErr("CreateRestaurant", err)
	}
	return id, nil
}

func (r *PostgresCatalogueRepo) FindRestaurants(ctx context.Context, tx repository.Tx, filter model.RestaurantFilter) ([]*model.Restaurant, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}

	var (
		sql  string
		args []interface{}
	)
	switch filter.Kind {
	case model.FilterByID:
		sql = `SELECT id, name, address FROM restaurant WHERE id = $1;`
		args = []interface{}{filter.ID}
	case model.FilterByRange:
		sql = `SELECT id, name, address FROM restaurant WHERE id BETWEEN $1 AND $2 ORDER BY id;`
		args = []interface{}{filter.From, filter.To}
	default:
		sql = `SELECT id, name, address FROM restaurant ORDER BY id;`
	}

	rows, err := exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr("FindRestaurants", err)
	}
	defer rows.Close()

	out := make([]*model.Restaurant, 0)
	for rows.Next() {
		var rest model.Restaurant
		if err := rows.Scan(&rest.ID, &rest.Name, &rest.Address); err != nil {
			return nil, err
		}
		out = append(out, &rest)
	}
	return out, rows.Err()
}

func (r *PostgresCatalogueRepo) UpdateRestaurant(ctx context.Context, tx repository.Tx, id int64, field model.RestaurantField, value string) error {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}

	var sql string
	switch field {
	case model.RestaurantFieldName:
		sql = `UPDATE restaurant SET name = $1 WHERE id = $2;`
	case model.RestaurantFieldAddress:
		sql = `UPDATE restaurant SET address = $1 WHERE id = $2;`
	default:
		return domain.ErrInvalidArgument
	}

	ct, err := exec.Exec(ctx, sql, value, id)
	if err != nil {
		return mapErr("UpdateRestaurant", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteRestaurant also removes the restaurant's dishes and their reviews.
func (r *PostgresCatalogueRepo) DeleteRestaurant(ctx context.Context, tx repository.Tx, id int64) error {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	ct, err := exec.Exec(ctx, `DELETE FROM restaurant WHERE id = $1;`, id)
	if err != nil {
		return mapErr("DeleteRestaurant", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresCatalogueRepo) CreateDish(ctx context.Context, tx repository.Tx, d *model.Dish) (int64, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	const sql = `INSERT INTO dish (restaurant, name, image) VALUES ($1, $2, $3) RETURNING id;`
	var id int64
	if err := exec.QueryRow(ctx, sql, d.RestaurantID, d.Name, d.ImageRef).Scan(&id); err != nil {
		return 0, mapErr("CreateDish", err)
	}
	return id, nil
}

func (r *PostgresCatalogueRepo) FindDish(ctx context.Context, tx repository.Tx, id int64) (*model.Dish, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `SELECT id, restaurant, name, image FROM dish WHERE id = $1;`
	var d model.Dish
	if err := exec.QueryRow(ctx, sql, id).Scan(&d.ID, &d.RestaurantID, &d.Name, &d.ImageRef); err != nil {
		return nil, mapErr("FindDish", err)
	}
	return &d, nil
}

func (r *PostgresCatalogueRepo) ListDishes(ctx context.Context, tx repository.Tx, restaurantID int64) ([]*model.Dish, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `SELECT id, restaurant, name, image FROM dish WHERE restaurant = $1 ORDER BY id;`
	rows, err := exec.Query(ctx, sql, restaurantID)
	if err != nil {
		return nil, mapErr("ListDishes", err)
	}
	defer rows.Close()

	out := make([]*model.Dish, 0)
	for rows.Next() {
		var d model.Dish
		if err := rows.Scan(&d.ID, &d.RestaurantID, &d.Name, &d.ImageRef); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

// SaveReviewer inserts the reviewer or refreshes the stored display name.
func (r *PostgresCatalogueRepo) SaveReviewer(ctx context.Context, tx repository.Tx, reviewer model.Reviewer) error {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const sql = `
INSERT INTO reviewer (id, name) VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name;
`
	if _, err := exec.Exec(ctx, sql, reviewer.ID, reviewer.Name); err != nil {
		return mapErr("SaveReviewer", err)
	}
	return nil
}

func (r *PostgresCatalogueRepo) CreateReview(ctx context.Context, tx repository.Tx, rv *model.Review) (int64, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	const sql = `
INSERT INTO review (reviewer, dish, details, score, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id;
`
	var id int64
	err = exec.QueryRow(ctx, sql, rv.Reviewer.ID, rv.DishID, rv.Details, int16(rv.Score), rv.CreatedAt).Scan(&id)
	if err != nil {
		return 0, mapErr("CreateReview", err)
	}
	return id, nil
}

const reviewColumns = `
SELECT rv.id, rv.dish, rv.reviewer, rw.name, rv.score, rv.details, rv.created_at
  FROM review rv
  JOIN reviewer rw ON rw.id = rv.reviewer`

func scanReview(row pgx.Row) (*model.Review, error) {
	var (
		rv    model.Review
		score int16
	)
	if err := row.Scan(&rv.ID, &rv.DishID, &rv.Reviewer.ID, &rv.Reviewer.Name, &score, &rv.Details, &rv.CreatedAt); err != nil {
		return nil, err
	}
	rv.Score = uint8(score)
	return &rv, nil
}

// GetReview by dish returns the oldest review of that dish.
func (r *PostgresCatalogueRepo) GetReview(ctx context.Context, tx repository.Tx, lookup model.ReviewLookup) (*model.Review, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}

	var row pgx.Row
	switch {
	case lookup.ID != 0:
		row = exec.QueryRow(ctx, reviewColumns+` WHERE rv.id = $1;`, lookup.ID)
	case lookup.DishID != 0:
		row = exec.QueryRow(ctx, reviewColumns+` WHERE rv.dish = $1 ORDER BY rv.id LIMIT 1;`, lookup.DishID)
	default:
		return nil, domain.ErrInvalidArgument
	}

	rv, err := scanReview(row)
	if err != nil {
		return nil, mapErr("GetReview", err)
	}
	return rv, nil
}

func (r *PostgresCatalogueRepo) ListReviews(ctx context.Context, tx repository.Tx, dishID int64) ([]*model.Review, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := exec.Query(ctx, reviewColumns+` WHERE rv.dish = $1 ORDER BY rv.id;`, dishID)
	if err != nil {
		return nil, mapErr("ListReviews", err)
	}
	defer rows.Close()

	out := make([]*model.Review, 0)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}
