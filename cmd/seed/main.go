package main

import (
	"context"
	"fmt"
	"time"

	"meal-review-bot/internal/config"
	pg "meal-review-bot/internal/infra/db/postgres"
	"meal-review-bot/internal/infra/logging"
	"meal-review-bot/internal/usecase"
)

// seed fills an empty catalogue with a few restaurants and dishes for local testing.
func main() {
	cfg, err := config.LoadAPIConfig()
	if err != nil {
		logging.Global.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.Connect(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("postgres schema")
	}

	catalogueUC := usecase.NewCatalogueUseCase(pg.NewCatalogueRepo(pool), pg.NewTxManager(pool), logger)

	// If restaurants already exist, do nothing
	existing, err := catalogueUC.ListRestaurants(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("list restaurants")
	}
	if len(existing) > 0 {
		fmt.Printf("%d restaurants already present. No changes.\n", len(existing))
		for _, r := range existing {
			fmt.Printf("  - %d %s (%s)\n", r.ID, r.Name, r.Address)
		}
		return
	}

	seed := []struct {
		Name    string
		Address string
		Dishes  []string
	}{
		{"KFC", "Main St", []string{"Burger", "Fries"}},
		{"McDonald's", "Market St", []string{"Big Mac"}},
		{"Kebab", "Harbour Rd", []string{"Doner", "Falafel"}},
	}

	for _, s := range seed {
		r, err := catalogueUC.AddRestaurant(ctx, s.Name, s.Address)
		if err != nil {
			logger.Fatal().Err(err).Str("restaurant", s.Name).Msg("create restaurant")
		}
		for _, name := range s.Dishes {
			if _, err := catalogueUC.AddDish(ctx, r.ID, name, nil); err != nil {
				logger.Fatal().Err(err).Str("dish", name).Msg("create dish")
			}
		}
		fmt.Printf("seeded: %d %s (%s), %d dishes\n", r.ID, r.Name, r.Address, len(s.Dishes))
	}

	fmt.Println("Seeding complete.")
}
