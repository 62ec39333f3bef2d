package gorm

import (
	"context"
	"fmt"

	"github.com/deliveria/api/internal/domain/meal"
	"github.com/deliveria/api/internal/ports/outbound"
	"go.uber.org/zap"
)

// SeedCatalog stores the default catalog when no meal exists yet. It is
// safe to call on every start.
func SeedCatalog(ctx context.Context, repo outbound.MealRepository, knowledge *meal.Knowledge, log *zap.Logger) error {
	count, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count meals: %w", err)
	}
	if count > 0 {
		return nil
	}

	seeds := meal.SeedMeals(knowledge)
	for _, m := range seeds {
		if err := repo.Create(ctx, m); err != nil {
			return fmt.Errorf("failed to seed meal %q: %w", m.Name, err)
		}
	}

	log.Info("Seeded meal catalog", zap.Int("meals", len(seeds)))
	return nil
}
