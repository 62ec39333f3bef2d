// Package catalog serves the persisted meal catalog with a read-through cache.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/deliveria/api/internal/domain/meal"
	"github.com/deliveria/api/internal/ports/inbound"
	"github.com/deliveria/api/internal/ports/outbound"
	apperrors "github.com/deliveria/api/pkg/errors"
	"go.uber.org/zap"
)

const (
	availableKey  = "meals:available"
	mealKeyPrefix = "meals:id:"
)

// Service implements inbound.CatalogService.
type Service struct {
	meals  outbound.MealRepository
	cache  outbound.CacheRepository
	ttl    time.Duration
	logger *zap.Logger
}

var _ inbound.CatalogService = (*Service)(nil)

// NewService creates a catalog service. Cache failures never fail a read.
func NewService(meals outbound.MealRepository, cache outbound.CacheRepository, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{
		meals:  meals,
		cache:  cache,
		ttl:    ttl,
		logger: logger.Named("catalog-service"),
	}
}

// ListAvailable returns every meal currently on sale.
func (s *Service) ListAvailable(ctx context.Context) ([]*meal.Meal, error) {
	var cached []*meal.Meal
	if s.fromCache(ctx, availableKey, &cached) {
		return cached, nil
	}

	meals, err := s.meals.ListAvailable(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list meals").WithCause(err)
	}
	if meals == nil {
		meals = []*meal.Meal{}
	}

	s.toCache(ctx, availableKey, meals)
	return meals, nil
}

// GetMeal returns one meal or a MEAL_NOT_FOUND error.
func (s *Service) GetMeal(ctx context.Context, id uint) (*meal.Meal, error) {
	key := fmt.Sprintf("%s%d", mealKeyPrefix, id)

	var cached meal.Meal
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	m, err := s.meals.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, meal.ErrMealNotFound) {
			return nil, apperrors.NewMealNotFoundError(id)
		}
		return nil, apperrors.NewInternalError("failed to load meal").WithCause(err)
	}

	s.toCache(ctx, key, m)
	return m, nil
}

func (s *Service) fromCache(ctx context.Context, key string, v interface{}) bool {
	if s.cache == nil {
		return false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, outbound.ErrCacheMiss) {
			s.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("Discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		_ = s.cache.Delete(ctx, key)
		return false
	}
	return true
}

func (s *Service) toCache(ctx context.Context, key string, v interface{}) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}
