package gorm

import (
	"context"
	"errors"

	"github.com/deliveria/api/internal/domain/meal"
	"github.com/deliveria/api/internal/ports/outbound"
	"gorm.io/gorm"
)

// MealRepository implements the meal repository interface using GORM
type MealRepository struct {
	db *gorm.DB
}

// NewMealRepository creates a new meal repository
func NewMealRepository(db *gorm.DB) outbound.MealRepository {
	return &MealRepository{db: db}
}

// Create inserts a meal and writes the generated ID back
func (r *MealRepository) Create(ctx context.Context, m *meal.Meal) error {
	model := MealToModel(m)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	m.ID = model.ID
	m.CreatedAt = model.CreatedAt
	m.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID finds a meal by ID
func (r *MealRepository) FindByID(ctx context.Context, id uint) (*meal.Meal, error) {
	var model MealModel

	result := r.db.WithContext(ctx).First(&model, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, meal.ErrMealNotFound
		}
		return nil, result.Error
	}

	return ModelToMeal(&model), nil
}

// FindByIDs loads several meals at once; missing IDs are simply absent from the map
func (r *MealRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]*meal.Meal, error) {
	out := make(map[uint]*meal.Meal, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var models []MealModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}

	for i := range models {
		out[models[i].ID] = ModelToMeal(&models[i])
	}
	return out, nil
}

// ListAvailable returns the meals on sale ordered by ID
func (r *MealRepository) ListAvailable(ctx context.Context) ([]*meal.Meal, error) {
	var models []MealModel

	result := r.db.WithContext(ctx).
		Where("is_available = ?", true).
		Order("id ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	meals := make([]*meal.Meal, 0, len(models))
	for i := range models {
		meals = append(meals, ModelToMeal(&models[i]))
	}
	return meals, nil
}

// Count returns the number of stored meals
func (r *MealRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&MealModel{}).Count(&count).Error
	return count, err
}
