package meal

import "errors"

// Domain errors for meal operations

var (
	// Entity validation errors
	ErrNameRequired      = errors.New("meal name is required")
	ErrNegativePrice     = errors.New("meal price must not be negative")
	ErrNegativeNutrition = errors.New("nutrition values must not be negative")

	// Request validation errors
	ErrInvalidSpiceLevel   = errors.New("spice level must be between 0 and 5")
	ErrInvalidLimit        = errors.New("limit must be greater than 0")
	ErrNegativeCalorieSpan = errors.New("calorie bounds must not be negative")
	ErrInvalidItemCount    = errors.New("item count must be between 1 and 20")

	// Lookup errors
	ErrMealNotFound = errors.New("meal not found")
)
