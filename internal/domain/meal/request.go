package meal

// DefaultLimit is the number of recommendations returned when the caller sets none.
const DefaultLimit = 3

// DefaultMenuItems is the menu size used when the caller sets none.
const DefaultMenuItems = 4

// MaxMenuItems caps the size of a generated menu.
const MaxMenuItems = 20

// Preferences describes what a diner would like to eat.
type Preferences struct {
	CuisineType      string   `json:"cuisine_type"`
	MealType         string   `json:"meal_type"`
	SpiceLevel       int      `json:"spice_level"`
	PreferredProtein []string `json:"preferred_protein"`
}

// CaloriesRange is an inclusive calorie window. Min > Max is allowed and
// matches nothing.
type CaloriesRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether calories lies inside the window.
func (r CaloriesRange) Contains(calories float64) bool {
	return calories >= r.Min && calories <= r.Max
}

// RecommendationRequest is a single recommendation query.
type RecommendationRequest struct {
	Preferences  Preferences
	Restrictions []string
	Calories     CaloriesRange
	Goals        string
	Limit        int
}

// EffectiveLimit returns the requested limit or DefaultLimit.
func (r RecommendationRequest) EffectiveLimit() int {
	if r.Limit <= 0 {
		return DefaultLimit
	}
	return r.Limit
}

// Validate checks the request's own invariants.
func (r RecommendationRequest) Validate() error {
	if r.Preferences.SpiceLevel < 0 || r.Preferences.SpiceLevel > 5 {
		return ErrInvalidSpiceLevel
	}
	if r.Limit < 0 {
		return ErrInvalidLimit
	}
	if r.Calories.Min < 0 || r.Calories.Max < 0 {
		return ErrNegativeCalorieSpan
	}
	return nil
}

// MenuRequest asks for a personalised menu described in free text.
type MenuRequest struct {
	Preferences string
	ItemCount   int
}

// Validate checks the requested menu size.
func (r MenuRequest) Validate() error {
	if r.ItemCount < 1 || r.ItemCount > MaxMenuItems {
		return ErrInvalidItemCount
	}
	return nil
}
