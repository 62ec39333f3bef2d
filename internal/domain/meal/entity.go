package meal

import "time"

// Meal is a persisted, orderable catalog entry.
type Meal struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Nutrition   Nutrition `json:"nutritional_info"`
	Ingredients []string  `json:"ingredients"`
	ImageURL    string    `json:"image_url"`
	Available   bool      `json:"is_available"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// NewMeal creates an available meal after validating it.
func NewMeal(name, description string, price float64, nutrition Nutrition, ingredients []string, imageURL string) (*Meal, error) {
	m := &Meal{
		Name:        name,
		Description: description,
		Price:       price,
		Nutrition:   nutrition,
		Ingredients: append([]string(nil), ingredients...),
		ImageURL:    imageURL,
		Available:   true,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the entity invariants.
func (m *Meal) Validate() error {
	if m.Name == "" {
		return ErrNameRequired
	}
	if m.Price < 0 {
		return ErrNegativePrice
	}
	return m.Nutrition.Validate()
}

// SeedMeals derives the initial persisted catalog from the knowledge store,
// pricing each catalog meal from the base menu entry sharing its ID.
func SeedMeals(k *Knowledge) []*Meal {
	prices := make(map[int]float64)
	for _, item := range k.BaseMenu() {
		prices[item.ID] = item.Price
	}

	catalog := k.Catalog()
	meals := make([]*Meal, 0, len(catalog))
	for _, c := range catalog {
		price, ok := prices[c.ID]
		if !ok {
			price = 30
		}
		meals = append(meals, &Meal{
			Name:        c.Name,
			Description: c.Description,
			Price:       price,
			Nutrition:   c.Nutrition,
			Ingredients: c.Ingredients,
			ImageURL:    "https://source.unsplash.com/random/800x600/?" + Slug(c.Name),
			Available:   true,
		})
	}
	return meals
}
