package meal

import "strings"

// MenuItem is a dish as presented to the client.
type MenuItem struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Image       string    `json:"image"`
	Tags        []string  `json:"tags"`
	Nutrition   Nutrition `json:"nutrition"`
}

// Clone returns a deep copy of the item.
func (m MenuItem) Clone() MenuItem {
	m.Tags = append([]string(nil), m.Tags...)
	return m
}

// HasAnyTag reports whether the item carries at least one of the tags.
func (m MenuItem) HasAnyTag(tags ...string) bool {
	for _, have := range m.Tags {
		for _, want := range tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Recommendation is a suggested meal with optional reasoning attached.
type Recommendation struct {
	MenuItem
	Ingredients    []string `json:"ingredients,omitempty"`
	Explanation    string   `json:"ai_explanation,omitempty"`
	RelevanceScore *int     `json:"relevance_score,omitempty"`
}

// RecommendationFromCatalog copies a catalog meal into a recommendation.
// Price and image are left for enrichment.
func RecommendationFromCatalog(m CatalogMeal) Recommendation {
	return Recommendation{
		MenuItem: MenuItem{
			ID:          m.ID,
			Name:        m.Name,
			Description: m.Description,
			Tags:        append([]string(nil), m.Tags...),
			Nutrition:   m.Nutrition,
		},
		Ingredients: append([]string(nil), m.Ingredients...),
	}
}

// Slug lowercases a name and replaces spaces with dashes, for placeholder image queries.
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}
