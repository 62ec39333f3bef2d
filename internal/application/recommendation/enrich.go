package recommendation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/deliveria/api/internal/domain/meal"
)

const (
	imageBase       = "https://source.unsplash.com/random/800x600/?"
	menuImageSuffix = "-food"
)

// Backfill ranges for generated items.
const (
	minPrice       = 25.0
	priceSpan      = 20.0
	minCalories    = 300
	maxCalories    = 600
	minProtein     = 15
	maxProtein     = 35
	minCarbs       = 20
	maxCarbs       = 50
	minFat         = 5
	maxFat         = 20
	defaultMenuTag = "Personalizado"
)

var errUnnamedItem = errors.New("generated item has no name")

// generatedItem is the lenient shape of one model-produced dish. Fields the
// model tends to get wrong are kept raw and repaired by the enricher.
type generatedItem struct {
	ID          json.RawMessage `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       json.RawMessage `json:"price"`
	Image       string          `json:"image"`
	ImageURL    string          `json:"image_url"`
	Tags        []string        `json:"tags"`
	Nutrition   json.RawMessage `json:"nutrition"`
	Ingredients []string        `json:"ingredients"`
	Explanation string          `json:"ai_explanation"`
}

// enricher fills in what a generated item left out.
type enricher struct {
	rnd RandomSource
}

// price returns a random price in [25, 45) rounded to cents.
func (e enricher) price() float64 {
	p := math.Round((minPrice+e.rnd.Float64()*priceSpan)*100) / 100
	// rounding can reach the open upper bound
	if p >= minPrice+priceSpan {
		p = minPrice + priceSpan - 0.01
	}
	return p
}

func (e enricher) nutrition() meal.Nutrition {
	return meal.Nutrition{
		Calories: float64(between(e.rnd, minCalories, maxCalories)),
		Protein:  float64(between(e.rnd, minProtein, maxProtein)),
		Carbs:    float64(between(e.rnd, minCarbs, maxCarbs)),
		Fat:      float64(between(e.rnd, minFat, maxFat)),
	}
}

// menuItem turns a generated item into a complete MenuItem. imageSuffix is
// appended to the slug of the placeholder image query.
func (e enricher) menuItem(g generatedItem, position int, imageSuffix string, defaultTags []string) (meal.MenuItem, error) {
	if g.Name == "" {
		return meal.MenuItem{}, errUnnamedItem
	}

	item := meal.MenuItem{
		ID:          parseID(g.ID, position+1),
		Name:        g.Name,
		Description: g.Description,
		Tags:        g.Tags,
		Image:       g.Image,
	}
	if item.Image == "" {
		item.Image = g.ImageURL
	}
	if item.Image == "" {
		item.Image = imageBase + meal.Slug(g.Name) + imageSuffix
	}
	if len(item.Tags) == 0 && len(defaultTags) > 0 {
		item.Tags = append([]string(nil), defaultTags...)
	}

	if p, ok := parsePositive(g.Price); ok {
		item.Price = p
	} else {
		item.Price = e.price()
	}

	if n, ok := parseNutrition(g.Nutrition); ok {
		item.Nutrition = n
	} else {
		item.Nutrition = e.nutrition()
	}
	return item, nil
}

// recommendations enriches a generated recommendation list.
func (e enricher) recommendations(items []generatedItem) ([]meal.Recommendation, error) {
	out := make([]meal.Recommendation, 0, len(items))
	for i, g := range items {
		item, err := e.menuItem(g, i, "", nil)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, meal.Recommendation{
			MenuItem:    item,
			Ingredients: g.Ingredients,
			Explanation: g.Explanation,
		})
	}
	return out, nil
}

// menu enriches a generated menu.
func (e enricher) menu(items []generatedItem) ([]meal.MenuItem, error) {
	out := make([]meal.MenuItem, 0, len(items))
	for i, g := range items {
		item, err := e.menuItem(g, i, menuImageSuffix, []string{defaultMenuTag})
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, item)
	}
	return out, nil
}

// finishMenu applies the last pass every menu goes through, generated or
// static: default tags, price, nutrition and image when still missing.
func (e enricher) finishMenu(items []meal.MenuItem) {
	for i := range items {
		item := &items[i]
		if len(item.Tags) == 0 {
			item.Tags = []string{defaultMenuTag}
		}
		if item.Price <= 0 {
			item.Price = e.price()
		}
		if item.Nutrition == (meal.Nutrition{}) {
			item.Nutrition = e.nutrition()
		}
		if item.Image == "" {
			item.Image = imageBase + meal.Slug(item.Name) + menuImageSuffix
		}
	}
}

// finishRecommendations backfills price and image on fallback recommendations.
func (e enricher) finishRecommendations(recs []meal.Recommendation) {
	for i := range recs {
		if recs[i].Price <= 0 {
			recs[i].Price = e.price()
		}
		if recs[i].Image == "" {
			recs[i].Image = imageBase + meal.Slug(recs[i].Name)
		}
	}
}

func parseID(raw json.RawMessage, fallback int) int {
	var id int
	if len(raw) > 0 && json.Unmarshal(raw, &id) == nil && id > 0 {
		return id
	}
	return fallback
}

func parsePositive(raw json.RawMessage) (float64, bool) {
	var v float64
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// parseNutrition accepts only a JSON object whose values are non-negative.
func parseNutrition(raw json.RawMessage) (meal.Nutrition, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return meal.Nutrition{}, false
	}
	var n meal.Nutrition
	if err := json.Unmarshal(raw, &n); err != nil {
		return meal.Nutrition{}, false
	}
	if n.Validate() != nil {
		return meal.Nutrition{}, false
	}
	return n, true
}
