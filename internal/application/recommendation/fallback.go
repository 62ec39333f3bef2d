package recommendation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/deliveria/api/internal/domain/delivery"
	"github.com/deliveria/api/internal/domain/meal"
)

// Route fallback travel time bounds, in minutes.
const (
	minLegMinutes = 5
	maxLegMinutes = 15
)

// Engine computes the deterministic substitutes used when the generative
// path is unavailable. Apart from the injected random source it is pure.
type Engine struct {
	knowledge *meal.Knowledge
	rnd       RandomSource
	now       func() time.Time
}

// NewEngine creates a fallback engine over the given knowledge store.
func NewEngine(knowledge *meal.Knowledge, rnd RandomSource, now func() time.Time) *Engine {
	if rnd == nil {
		rnd = NewTimeSeededSource()
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{knowledge: knowledge, rnd: rnd, now: now}
}

// SumNutrition adds up the macros of every known ingredient. Unknown
// ingredients contribute nothing. Ingredients are summed in sorted order so
// the floating point result does not depend on the caller's ordering.
func (e *Engine) SumNutrition(ingredients []string) meal.Nutrition {
	sorted := append([]string(nil), ingredients...)
	sort.Strings(sorted)

	var total meal.Nutrition
	for _, name := range sorted {
		if ing, ok := e.knowledge.Ingredient(name); ok {
			total = total.Add(ing.Nutrition())
		}
	}
	return total
}

// FilterMeals keeps catalog meals that contain no forbidden ingredient and
// whose calories lie inside the window.
func (e *Engine) FilterMeals(restrictions []string, calories meal.CaloriesRange) []meal.CatalogMeal {
	forbidden := e.knowledge.Forbidden(restrictions)

	var kept []meal.CatalogMeal
	for _, m := range e.knowledge.Catalog() {
		if containsAny(m.Ingredients, forbidden) {
			continue
		}
		if !calories.Contains(m.Nutrition.Calories) {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}

// ScoredMeal pairs a catalog meal with its preference score.
type ScoredMeal struct {
	Meal  meal.CatalogMeal
	Score int
}

// ScoreMeals counts, for each meal, how many of its ingredients are in the
// preferred set, then stable-sorts by that count descending so ties keep
// catalog order.
func ScoreMeals(meals []meal.CatalogMeal, preferred []string) []ScoredMeal {
	want := make(map[string]struct{}, len(preferred))
	for _, p := range preferred {
		want[p] = struct{}{}
	}

	scored := make([]ScoredMeal, len(meals))
	for i, m := range meals {
		score := 0
		for _, ing := range m.Ingredients {
			if _, ok := want[ing]; ok {
				score++
			}
		}
		scored[i] = ScoredMeal{Meal: m, Score: score}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// RankMeals runs the filter, the optional preference scoring and the limit.
// Results are not yet explained or priced.
func (e *Engine) RankMeals(req meal.RecommendationRequest) []meal.Recommendation {
	filtered := e.FilterMeals(req.Restrictions, req.Calories)
	limit := req.EffectiveLimit()

	var out []meal.Recommendation
	if len(req.Preferences.PreferredProtein) > 0 {
		for _, s := range ScoreMeals(filtered, req.Preferences.PreferredProtein) {
			rec := meal.RecommendationFromCatalog(s.Meal)
			score := s.Score
			rec.RelevanceScore = &score
			out = append(out, rec)
		}
	} else {
		for _, m := range filtered {
			out = append(out, meal.RecommendationFromCatalog(m))
		}
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// TemplateExplanation picks one of the canned explanations.
func (e *Engine) TemplateExplanation(n meal.Nutrition) string {
	templates := []string{
		fmt.Sprintf("Esta refeição é ideal para você porque contém %sg de proteína e apenas %sg de gordura.",
			formatGrams(n.Protein), formatGrams(n.Fat)),
		"Recomendamos esta opção porque se alinha com suas preferências alimentares e oferece um bom equilíbrio nutricional.",
		"Com base na sua dieta, esta é uma excelente escolha que fornece nutrientes essenciais dentro da faixa calórica desejada.",
		"Selecionamos esta refeição porque combina seus ingredientes preferidos em uma combinação saborosa e nutritiva.",
		"Esta opção é perfeita para seus objetivos pois fornece energia sustentada e alta qualidade proteica.",
	}
	return templates[e.rnd.Intn(len(templates))]
}

// RouteFallback keeps the caller's order and assigns each leg a random
// travel time, accumulating arrival times from now.
func (e *Engine) RouteFallback(points []delivery.Point) []delivery.Stop {
	stops := make([]delivery.Stop, 0, len(points))
	clock := e.now()
	for _, p := range points {
		minutes := between(e.rnd, minLegMinutes, maxLegMinutes)
		clock = clock.Add(time.Duration(minutes) * time.Minute)
		arrival := clock
		stops = append(stops, delivery.Stop{
			Point:             p,
			EstimatedArrival:  arrival.Format(delivery.ClockFormat),
			TravelTimeMinutes: minutes,
			ArrivesAt:         &arrival,
		})
	}
	return stops
}

// StaticMenu narrows the base menu by keywords found in the free-text
// preferences, then repeats it cyclically up to count items numbered 1..count.
func (e *Engine) StaticMenu(preferences string, count int) []meal.MenuItem {
	base := e.knowledge.BaseMenu()
	text := strings.ToLower(preferences)

	items := base
	switch {
	case strings.Contains(text, "vegan"):
		// also matches "vegano"
		items = keep(items, func(m meal.MenuItem) bool { return m.HasAnyTag("Vegano") })
	case strings.Contains(text, "vegetarian"):
		items = keep(items, func(m meal.MenuItem) bool { return m.HasAnyTag("Vegetariano", "Vegano") })
	}

	if strings.Contains(text, "low carb") || strings.Contains(text, "baixo carboidrato") {
		items = prefer(items, func(m meal.MenuItem) bool { return m.HasAnyTag("Low-Carb", "Low-carb") })
	}
	if strings.Contains(text, "proteina") || strings.Contains(text, "protein") {
		items = prefer(items, func(m meal.MenuItem) bool { return m.HasAnyTag("Proteico") })
	}

	if len(items) == 0 {
		items = base
	}

	out := make([]meal.MenuItem, 0, count)
	for i := 0; i < count; i++ {
		item := items[i%len(items)].Clone()
		item.ID = i + 1
		out = append(out, item)
	}
	return out
}

func keep(items []meal.MenuItem, pred func(meal.MenuItem) bool) []meal.MenuItem {
	var out []meal.MenuItem
	for _, item := range items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

// prefer narrows to matching items only when at least one matches.
func prefer(items []meal.MenuItem, pred func(meal.MenuItem) bool) []meal.MenuItem {
	if matched := keep(items, pred); len(matched) > 0 {
		return matched
	}
	return items
}

func containsAny(ingredients []string, set map[string]struct{}) bool {
	for _, ing := range ingredients {
		if _, ok := set[ing]; ok {
			return true
		}
	}
	return false
}

func formatGrams(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
