package recommendation

import (
	"testing"
	"time"

	"github.com/deliveria/api/internal/domain/delivery"
	"github.com/deliveria/api/internal/domain/meal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(rnd RandomSource) *Engine {
	if rnd == nil {
		rnd = NewRandomSource(42)
	}
	fixed := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	return NewEngine(meal.DefaultKnowledge(), rnd, func() time.Time { return fixed })
}

func permutations(items []string) [][]string {
	if len(items) <= 1 {
		return [][]string{append([]string(nil), items...)}
	}
	var out [][]string
	for i := range items {
		rest := make([]string, 0, len(items)-1)
		rest = append(rest, items[:i]...)
		rest = append(rest, items[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]string{items[i]}, p...))
		}
	}
	return out
}

func TestSumNutrition(t *testing.T) {
	engine := newTestEngine(nil)

	t.Run("FrangoAndQuinoa", func(t *testing.T) {
		n := engine.SumNutrition([]string{"frango", "quinoa"})

		assert.InDelta(t, 285, n.Calories, 1e-9)
		assert.InDelta(t, 35.4, n.Protein, 1e-9)
		assert.InDelta(t, 21.3, n.Carbs, 1e-9)
		assert.InDelta(t, 5.5, n.Fat, 1e-9)
	})

	t.Run("UnknownIngredients_ContributeZero", func(t *testing.T) {
		assert.Equal(t, engine.SumNutrition([]string{"tofu"}), engine.SumNutrition([]string{"tofu", "unicornio"}))
		assert.Equal(t, meal.Nutrition{}, engine.SumNutrition(nil))
	})

	t.Run("OrderIndependent", func(t *testing.T) {
		ingredients := []string{"espinafre", "quinoa", "batata_doce", "salmao", "abacate"}
		want := engine.SumNutrition(ingredients)

		for _, p := range permutations(ingredients) {
			assert.Equal(t, want, engine.SumNutrition(p), "permutation %v", p)
		}
	})
}

func TestFilterMeals(t *testing.T) {
	engine := newTestEngine(nil)
	knowledge := meal.DefaultKnowledge()
	wide := meal.CaloriesRange{Min: 0, Max: 10000}

	restrictionSets := [][]string{
		nil,
		{"vegano"},
		{"vegetariano"},
		{"sem_gluten"},
		{"low_carb"},
		{"vegano", "low_carb"},
		{"sem_lactose", "sem_nozes"},
		{"inexistente"},
	}

	for _, set := range restrictionSets {
		forbidden := knowledge.Forbidden(set)
		for _, m := range engine.FilterMeals(set, wide) {
			for _, ing := range m.Ingredients {
				assert.NotContains(t, forbidden, ing, "restrictions %v kept %q", set, m.Name)
			}
		}
	}

	t.Run("KeepsMealsWithoutForbiddenIngredients", func(t *testing.T) {
		got := engine.FilterMeals([]string{"vegano"}, wide)
		names := make([]string, 0, len(got))
		for _, m := range got {
			names = append(names, m.Name)
		}
		assert.Equal(t, []string{"Salada Mediterrânea", "Bowl Vegano"}, names)
	})

	t.Run("CalorieBoundsAreInclusive", func(t *testing.T) {
		got := engine.FilterMeals(nil, meal.CaloriesRange{Min: 380, Max: 410})
		require.Len(t, got, 3)
		for _, m := range got {
			assert.GreaterOrEqual(t, m.Nutrition.Calories, 380.0)
			assert.LessOrEqual(t, m.Nutrition.Calories, 410.0)
		}
	})

	t.Run("InvertedBounds_ShouldBeEmpty", func(t *testing.T) {
		assert.Empty(t, engine.FilterMeals(nil, meal.CaloriesRange{Min: 500, Max: 300}))
	})
}

func TestScoreMeals_IsStable(t *testing.T) {
	catalog := meal.DefaultKnowledge().Catalog()

	scored := ScoreMeals(catalog, []string{"frango"})

	// meals 1 and 5 contain frango and keep their relative order; the rest keep theirs
	ids := make([]int, 0, len(scored))
	for _, s := range scored {
		ids = append(ids, s.Meal.ID)
	}
	assert.Equal(t, []int{1, 5, 2, 3, 4}, ids)
	assert.Equal(t, 1, scored[0].Score)
	assert.Equal(t, 0, scored[2].Score)
}

func TestScoreMeals_NoMatches_KeepsCatalogOrder(t *testing.T) {
	catalog := meal.DefaultKnowledge().Catalog()

	scored := ScoreMeals(catalog, []string{"lentilha"})

	for i, s := range scored {
		assert.Equal(t, catalog[i].ID, s.Meal.ID)
	}
}

func TestRankMeals(t *testing.T) {
	engine := newTestEngine(nil)

	t.Run("DefaultLimitIsThree", func(t *testing.T) {
		recs := engine.RankMeals(meal.RecommendationRequest{Calories: meal.CaloriesRange{Max: 10000}})
		assert.Len(t, recs, 3)
		assert.Nil(t, recs[0].RelevanceScore)
	})

	t.Run("PreferredProteinRanksAndScores", func(t *testing.T) {
		recs := engine.RankMeals(meal.RecommendationRequest{
			Preferences: meal.Preferences{PreferredProtein: []string{"tofu", "batata_doce"}},
			Calories:    meal.CaloriesRange{Max: 10000},
			Limit:       2,
		})

		require.Len(t, recs, 2)
		assert.Equal(t, "Bowl Vegano", recs[0].Name)
		require.NotNil(t, recs[0].RelevanceScore)
		assert.Equal(t, 2, *recs[0].RelevanceScore)
		assert.Equal(t, "Salada Mediterrânea", recs[1].Name)
	})
}

func TestTemplateExplanation(t *testing.T) {
	engine := newTestEngine(fixedSource{intn: 0})

	text := engine.TemplateExplanation(meal.Nutrition{Protein: 32, Fat: 3.6})

	assert.Equal(t, "Esta refeição é ideal para você porque contém 32g de proteína e apenas 3.6g de gordura.", text)

	want := []string{
		"Recomendamos esta opção porque se alinha com suas preferências alimentares e oferece um bom equilíbrio nutricional.",
		"Com base na sua dieta, esta é uma excelente escolha que fornece nutrientes essenciais dentro da faixa calórica desejada.",
		"Selecionamos esta refeição porque combina seus ingredientes preferidos em uma combinação saborosa e nutritiva.",
		"Esta opção é perfeita para seus objetivos pois fornece energia sustentada e alta qualidade proteica.",
	}
	for i, w := range want {
		engine := newTestEngine(fixedSource{intn: i + 1})
		assert.Equal(t, w, engine.TemplateExplanation(meal.Nutrition{}))
	}
}

func TestStaticMenuImages(t *testing.T) {
	items := newTestEngine(nil).StaticMenu("qualquer coisa", 5)

	require.Len(t, items, 5)
	assert.Equal(t, "https://source.unsplash.com/random/800x600/?chicken-protein-bowl", items[0].Image)
	assert.Equal(t, "https://source.unsplash.com/random/800x600/?vegan-salad", items[1].Image)
	assert.Equal(t, "Mix de folhas, grão-de-bico, azeitonas, tomate cereja, pepino e molho de limão", items[1].Description)
	assert.Equal(t, "Wrap integral recheado com salmão defumado, cream cheese, rúcula e pepino", items[2].Description)
}

func TestMenuImagePatternIsShared(t *testing.T) {
	e := enricher{rnd: fixedSource{float: 0.5}}

	generated, err := e.menu([]generatedItem{{Name: "Bowl de Tofu"}})
	require.NoError(t, err)

	finished := []meal.MenuItem{{Name: "Bowl de Tofu"}}
	e.finishMenu(finished)

	assert.Equal(t, imageBase+meal.Slug("Bowl de Tofu")+"-food", generated[0].Image)
	assert.Equal(t, generated[0].Image, finished[0].Image)
}

func TestRouteFallback(t *testing.T) {
	engine := newTestEngine(NewRandomSource(7))
	points := []delivery.Point{
		{Address: "Rua A", OrderID: 3},
		{Address: "Rua B", OrderID: 1},
		{Address: "Rua C", OrderID: 2},
	}

	stops := engine.RouteFallback(points)

	require.Len(t, stops, len(points))
	start := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	prev := start
	for i, stop := range stops {
		assert.Equal(t, points[i].OrderID, stop.OrderID, "input order must be preserved")
		assert.GreaterOrEqual(t, stop.TravelTimeMinutes, 5)
		assert.LessOrEqual(t, stop.TravelTimeMinutes, 15)
		require.NotNil(t, stop.ArrivesAt)
		assert.False(t, stop.ArrivesAt.Before(prev), "arrival times must not decrease")
		assert.Equal(t, stop.ArrivesAt.Format("15:04"), stop.EstimatedArrival)
		prev = *stop.ArrivesAt
	}
}

func TestStaticMenu(t *testing.T) {
	engine := newTestEngine(nil)

	tests := []struct {
		name        string
		preferences string
		count       int
		wantNames   []string
	}{
		{
			name:        "vegan keeps only vegan items",
			preferences: "Sou VEGANO",
			count:       2,
			wantNames:   []string{"Salada Mediterrânea Vegana", "Salada Mediterrânea Vegana"},
		},
		{
			name:        "vegetarian keeps vegetarian and vegan",
			preferences: "vegetariano",
			count:       2,
			wantNames:   []string{"Salada Mediterrânea Vegana", "Tigela de Açaí Energética"},
		},
		{
			name:        "low carb narrows when possible",
			preferences: "quero algo low carb",
			count:       3,
			wantNames:   []string{"Bowl Proteico de Frango", "Bowl Low Carb de Atum", "Bowl Proteico de Frango"},
		},
		{
			name:        "vegan plus protein falls back to vegan list",
			preferences: "vegan com muita proteina",
			count:       1,
			wantNames:   []string{"Salada Mediterrânea Vegana"},
		},
		{
			name:        "no keywords uses the whole menu cyclically",
			preferences: "qualquer coisa",
			count:       6,
			wantNames: []string{
				"Bowl Proteico de Frango", "Salada Mediterrânea Vegana", "Wrap de Salmão com Cream Cheese",
				"Bowl Low Carb de Atum", "Tigela de Açaí Energética", "Bowl Proteico de Frango",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := engine.StaticMenu(tt.preferences, tt.count)

			require.Len(t, items, tt.count)
			for i, item := range items {
				assert.Equal(t, i+1, item.ID)
				assert.Equal(t, tt.wantNames[i], item.Name)
			}
		})
	}
}
