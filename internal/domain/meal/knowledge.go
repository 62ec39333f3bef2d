package meal

// Ingredient holds per-portion macros for a single ingredient token.
type Ingredient struct {
	Name     string
	Protein  float64
	Fat      float64
	Carbs    float64
	Calories float64
}

// Nutrition returns the ingredient's macros as a Nutrition summary.
func (i Ingredient) Nutrition() Nutrition {
	return Nutrition{
		Calories: i.Calories,
		Protein:  i.Protein,
		Carbs:    i.Carbs,
		Fat:      i.Fat,
	}
}

// CatalogMeal is a pre-authored meal used by the recommendation fallback.
type CatalogMeal struct {
	ID          int
	Name        string
	Description string
	Ingredients []string
	Tags        []string
	Nutrition   Nutrition
}

// Restriction maps a dietary rule to the ingredients it forbids.
type Restriction struct {
	Name      string
	Forbidden []string
}

// Knowledge is the read-only ingredient, catalog, restriction and base-menu
// data. Accessors return copies so callers can never mutate shared state.
type Knowledge struct {
	ingredients  map[string]Ingredient
	catalog      []CatalogMeal
	restrictions map[string]Restriction
	baseMenu     []MenuItem
}

// NewKnowledge builds a store from explicit tables.
func NewKnowledge(ingredients []Ingredient, catalog []CatalogMeal, restrictions []Restriction, baseMenu []MenuItem) *Knowledge {
	k := &Knowledge{
		ingredients:  make(map[string]Ingredient, len(ingredients)),
		catalog:      make([]CatalogMeal, 0, len(catalog)),
		restrictions: make(map[string]Restriction, len(restrictions)),
		baseMenu:     make([]MenuItem, 0, len(baseMenu)),
	}
	for _, ing := range ingredients {
		k.ingredients[ing.Name] = ing
	}
	for _, m := range catalog {
		k.catalog = append(k.catalog, m.clone())
	}
	for _, r := range restrictions {
		r.Forbidden = append([]string(nil), r.Forbidden...)
		k.restrictions[r.Name] = r
	}
	for _, item := range baseMenu {
		k.baseMenu = append(k.baseMenu, item.Clone())
	}
	return k
}

// Ingredient looks up an ingredient by token.
func (k *Knowledge) Ingredient(name string) (Ingredient, bool) {
	ing, ok := k.ingredients[name]
	return ing, ok
}

// Catalog returns the catalog in its authored order.
func (k *Knowledge) Catalog() []CatalogMeal {
	out := make([]CatalogMeal, len(k.catalog))
	for i, m := range k.catalog {
		out[i] = m.clone()
	}
	return out
}

// Forbidden returns the union of forbidden ingredients across the named
// restrictions. Unknown names contribute nothing.
func (k *Knowledge) Forbidden(names []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, name := range names {
		r, ok := k.restrictions[name]
		if !ok {
			continue
		}
		for _, ing := range r.Forbidden {
			set[ing] = struct{}{}
		}
	}
	return set
}

// BaseMenu returns the static menu used when no personalised menu can be generated.
func (k *Knowledge) BaseMenu() []MenuItem {
	out := make([]MenuItem, len(k.baseMenu))
	for i, item := range k.baseMenu {
		out[i] = item.Clone()
	}
	return out
}

func (m CatalogMeal) clone() CatalogMeal {
	m.Ingredients = append([]string(nil), m.Ingredients...)
	m.Tags = append([]string(nil), m.Tags...)
	return m
}

// DefaultKnowledge returns the built-in DeliverIA tables.
func DefaultKnowledge() *Knowledge {
	return NewKnowledge(defaultIngredients, defaultCatalog, defaultRestrictions, defaultBaseMenu)
}

var defaultIngredients = []Ingredient{
	{Name: "frango", Protein: 31, Fat: 3.6, Carbs: 0, Calories: 165},
	{Name: "quinoa", Protein: 4.4, Fat: 1.9, Carbs: 21.3, Calories: 120},
	{Name: "abacate", Protein: 2, Fat: 15, Carbs: 9, Calories: 160},
	{Name: "espinafre", Protein: 2.9, Fat: 0.4, Carbs: 3.6, Calories: 23},
	{Name: "batata_doce", Protein: 1.6, Fat: 0.1, Carbs: 20.1, Calories: 86},
	{Name: "salmao", Protein: 25, Fat: 13, Carbs: 0, Calories: 208},
	{Name: "tofu", Protein: 8, Fat: 4.8, Carbs: 1.9, Calories: 76},
	{Name: "grao_de_bico", Protein: 9, Fat: 2.6, Carbs: 27, Calories: 164},
	{Name: "arroz_integral", Protein: 2.6, Fat: 0.9, Carbs: 23, Calories: 112},
	{Name: "lentilha", Protein: 9, Fat: 0.4, Carbs: 20, Calories: 116},
}

var defaultCatalog = []CatalogMeal{
	{
		ID:          1,
		Name:        "Bowl Proteico de Frango",
		Description: "Bowl de frango grelhado com quinoa, legumes, abacate e molho especial",
		Ingredients: []string{"frango", "quinoa", "abacate", "espinafre"},
		Tags:        []string{"Proteico", "Low-carb", "Sem Glúten"},
		Nutrition:   Nutrition{Calories: 450, Protein: 32, Carbs: 42, Fat: 16},
	},
	{
		ID:          2,
		Name:        "Salada Mediterrânea",
		Description: "Mix de folhas, grão-de-bico, azeitonas, tomate cereja, pepino e queijo feta",
		Ingredients: []string{"grao_de_bico", "espinafre", "tofu"},
		Tags:        []string{"Vegetariano", "Rico em Fibras", "Mediterrâneo"},
		Nutrition:   Nutrition{Calories: 380, Protein: 18, Carbs: 35, Fat: 20},
	},
	{
		ID:          3,
		Name:        "Wrap de Salmão",
		Description: "Wrap integral recheado com salmão defumado, cream cheese, rúcula e pepino",
		Ingredients: []string{"salmao", "espinafre"},
		Tags:        []string{"Omega-3", "Proteico", "Sem Lactose"},
		Nutrition:   Nutrition{Calories: 420, Protein: 28, Carbs: 38, Fat: 18},
	},
	{
		ID:          4,
		Name:        "Bowl Vegano",
		Description: "Mix de vegetais, tofu grelhado e castanhas com molho de coco",
		Ingredients: []string{"tofu", "espinafre", "batata_doce"},
		Tags:        []string{"Vegano", "Rico em Fibras", "Sem Glúten"},
		Nutrition:   Nutrition{Calories: 410, Protein: 15, Carbs: 48, Fat: 19},
	},
	{
		ID:          5,
		Name:        "Prato Fitness",
		Description: "Frango grelhado com batata doce e legumes no vapor",
		Ingredients: []string{"frango", "batata_doce", "espinafre"},
		Tags:        []string{"Alto em Proteína", "Baixo em Gordura", "Fitness"},
		Nutrition:   Nutrition{Calories: 380, Protein: 35, Carbs: 30, Fat: 8},
	},
}

var defaultRestrictions = []Restriction{
	{Name: "vegetariano", Forbidden: []string{"frango", "salmao"}},
	{Name: "vegano", Forbidden: []string{"frango", "salmao"}},
	{Name: "sem_gluten", Forbidden: []string{"quinoa"}},
	{Name: "sem_lactose"},
	{Name: "sem_nozes"},
	{Name: "low_carb", Forbidden: []string{"batata_doce", "quinoa", "grao_de_bico", "arroz_integral"}},
}

var defaultBaseMenu = []MenuItem{
	{
		ID:          1,
		Name:        "Bowl Proteico de Frango",
		Description: "Bowl de frango grelhado com quinoa, legumes, abacate e molho especial",
		Price:       35.90,
		Image:       "https://source.unsplash.com/random/800x600/?chicken-protein-bowl",
		Tags:        []string{"Proteico", "Low-carb", "Saudável"},
		Nutrition:   Nutrition{Calories: 450, Protein: 32, Carbs: 42, Fat: 16},
	},
	{
		ID:          2,
		Name:        "Salada Mediterrânea Vegana",
		Description: "Mix de folhas, grão-de-bico, azeitonas, tomate cereja, pepino e molho de limão",
		Price:       29.90,
		Image:       "https://source.unsplash.com/random/800x600/?vegan-salad",
		Tags:        []string{"Vegano", "Rico em Fibras", "Mediterrâneo"},
		Nutrition:   Nutrition{Calories: 380, Protein: 18, Carbs: 35, Fat: 20},
	},
	{
		ID:          3,
		Name:        "Wrap de Salmão com Cream Cheese",
		Description: "Wrap integral recheado com salmão defumado, cream cheese, rúcula e pepino",
		Price:       32.90,
		Image:       "https://source.unsplash.com/random/800x600/?salmon-wrap",
		Tags:        []string{"Omega-3", "Proteico", "Sem Glúten"},
		Nutrition:   Nutrition{Calories: 420, Protein: 28, Carbs: 38, Fat: 18},
	},
	{
		ID:          4,
		Name:        "Bowl Low Carb de Atum",
		Description: "Bowl com atum selado, mix de folhas, ovos cozidos, azeitonas e molho de ervas",
		Price:       39.90,
		Image:       "https://source.unsplash.com/random/800x600/?tuna-bowl",
		Tags:        []string{"Low-Carb", "Proteico", "Rico em Ômega-3"},
		Nutrition:   Nutrition{Calories: 390, Protein: 35, Carbs: 12, Fat: 22},
	},
	{
		ID:          5,
		Name:        "Tigela de Açaí Energética",
		Description: "Açaí batido com banana, coberto com granola, frutas frescas e mel",
		Price:       26.90,
		Image:       "https://source.unsplash.com/random/800x600/?acai-bowl",
		Tags:        []string{"Energético", "Antioxidantes", "Vegetariano"},
		Nutrition:   Nutrition{Calories: 410, Protein: 8, Carbs: 65, Fat: 12},
	},
}
