package recommendation

import (
	"fmt"
	"strings"

	"github.com/deliveria/api/internal/domain/delivery"
	"github.com/deliveria/api/internal/domain/meal"
)

// Prompts are written in Brazilian Portuguese because the generated text is
// shown to diners as-is.

func recommendationPrompt(req meal.RecommendationRequest) string {
	var b strings.Builder
	b.WriteString("Você é um nutricionista que monta sugestões de refeições saudáveis para um app de delivery.\n\n")
	b.WriteString("Perfil do cliente:\n")
	fmt.Fprintf(&b, "- Culinária preferida: %s\n", orNone(req.Preferences.CuisineType))
	fmt.Fprintf(&b, "- Tipo de refeição: %s\n", orNone(req.Preferences.MealType))
	fmt.Fprintf(&b, "- Nível de tempero (0 a 5): %d\n", req.Preferences.SpiceLevel)
	fmt.Fprintf(&b, "- Proteínas preferidas: %s\n", joinOrNone(req.Preferences.PreferredProtein))
	fmt.Fprintf(&b, "- Restrições alimentares: %s\n", joinOrNone(req.Restrictions))
	fmt.Fprintf(&b, "- Faixa de calorias: %s a %s kcal\n", formatGrams(req.Calories.Min), formatGrams(req.Calories.Max))
	if req.Goals != "" {
		fmt.Fprintf(&b, "- Objetivo: %s\n", req.Goals)
	}
	fmt.Fprintf(&b, "\nSugira %d refeições. Responda somente com um array JSON em que cada item tenha:\n", req.EffectiveLimit())
	b.WriteString(`{"id": número, "name": texto, "description": texto, "ingredients": [texto], "tags": [texto], ` +
		`"nutrition": {"calories": número, "protein": número, "carbs": número, "fat": número}, "ai_explanation": texto}`)
	return b.String()
}

func explanationPrompt(rec meal.Recommendation) string {
	return fmt.Sprintf(
		"Explique em uma ou duas frases curtas, em português, por que a refeição \"%s\" (%s) é uma boa escolha. "+
			"Ela tem %s kcal, %sg de proteína, %sg de carboidratos e %sg de gordura. Responda apenas com a explicação.",
		rec.Name, rec.Description,
		formatGrams(rec.Nutrition.Calories), formatGrams(rec.Nutrition.Protein),
		formatGrams(rec.Nutrition.Carbs), formatGrams(rec.Nutrition.Fat),
	)
}

func nutritionPrompt(ingredients []string) string {
	return fmt.Sprintf(
		"Estime a informação nutricional total de uma porção feita com os ingredientes: %s.\n"+
			`Responda somente com um objeto JSON no formato {"calories": número, "protein": número, "carbs": número, "fat": número}, `+
			"com calorias em kcal e os demais valores em gramas.",
		joinOrNone(ingredients),
	)
}

func menuPrompt(req meal.MenuRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Crie um cardápio personalizado com %d pratos para um cliente que descreveu assim suas preferências:\n", req.ItemCount)
	fmt.Fprintf(&b, "\"%s\"\n\n", req.Preferences)
	b.WriteString("Responda somente com um array JSON em que cada item tenha:\n")
	b.WriteString(`{"id": número, "name": texto, "description": texto, "price": número em reais, "tags": [texto], ` +
		`"nutrition": {"calories": número, "protein": número, "carbs": número, "fat": número}}`)
	return b.String()
}

func routePrompt(start delivery.Coordinates, points []delivery.Point) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Um entregador sai de (%g, %g) e precisa visitar os pontos abaixo.\n", start.Lat, start.Lng)
	for i, p := range points {
		fmt.Fprintf(&b, "Ponto %d: %s (%g, %g), pedido %d, cliente %s\n", i+1, p.Address, p.Lat, p.Lng, p.OrderID, p.CustomerName)
	}
	b.WriteString("\nOrdene os pontos na rota mais eficiente. Responda somente com um array JSON em que cada item tenha ")
	b.WriteString(`os campos originais do ponto ("address", "lat", "lng", "order_id", "customer_name") mais `)
	b.WriteString(`"estimated_arrival" no formato HH:MM e "travel_time_minutes" inteiro.`)
	return b.String()
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "nenhuma"
	}
	return s
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "nenhuma"
	}
	return strings.Join(items, ", ")
}
