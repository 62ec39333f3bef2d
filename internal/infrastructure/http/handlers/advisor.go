package handlers

import (
	"net/http"

	"github.com/deliveria/api/internal/domain/delivery"
	"github.com/deliveria/api/internal/domain/meal"
	"github.com/deliveria/api/internal/ports/outbound"
	"github.com/gin-gonic/gin"
)

// groqTestMaxTokens is the diagnostic completion budget when none is sent.
const groqTestMaxTokens = 1000

type preferencesBody struct {
	CuisineType      string   `json:"cuisine_type"`
	MealType         string   `json:"meal_type"`
	SpiceLevel       int      `json:"spice_level" binding:"min=0,max=5"`
	PreferredProtein []string `json:"preferred_protein"`
}

// RecommendationBody is the payload of POST /api/recommendations.
// calories_range is a [min, max] pair; min > max is accepted and matches nothing.
type RecommendationBody struct {
	Preferences         preferencesBody `json:"preferences"`
	DietaryRestrictions []string        `json:"dietary_restrictions"`
	CaloriesRange       []int           `json:"calories_range" binding:"required,len=2,dive,min=0"`
	Goals               string          `json:"goals"`
	Limit               *int            `json:"limit" binding:"omitempty,min=1"`
}

func (b RecommendationBody) toRequest() meal.RecommendationRequest {
	req := meal.RecommendationRequest{
		Preferences: meal.Preferences{
			CuisineType:      b.Preferences.CuisineType,
			MealType:         b.Preferences.MealType,
			SpiceLevel:       b.Preferences.SpiceLevel,
			PreferredProtein: b.Preferences.PreferredProtein,
		},
		Restrictions: b.DietaryRestrictions,
		Calories: meal.CaloriesRange{
			Min: float64(b.CaloriesRange[0]),
			Max: float64(b.CaloriesRange[1]),
		},
		Goals: b.Goals,
	}
	if b.Limit != nil {
		req.Limit = *b.Limit
	}
	return req
}

// RouteBody is the payload of POST /api/delivery/optimize-route.
type RouteBody struct {
	StartingPoint  *delivery.Coordinates `json:"starting_point" binding:"required"`
	DeliveryPoints []delivery.Point      `json:"delivery_points"`
}

// MenuBody is the payload of POST /api/menu/custom.
type MenuBody struct {
	Preferences string `json:"preferences" binding:"required"`
	ItemCount   *int   `json:"item_count" binding:"omitempty,min=1,max=20"`
}

// GroqTestBody is the payload of POST /api/groq/test.
type GroqTestBody struct {
	Prompt    string `json:"prompt" binding:"required"`
	Model     string `json:"model"`
	MaxTokens *int   `json:"max_tokens" binding:"omitempty,min=1"`
}

// Recommend handles POST /api/recommendations
func (h *Handlers) Recommend(c *gin.Context) {
	var body RecommendationBody
	if !bind(c, &body) {
		return
	}

	recs, err := h.advisor.Recommend(c.Request.Context(), body.toRequest())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

// AnalyzeNutrition handles POST /api/nutrition/analyze. The body is a bare
// array of ingredient identifiers.
func (h *Handlers) AnalyzeNutrition(c *gin.Context) {
	var ingredients []string
	if !bind(c, &ingredients) {
		return
	}
	if ingredients == nil {
		ingredients = []string{}
	}

	n, err := h.advisor.AnalyzeNutrition(c.Request.Context(), ingredients)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// OptimizeRoute handles POST /api/delivery/optimize-route
func (h *Handlers) OptimizeRoute(c *gin.Context) {
	var body RouteBody
	if !bind(c, &body) {
		return
	}

	route, err := h.advisor.OptimizeRoute(c.Request.Context(), *body.StartingPoint, body.DeliveryPoints)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, route)
}

// CustomMenu handles POST /api/menu/custom
func (h *Handlers) CustomMenu(c *gin.Context) {
	var body MenuBody
	if !bind(c, &body) {
		return
	}

	req := meal.MenuRequest{Preferences: body.Preferences, ItemCount: meal.DefaultMenuItems}
	if body.ItemCount != nil {
		req.ItemCount = *body.ItemCount
	}

	items, err := h.advisor.CustomMenu(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GroqTest handles POST /api/groq/test, a raw passthrough to the gateway.
// An empty model keeps the configured one.
func (h *Handlers) GroqTest(c *gin.Context) {
	var body GroqTestBody
	if !bind(c, &body) {
		return
	}

	opts := outbound.GenerateOptions{Model: body.Model, MaxTokens: groqTestMaxTokens}
	if body.MaxTokens != nil {
		opts.MaxTokens = *body.MaxTokens
	}

	text, err := h.advisor.Passthrough(c.Request.Context(), body.Prompt, opts)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": text})
}
