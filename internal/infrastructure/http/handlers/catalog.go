package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListMeals handles GET /api/meals
func (h *Handlers) ListMeals(c *gin.Context) {
	meals, err := h.catalog.ListAvailable(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, meals)
}

// GetMeal handles GET /api/meals/:id
func (h *Handlers) GetMeal(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	m, err := h.catalog.GetMeal(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, m)
}
