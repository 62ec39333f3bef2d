package handlers

import (
	"net/http"

	"github.com/deliveria/api/internal/domain/order"
	"github.com/deliveria/api/internal/domain/user"
	"github.com/deliveria/api/internal/ports/inbound"
	apperrors "github.com/deliveria/api/pkg/errors"
	"github.com/gin-gonic/gin"
)

// RegisterUserBody is the payload of POST /api/users.
type RegisterUserBody struct {
	Email               string           `json:"email" binding:"required,email"`
	Name                string           `json:"name" binding:"required"`
	Password            string           `json:"password" binding:"required,min=8"`
	DietaryRestrictions []string         `json:"dietary_restrictions"`
	Preferences         user.Preferences `json:"preferences"`
}

type orderItemBody struct {
	MealID        uint                   `json:"meal_id" binding:"required"`
	Quantity      int                    `json:"quantity" binding:"required,min=1"`
	Customization map[string]interface{} `json:"customization"`
}

// PlaceOrderBody is the payload of POST /api/orders.
type PlaceOrderBody struct {
	UserID          uint            `json:"user_id" binding:"required"`
	DeliveryAddress string          `json:"delivery_address" binding:"required"`
	PaymentMethod   string          `json:"payment_method" binding:"omitempty,oneof=pix credit_card cash"`
	Items           []orderItemBody `json:"items" binding:"required,min=1,dive"`
}

// StatusBody is the payload of PATCH /api/orders/:id/status.
type StatusBody struct {
	Status string `json:"status" binding:"required"`
}

// RegisterUser handles POST /api/users
func (h *Handlers) RegisterUser(c *gin.Context) {
	var body RegisterUserBody
	if !bind(c, &body) {
		return
	}

	dto, err := h.users.Register(c.Request.Context(), inbound.RegisterUserCommand{
		Email:               body.Email,
		Name:                body.Name,
		Password:            body.Password,
		DietaryRestrictions: body.DietaryRestrictions,
		Preferences:         body.Preferences,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, dto)
}

// GetUser handles GET /api/users/:id
func (h *Handlers) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	dto, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// ListUserOrders handles GET /api/users/:id/orders
func (h *Handlers) ListUserOrders(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	orders, err := h.orders.ListUserOrders(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// PlaceOrder handles POST /api/orders
func (h *Handlers) PlaceOrder(c *gin.Context) {
	var body PlaceOrderBody
	if !bind(c, &body) {
		return
	}

	cmd := inbound.PlaceOrderCommand{
		UserID:          body.UserID,
		DeliveryAddress: body.DeliveryAddress,
		PaymentMethod:   body.PaymentMethod,
		Items:           make([]inbound.OrderLine, 0, len(body.Items)),
	}
	for _, item := range body.Items {
		cmd.Items = append(cmd.Items, inbound.OrderLine{
			MealID:        item.MealID,
			Quantity:      item.Quantity,
			Customization: item.Customization,
		})
	}

	o, err := h.orders.PlaceOrder(c.Request.Context(), cmd)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

// GetOrder handles GET /api/orders/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	o, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// AdvanceOrderStatus handles PATCH /api/orders/:id/status
func (h *Handlers) AdvanceOrderStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body StatusBody
	if !bind(c, &body) {
		return
	}

	status, err := order.ParseStatus(body.Status)
	if err != nil {
		_ = c.Error(apperrors.NewValidationError("status must be one of: pending, preparing, delivering, delivered"))
		return
	}

	o, err := h.orders.AdvanceStatus(c.Request.Context(), id, status)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, o)
}
