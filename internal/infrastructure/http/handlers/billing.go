package handlers

import (
	"net/http"

	"github.com/deliveria/api/internal/ports/inbound"
	"github.com/gin-gonic/gin"
)

// PixBody is the payload of POST /api/payment/pix.
type PixBody struct {
	OrderID     *int     `json:"order_id" binding:"required"`
	Amount      *float64 `json:"amount" binding:"required"`
	Description string   `json:"description" binding:"required"`
}

// CashbackBody is the payload of POST /api/loyalty/cashback.
type CashbackBody struct {
	UserID  *int     `json:"user_id" binding:"required"`
	OrderID *int     `json:"order_id" binding:"required"`
	Amount  *float64 `json:"amount" binding:"required"`
}

// CreatePix handles POST /api/payment/pix
func (h *Handlers) CreatePix(c *gin.Context) {
	var body PixBody
	if !bind(c, &body) {
		return
	}

	charge, err := h.billing.CreatePixCharge(c.Request.Context(), inbound.PixCommand{
		OrderID:     *body.OrderID,
		Amount:      *body.Amount,
		Description: body.Description,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, charge)
}

// ApplyCashback handles POST /api/loyalty/cashback
func (h *Handlers) ApplyCashback(c *gin.Context) {
	var body CashbackBody
	if !bind(c, &body) {
		return
	}

	cb, err := h.billing.ApplyCashback(c.Request.Context(), inbound.CashbackCommand{
		UserID:  *body.UserID,
		OrderID: *body.OrderID,
		Amount:  *body.Amount,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, cb)
}
