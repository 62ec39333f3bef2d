// Package order defines orders and their delivery lifecycle.
package order

import (
	"errors"
	"math"
	"time"
)

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrNoItems                 = errors.New("order must contain at least one item")
	ErrInvalidQuantity         = errors.New("item quantity must be at least 1")
	ErrAddressRequired         = errors.New("delivery address is required")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrUnknownStatus           = errors.New("unknown order status")
	ErrUnknownPaymentMethod    = errors.New("unknown payment method")
)

// Status is the delivery progress of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusPreparing  Status = "preparing"
	StatusDelivering Status = "delivering"
	StatusDelivered  Status = "delivered"
)

// next holds the only forward move allowed from each status.
var next = map[Status]Status{
	StatusPending:    StatusPreparing,
	StatusPreparing:  StatusDelivering,
	StatusDelivering: StatusDelivered,
}

// ParseStatus validates a status name.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusPreparing, StatusDelivering, StatusDelivered:
		return Status(s), nil
	}
	return "", ErrUnknownStatus
}

// CanTransitionTo reports whether to is the single next step after s.
func (s Status) CanTransitionTo(to Status) bool {
	return next[s] == to
}

// PaymentMethod is how the diner pays.
type PaymentMethod string

const (
	PaymentPix        PaymentMethod = "pix"
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentCash       PaymentMethod = "cash"
)

// ParsePaymentMethod validates a payment method, defaulting empty input to pix.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case "":
		return PaymentPix, nil
	case PaymentPix, PaymentCreditCard, PaymentCash:
		return PaymentMethod(s), nil
	}
	return "", ErrUnknownPaymentMethod
}

// PaymentStatus tracks settlement of the order.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// Item is one meal line of an order. Price is the unit price captured when
// the order was placed.
type Item struct {
	ID            uint                   `json:"id"`
	MealID        uint                   `json:"meal_id"`
	Quantity      int                    `json:"quantity"`
	Price         float64                `json:"price"`
	Customization map[string]interface{} `json:"customization,omitempty"`
}

// Subtotal is unit price times quantity.
func (i Item) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Order is a placed order.
type Order struct {
	ID              uint          `json:"id"`
	UserID          uint          `json:"user_id"`
	Status          Status        `json:"status"`
	TotalPrice      float64       `json:"total_price"`
	DeliveryAddress string        `json:"delivery_address"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	Items           []Item        `json:"items"`
	CreatedAt       time.Time     `json:"created_at"`
}

// New builds a pending order and computes its total.
func New(userID uint, address string, method PaymentMethod, items []Item) (*Order, error) {
	if address == "" {
		return nil, ErrAddressRequired
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	var total float64
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		total += item.Subtotal()
	}

	return &Order{
		UserID:          userID,
		Status:          StatusPending,
		TotalPrice:      math.Round(total*100) / 100,
		DeliveryAddress: address,
		PaymentMethod:   method,
		PaymentStatus:   PaymentPending,
		Items:           items,
		CreatedAt:       time.Now(),
	}, nil
}

// Advance moves the order one step along its lifecycle.
func (o *Order) Advance(to Status) error {
	if !o.Status.CanTransitionTo(to) {
		return ErrInvalidStatusTransition
	}
	o.Status = to
	return nil
}
