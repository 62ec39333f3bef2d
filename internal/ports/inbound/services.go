// Package inbound defines the use cases exposed to driving adapters such as
// the HTTP handlers.
package inbound

import (
	"context"
	"time"

	"github.com/deliveria/api/internal/domain/delivery"
	"github.com/deliveria/api/internal/domain/meal"
	"github.com/deliveria/api/internal/domain/order"
	"github.com/deliveria/api/internal/domain/user"
	"github.com/deliveria/api/internal/ports/outbound"
)

// Advisor answers the AI-assisted use cases. Every method degrades to a
// deterministic fallback when the generative path fails, so the only errors
// returned are validation errors or unexpected internal failures.
type Advisor interface {
	Recommend(ctx context.Context, req meal.RecommendationRequest) ([]meal.Recommendation, error)
	AnalyzeNutrition(ctx context.Context, ingredients []string) (meal.Nutrition, error)
	OptimizeRoute(ctx context.Context, start delivery.Coordinates, points []delivery.Point) (*delivery.Route, error)
	CustomMenu(ctx context.Context, req meal.MenuRequest) ([]meal.MenuItem, error)
	// Passthrough forwards a raw prompt; it fails when no gateway is configured.
	Passthrough(ctx context.Context, prompt string, opts outbound.GenerateOptions) (string, error)
}

// CatalogService serves the persisted meal catalog.
type CatalogService interface {
	ListAvailable(ctx context.Context) ([]*meal.Meal, error)
	GetMeal(ctx context.Context, id uint) (*meal.Meal, error)
}

// UserService manages diner accounts.
type UserService interface {
	Register(ctx context.Context, cmd RegisterUserCommand) (*UserDTO, error)
	GetUser(ctx context.Context, id uint) (*UserDTO, error)
}

// OrderService places and tracks orders.
type OrderService interface {
	PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (*order.Order, error)
	GetOrder(ctx context.Context, id uint) (*order.Order, error)
	ListUserOrders(ctx context.Context, userID uint) ([]*order.Order, error)
	AdvanceStatus(ctx context.Context, id uint, status order.Status) (*order.Order, error)
}

// BillingService runs the side-effect free payment simulations.
type BillingService interface {
	CreatePixCharge(ctx context.Context, cmd PixCommand) (*PixCharge, error)
	ApplyCashback(ctx context.Context, cmd CashbackCommand) (*Cashback, error)
}

// RegisterUserCommand carries the sign-up form.
type RegisterUserCommand struct {
	Email               string
	Name                string
	Password            string
	DietaryRestrictions []string
	Preferences         user.Preferences
}

// UserDTO is the public view of an account; it never carries the password hash.
type UserDTO struct {
	ID                  uint             `json:"id"`
	Email               string           `json:"email"`
	Name                string           `json:"name"`
	IsActive            bool             `json:"is_active"`
	DietaryRestrictions []string         `json:"dietary_restrictions"`
	Preferences         user.Preferences `json:"preferences"`
	CreatedAt           time.Time        `json:"created_at"`
}

// PlaceOrderCommand carries a new order.
type PlaceOrderCommand struct {
	UserID          uint
	DeliveryAddress string
	PaymentMethod   string
	Items           []OrderLine
}

// OrderLine is one requested meal.
type OrderLine struct {
	MealID        uint
	Quantity      int
	Customization map[string]interface{}
}

type PixCommand struct {
	OrderID     int
	Amount      float64
	Description string
}

// PixCharge is a simulated instant-payment charge.
type PixCharge struct {
	OrderID    int     `json:"order_id"`
	Amount     float64 `json:"amount"`
	PixKey     string  `json:"pix_key"`
	QRCodeURL  string  `json:"qr_code_url"`
	Expiration int     `json:"expiration"`
	Status     string  `json:"status"`
}

type CashbackCommand struct {
	UserID  int
	OrderID int
	Amount  float64
}

// Cashback is a simulated loyalty credit.
type Cashback struct {
	UserID         int     `json:"user_id"`
	OrderID        int     `json:"order_id"`
	OriginalAmount float64 `json:"original_amount"`
	CashbackAmount float64 `json:"cashback_amount"`
	Status         string  `json:"status"`
}
