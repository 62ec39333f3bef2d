// Package order implements order placement and status tracking.
package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/deliveria/api/internal/domain/order"
	"github.com/deliveria/api/internal/domain/user"
	"github.com/deliveria/api/internal/ports/inbound"
	"github.com/deliveria/api/internal/ports/outbound"
	apperrors "github.com/deliveria/api/pkg/errors"
	"go.uber.org/zap"
)

// Service implements inbound.OrderService.
type Service struct {
	orders outbound.OrderRepository
	meals  outbound.MealRepository
	users  outbound.UserRepository
	logger *zap.Logger
}

var _ inbound.OrderService = (*Service)(nil)

// NewService creates an order service.
func NewService(orders outbound.OrderRepository, meals outbound.MealRepository, users outbound.UserRepository, logger *zap.Logger) *Service {
	return &Service{
		orders: orders,
		meals:  meals,
		users:  users,
		logger: logger.Named("order-service"),
	}
}

// PlaceOrder validates the diner and the meals, snapshots current prices and
// stores a pending order.
func (s *Service) PlaceOrder(ctx context.Context, cmd inbound.PlaceOrderCommand) (*order.Order, error) {
	method, err := order.ParsePaymentMethod(cmd.PaymentMethod)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("payment_method: %v", err))
	}
	if len(cmd.Items) == 0 {
		return nil, apperrors.NewValidationError(order.ErrNoItems.Error())
	}

	if _, err := s.users.FindByID(ctx, cmd.UserID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, apperrors.NewUserNotFoundError(cmd.UserID)
		}
		return nil, apperrors.NewInternalError("failed to load user").WithCause(err)
	}

	ids := make([]uint, 0, len(cmd.Items))
	for _, line := range cmd.Items {
		ids = append(ids, line.MealID)
	}
	meals, err := s.meals.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load meals").WithCause(err)
	}

	items := make([]order.Item, 0, len(cmd.Items))
	for _, line := range cmd.Items {
		m, ok := meals[line.MealID]
		if !ok {
			return nil, apperrors.NewMealNotFoundError(line.MealID)
		}
		if !m.Available {
			return nil, apperrors.NewMealUnavailableError(line.MealID)
		}
		items = append(items, order.Item{
			MealID:        m.ID,
			Quantity:      line.Quantity,
			Price:         m.Price,
			Customization: line.Customization,
		})
	}

	o, err := order.New(cmd.UserID, cmd.DeliveryAddress, method, items)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, apperrors.NewInternalError("failed to create order").WithCause(err)
	}

	s.logger.Info("Order placed",
		zap.Uint("order_id", o.ID),
		zap.Uint("user_id", o.UserID),
		zap.Float64("total_price", o.TotalPrice),
	)
	return o, nil
}

// GetOrder loads one order with its items.
func (s *Service) GetOrder(ctx context.Context, id uint) (*order.Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return nil, apperrors.NewOrderNotFoundError(id)
		}
		return nil, apperrors.NewInternalError("failed to load order").WithCause(err)
	}
	return o, nil
}

// ListUserOrders returns a diner's orders, newest first.
func (s *Service) ListUserOrders(ctx context.Context, userID uint) ([]*order.Order, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, apperrors.NewUserNotFoundError(userID)
		}
		return nil, apperrors.NewInternalError("failed to load user").WithCause(err)
	}

	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list orders").WithCause(err)
	}
	if orders == nil {
		orders = []*order.Order{}
	}
	return orders, nil
}

// AdvanceStatus moves an order exactly one step forward.
func (s *Service) AdvanceStatus(ctx context.Context, id uint, status order.Status) (*order.Order, error) {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	from := o.Status
	if err := o.Advance(status); err != nil {
		return nil, apperrors.NewInvalidTransitionError(string(from), string(status))
	}

	if err := s.orders.UpdateStatus(ctx, id, from, status); err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			return nil, apperrors.NewOrderNotFoundError(id)
		case errors.Is(err, order.ErrInvalidStatusTransition):
			// Another request moved the order after it was read.
			current, err := s.GetOrder(ctx, id)
			if err != nil {
				return nil, err
			}
			return nil, apperrors.NewInvalidTransitionError(string(current.Status), string(status))
		}
		return nil, apperrors.NewInternalError("failed to update order").WithCause(err)
	}

	s.logger.Info("Order status advanced",
		zap.Uint("order_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(status)),
	)
	return o, nil
}
