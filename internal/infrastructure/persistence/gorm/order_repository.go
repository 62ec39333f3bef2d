package gorm

import (
	"context"
	"errors"

	"github.com/deliveria/api/internal/domain/order"
	"github.com/deliveria/api/internal/ports/outbound"
	"gorm.io/gorm"
)

// OrderRepository implements the order repository interface using GORM
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) outbound.OrderRepository {
	return &OrderRepository{db: db}
}

// Create stores the order and its items in one transaction and writes the
// generated IDs back onto the domain order.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	model := OrderToModel(o)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
	if err != nil {
		return err
	}

	o.ID = model.ID
	o.CreatedAt = model.CreatedAt
	for i := range o.Items {
		o.Items[i].ID = model.Items[i].ID
	}
	return nil
}

// FindByID loads an order with its items
func (r *OrderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel

	result := r.db.WithContext(ctx).Preload("Items").First(&model, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, result.Error
	}

	return ModelToOrder(&model), nil
}

// ListByUser returns a user's orders, newest first
func (r *OrderRepository) ListByUser(ctx context.Context, userID uint) ([]*order.Order, error) {
	var models []OrderModel

	result := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	orders := make([]*order.Order, 0, len(models))
	for i := range models {
		orders = append(orders, ModelToOrder(&models[i]))
	}
	return orders, nil
}

// UpdateStatus moves an order from one status to another. The write only
// lands while the stored status still equals from; otherwise it reports
// ErrInvalidStatusTransition, or ErrOrderNotFound when the row is gone.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uint, from, to order.Status) error {
	db := r.db.WithContext(ctx)

	result := db.Model(&OrderModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Update("status", string(to))

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&OrderModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return order.ErrOrderNotFound
		}
		return order.ErrInvalidStatusTransition
	}

	return nil
}
