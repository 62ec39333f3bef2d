// Package gorm provides mapping between domain entities and GORM models
package gorm

import (
	"encoding/json"

	"github.com/deliveria/api/internal/domain/meal"
	"github.com/deliveria/api/internal/domain/order"
	"github.com/deliveria/api/internal/domain/user"
)

// MealToModel converts a domain meal to a GORM model
func MealToModel(m *meal.Meal) *MealModel {
	return &MealModel{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Nutrition:   NutritionField(m.Nutrition),
		Ingredients: StringSlice(m.Ingredients),
		ImageURL:    m.ImageURL,
		IsAvailable: m.Available,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ModelToMeal converts a GORM model to a domain meal
func ModelToMeal(model *MealModel) *meal.Meal {
	ingredients := []string(model.Ingredients)
	if ingredients == nil {
		ingredients = []string{}
	}
	return &meal.Meal{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		Price:       model.Price,
		Nutrition:   meal.Nutrition(model.Nutrition),
		Ingredients: ingredients,
		ImageURL:    model.ImageURL,
		Available:   model.IsAvailable,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// UserToModel converts a domain user to a GORM model
func UserToModel(u *user.User) (*UserModel, error) {
	prefs, err := toJSONField(u.Preferences())
	if err != nil {
		return nil, err
	}
	return &UserModel{
		ID:                  u.ID(),
		Email:               u.Email(),
		Name:                u.Name(),
		PasswordHash:        u.PasswordHash(),
		IsActive:            u.IsActive(),
		DietaryRestrictions: StringSlice(u.DietaryRestrictions()),
		Preferences:         prefs,
		CreatedAt:           u.CreatedAt(),
	}, nil
}

// ModelToUser converts a GORM model to a domain user
func ModelToUser(model *UserModel) (*user.User, error) {
	var prefs user.Preferences
	if err := fromJSONField(model.Preferences, &prefs); err != nil {
		return nil, err
	}
	return user.Reconstitute(
		model.ID,
		model.Email,
		model.Name,
		model.PasswordHash,
		model.IsActive,
		[]string(model.DietaryRestrictions),
		prefs,
		model.CreatedAt,
	), nil
}

// OrderToModel converts a domain order, items included, to a GORM model
func OrderToModel(o *order.Order) *OrderModel {
	model := &OrderModel{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          string(o.Status),
		TotalPrice:      o.TotalPrice,
		DeliveryAddress: o.DeliveryAddress,
		PaymentMethod:   string(o.PaymentMethod),
		PaymentStatus:   string(o.PaymentStatus),
		CreatedAt:       o.CreatedAt,
		Items:           make([]OrderItemModel, 0, len(o.Items)),
	}
	for _, item := range o.Items {
		model.Items = append(model.Items, OrderItemModel{
			ID:            item.ID,
			OrderID:       o.ID,
			MealID:        item.MealID,
			Quantity:      item.Quantity,
			Price:         item.Price,
			Customization: JSONField(item.Customization),
		})
	}
	return model
}

// ModelToOrder converts a GORM model to a domain order
func ModelToOrder(model *OrderModel) *order.Order {
	o := &order.Order{
		ID:              model.ID,
		UserID:          model.UserID,
		Status:          order.Status(model.Status),
		TotalPrice:      model.TotalPrice,
		DeliveryAddress: model.DeliveryAddress,
		PaymentMethod:   order.PaymentMethod(model.PaymentMethod),
		PaymentStatus:   order.PaymentStatus(model.PaymentStatus),
		CreatedAt:       model.CreatedAt,
		Items:           make([]order.Item, 0, len(model.Items)),
	}
	for _, item := range model.Items {
		var customization map[string]interface{}
		if len(item.Customization) > 0 {
			customization = map[string]interface{}(item.Customization)
		}
		o.Items = append(o.Items, order.Item{
			ID:            item.ID,
			MealID:        item.MealID,
			Quantity:      item.Quantity,
			Price:         item.Price,
			Customization: customization,
		})
	}
	return o
}

func toJSONField(v interface{}) (JSONField, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	field := JSONField{}
	if err := json.Unmarshal(data, &field); err != nil {
		return nil, err
	}
	return field, nil
}

func fromJSONField(field JSONField, v interface{}) error {
	if len(field) == 0 {
		return nil
	}
	data, err := json.Marshal(field)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
