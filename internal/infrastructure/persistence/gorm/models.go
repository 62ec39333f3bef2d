// Package gorm provides GORM model definitions for the application
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// MealModel represents the GORM model for catalog meals
type MealModel struct {
	ID          uint           `gorm:"primaryKey;autoIncrement"`
	Name        string         `gorm:"type:varchar(255);not null;index"`
	Description string         `gorm:"type:text"`
	Price       float64        `gorm:"not null"`
	Nutrition   NutritionField `gorm:"column:nutritional_info;type:json"`
	Ingredients StringSlice    `gorm:"type:json"`
	ImageURL    string         `gorm:"type:varchar(512)"`
	IsAvailable bool           `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserModel represents the GORM model for users
type UserModel struct {
	ID                  uint        `gorm:"primaryKey;autoIncrement"`
	Email               string      `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name                string      `gorm:"type:varchar(255);not null"`
	PasswordHash        string      `gorm:"type:varchar(255);not null"`
	IsActive            bool        `gorm:"not null"`
	DietaryRestrictions StringSlice `gorm:"type:json"`
	Preferences         JSONField   `gorm:"type:json"`
	CreatedAt           time.Time
	UpdatedAt           time.Time

	// Relationships
	Orders []OrderModel `gorm:"foreignKey:UserID"`
}

// OrderModel represents the GORM model for orders
type OrderModel struct {
	ID              uint      `gorm:"primaryKey;autoIncrement"`
	UserID          uint      `gorm:"not null;index"`
	Status          string    `gorm:"type:varchar(20);default:'pending';index"`
	TotalPrice      float64   `gorm:"not null"`
	DeliveryAddress string    `gorm:"type:text;not null"`
	PaymentMethod   string    `gorm:"type:varchar(20);not null"`
	PaymentStatus   string    `gorm:"type:varchar(20);default:'pending'"`
	CreatedAt       time.Time `gorm:"index"`
	UpdatedAt       time.Time

	// Relationships
	Items []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItemModel represents one meal line of an order
type OrderItemModel struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	OrderID       uint      `gorm:"not null;index"`
	MealID        uint      `gorm:"not null;index"`
	Quantity      int       `gorm:"not null;default:1"`
	Price         float64   `gorm:"not null"`
	Customization JSONField `gorm:"type:json"`
}

// TableName methods for custom table names
func (MealModel) TableName() string {
	return "meals"
}

func (UserModel) TableName() string {
	return "users"
}

func (OrderModel) TableName() string {
	return "orders"
}

func (OrderItemModel) TableName() string {
	return "order_items"
}

// AllModels lists every model for AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&MealModel{},
		&UserModel{},
		&OrderModel{},
		&OrderItemModel{},
	}
}

// StringSlice custom type for handling string slices in JSON
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	return string(b), err
}

// JSONField custom type for handling JSON fields
type JSONField map[string]interface{}

// Scan implements the sql.Scanner interface
func (j *JSONField) Scan(value interface{}) error {
	if value == nil {
		*j = JSONField{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("cannot scan %T into JSONField", value)
	}
}

// Value implements the driver.Valuer interface
func (j JSONField) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(j)
	return string(b), err
}

// NutritionField stores the four macros as a JSON object
type NutritionField struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Scan implements the sql.Scanner interface
func (n *NutritionField) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*n = NutritionField{}
		return nil
	case []byte:
		return json.Unmarshal(v, n)
	case string:
		return json.Unmarshal([]byte(v), n)
	default:
		return fmt.Errorf("cannot scan %T into NutritionField", value)
	}
}

// Value implements the driver.Valuer interface
func (n NutritionField) Value() (driver.Value, error) {
	b, err := json.Marshal(n)
	return string(b), err
}
