// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"fmt"
	"math"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/deliveria/api/internal/domain/meal"
	"github.com/deliveria/api/internal/domain/order"
	"github.com/deliveria/api/internal/domain/user"
	"github.com/deliveria/api/internal/ports/inbound"
)

// DefaultPassword satisfies the account password rules.
const DefaultPassword = "SenhaForte123"

// Factory builds domain fixtures from a seeded faker so runs are repeatable.
type Factory struct {
	faker *gofakeit.Faker
}

// NewFactory creates a factory with a fixed seed
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

// Meal returns an available meal with the given ID and plausible macros.
func (f *Factory) Meal(id uint) *meal.Meal {
	name := f.faker.Dinner()
	return &meal.Meal{
		ID:          id,
		Name:        name,
		Description: f.faker.Sentence(8),
		Price:       math.Round(f.faker.Float64Range(20, 45)*100) / 100,
		Nutrition: meal.Nutrition{
			Calories: float64(f.faker.IntRange(250, 700)),
			Protein:  float64(f.faker.IntRange(10, 40)),
			Carbs:    float64(f.faker.IntRange(10, 70)),
			Fat:      float64(f.faker.IntRange(3, 25)),
		},
		Ingredients: []string{"arroz", "frango", "brocolis"},
		ImageURL:    "https://source.unsplash.com/random/800x600/?" + meal.Slug(name),
		Available:   true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

// User returns a persisted-looking user with DefaultPassword.
func (f *Factory) User(id uint) *user.User {
	u, err := user.NewUser(f.faker.Email(), f.faker.Name(), DefaultPassword, []string{"vegetarian"}, user.Preferences{
		CuisineType: "brasileira",
		SpiceLevel:  2,
	})
	if err != nil {
		panic(fmt.Sprintf("testutils: invalid generated user: %v", err))
	}
	u.AssignID(id)
	return u
}

// RegisterCommand returns a valid sign-up command.
func (f *Factory) RegisterCommand() inbound.RegisterUserCommand {
	return inbound.RegisterUserCommand{
		Email:               f.faker.Email(),
		Name:                f.faker.Name(),
		Password:            DefaultPassword,
		DietaryRestrictions: []string{"lactose_intolerant"},
	}
}

// Address returns a street address on one line.
func (f *Factory) Address() string {
	a := f.faker.Address()
	return fmt.Sprintf("%s, %s", a.Street, a.City)
}

// Order returns a pending order for userID with one line per meal.
func (f *Factory) Order(id, userID uint, meals ...*meal.Meal) *order.Order {
	items := make([]order.Item, 0, len(meals))
	for i, m := range meals {
		items = append(items, order.Item{
			ID:       uint(i + 1),
			MealID:   m.ID,
			Quantity: f.faker.IntRange(1, 3),
			Price:    m.Price,
		})
	}
	o, err := order.New(userID, f.Address(), order.PaymentPix, items)
	if err != nil {
		panic(fmt.Sprintf("testutils: invalid generated order: %v", err))
	}
	o.ID = id
	return o
}
