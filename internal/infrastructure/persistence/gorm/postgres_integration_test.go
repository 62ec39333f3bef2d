//go:build integration

package gorm

import (
	"context"
	"testing"
	"time"

	"github.com/deliveria/api/internal/domain/meal"
	"github.com/deliveria/api/internal/domain/order"
	"github.com/deliveria/api/internal/domain/user"
	"github.com/deliveria/api/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestRepositories_Postgres(t *testing.T) {
	ctx := context.Background()
	pg := testutils.SetupTestDatabase(t)

	db, err := gorm.Open(postgres.Open(pg.DSN), &gorm.Config{
		Logger:         NewLogger(zaptest.NewLogger(t), "warn", time.Second),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(AllModels()...))

	meals := NewMealRepository(db)
	users := NewUserRepository(db)
	orders := NewOrderRepository(db)

	require.NoError(t, SeedCatalog(ctx, meals, meal.DefaultKnowledge(), zaptest.NewLogger(t)))
	available, err := meals.ListAvailable(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, available)

	u, err := user.NewUser("postgres@example.com", "Paula", testutils.DefaultPassword, nil, user.Preferences{})
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, u))

	dup, err := user.NewUser("postgres@example.com", "Outra", testutils.DefaultPassword, nil, user.Preferences{})
	require.NoError(t, err)
	assert.ErrorIs(t, users.Create(ctx, dup), user.ErrEmailTaken)

	o, err := order.New(u.ID(), "Av. Paulista, 1000", order.PaymentPix, []order.Item{
		{MealID: available[0].ID, Quantity: 2, Price: available[0].Price},
	})
	require.NoError(t, err)
	require.NoError(t, orders.Create(ctx, o))
	require.NoError(t, orders.UpdateStatus(ctx, o.ID, order.StatusPending, order.StatusPreparing))

	list, err := orders.ListByUser(ctx, u.ID())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, order.StatusPreparing, list[0].Status)
	assert.Len(t, list[0].Items, 1)
}
