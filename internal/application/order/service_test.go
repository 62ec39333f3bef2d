package order

import (
	"context"
	"errors"
	"testing"

	"github.com/deliveria/api/internal/domain/meal"
	"github.com/deliveria/api/internal/domain/order"
	"github.com/deliveria/api/internal/domain/user"
	"github.com/deliveria/api/internal/ports/inbound"
	apperrors "github.com/deliveria/api/pkg/errors"
	"github.com/deliveria/api/test/testutils"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

type OrderServiceTestSuite struct {
	suite.Suite
	orders  *testutils.MockOrderRepository
	meals   *testutils.MockMealRepository
	users   *testutils.MockUserRepository
	factory *testutils.Factory
	service *Service
	ctx     context.Context
}

func (s *OrderServiceTestSuite) SetupTest() {
	s.orders = new(testutils.MockOrderRepository)
	s.meals = new(testutils.MockMealRepository)
	s.users = new(testutils.MockUserRepository)
	s.factory = testutils.NewFactory(7)
	s.service = NewService(s.orders, s.meals, s.users, zaptest.NewLogger(s.T()))
	s.ctx = context.Background()
}

func (s *OrderServiceTestSuite) TestPlaceOrder_SnapshotsPricesAndTotals() {
	m1 := s.factory.Meal(1)
	m1.Price = 35.90
	m2 := s.factory.Meal(2)
	m2.Price = 29.90

	s.users.On("FindByID", s.ctx, uint(3)).Return(s.factory.User(3), nil).Once()
	s.meals.On("FindByIDs", s.ctx, []uint{1, 2}).Return(map[uint]*meal.Meal{1: m1, 2: m2}, nil).Once()
	s.orders.On("Create", s.ctx, mock.AnythingOfType("*order.Order")).Return(nil, uint(50)).Once()

	o, err := s.service.PlaceOrder(s.ctx, inbound.PlaceOrderCommand{
		UserID:          3,
		DeliveryAddress: "Rua das Flores, 100",
		Items: []inbound.OrderLine{
			{MealID: 1, Quantity: 2},
			{MealID: 2, Quantity: 1, Customization: map[string]interface{}{"sem_cebola": true}},
		},
	})

	s.Require().NoError(err)
	s.Equal(uint(50), o.ID)
	s.Equal(order.StatusPending, o.Status)
	s.Equal(order.PaymentPending, o.PaymentStatus)
	s.Equal(order.PaymentPix, o.PaymentMethod)
	s.InDelta(101.70, o.TotalPrice, 0.0001)
	s.Equal(35.90, o.Items[0].Price)
	s.Equal(true, o.Items[1].Customization["sem_cebola"])
}

func (s *OrderServiceTestSuite) TestPlaceOrder_UnavailableMeal() {
	m := s.factory.Meal(1)
	m.Available = false

	s.users.On("FindByID", s.ctx, uint(3)).Return(s.factory.User(3), nil).Once()
	s.meals.On("FindByIDs", s.ctx, []uint{1}).Return(map[uint]*meal.Meal{1: m}, nil).Once()

	_, err := s.service.PlaceOrder(s.ctx, inbound.PlaceOrderCommand{
		UserID: 3, DeliveryAddress: "Rua A", Items: []inbound.OrderLine{{MealID: 1, Quantity: 1}},
	})

	s.Equal(apperrors.CodeMealUnavailable, apperrors.GetCode(err))
	s.orders.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *OrderServiceTestSuite) TestPlaceOrder_UnknownMeal() {
	s.users.On("FindByID", s.ctx, uint(3)).Return(s.factory.User(3), nil).Once()
	s.meals.On("FindByIDs", s.ctx, []uint{9}).Return(map[uint]*meal.Meal{}, nil).Once()

	_, err := s.service.PlaceOrder(s.ctx, inbound.PlaceOrderCommand{
		UserID: 3, DeliveryAddress: "Rua A", Items: []inbound.OrderLine{{MealID: 9, Quantity: 1}},
	})

	s.Equal(apperrors.CodeMealNotFound, apperrors.GetCode(err))
}

func (s *OrderServiceTestSuite) TestPlaceOrder_UnknownUser() {
	s.users.On("FindByID", s.ctx, uint(8)).Return(nil, user.ErrUserNotFound).Once()

	_, err := s.service.PlaceOrder(s.ctx, inbound.PlaceOrderCommand{
		UserID: 8, DeliveryAddress: "Rua A", Items: []inbound.OrderLine{{MealID: 1, Quantity: 1}},
	})

	s.Equal(apperrors.CodeUserNotFound, apperrors.GetCode(err))
}

func (s *OrderServiceTestSuite) TestPlaceOrder_ValidationFailures() {
	cases := map[string]inbound.PlaceOrderCommand{
		"no items":       {UserID: 3, DeliveryAddress: "Rua A"},
		"bad payment":    {UserID: 3, DeliveryAddress: "Rua A", PaymentMethod: "boleto", Items: []inbound.OrderLine{{MealID: 1, Quantity: 1}}},
		"zero quantity":  {UserID: 3, DeliveryAddress: "Rua A", Items: []inbound.OrderLine{{MealID: 1, Quantity: 0}}},
		"missing street": {UserID: 3, Items: []inbound.OrderLine{{MealID: 1, Quantity: 1}}},
	}

	s.users.On("FindByID", s.ctx, uint(3)).Return(s.factory.User(3), nil)
	s.meals.On("FindByIDs", s.ctx, []uint{1}).Return(map[uint]*meal.Meal{1: s.factory.Meal(1)}, nil)

	for name, cmd := range cases {
		s.Run(name, func() {
			_, err := s.service.PlaceOrder(s.ctx, cmd)
			s.Equal(apperrors.CodeValidationFailed, apperrors.GetCode(err))
		})
	}
}

func (s *OrderServiceTestSuite) TestGetOrder() {
	o := s.factory.Order(4, 3, s.factory.Meal(1))
	s.orders.On("FindByID", s.ctx, uint(4)).Return(o, nil).Once()
	s.orders.On("FindByID", s.ctx, uint(5)).Return(nil, order.ErrOrderNotFound).Once()

	got, err := s.service.GetOrder(s.ctx, 4)
	s.Require().NoError(err)
	s.Equal(o, got)

	_, err = s.service.GetOrder(s.ctx, 5)
	s.Equal(apperrors.CodeOrderNotFound, apperrors.GetCode(err))
}

func (s *OrderServiceTestSuite) TestListUserOrders_EmptyIsNotNil() {
	s.users.On("FindByID", s.ctx, uint(3)).Return(s.factory.User(3), nil).Once()
	s.orders.On("ListByUser", s.ctx, uint(3)).Return(nil, nil).Once()

	got, err := s.service.ListUserOrders(s.ctx, 3)

	s.Require().NoError(err)
	s.NotNil(got)
	s.Empty(got)
}

func (s *OrderServiceTestSuite) TestAdvanceStatus() {
	o := s.factory.Order(4, 3, s.factory.Meal(1))
	s.orders.On("FindByID", s.ctx, uint(4)).Return(o, nil).Once()
	s.orders.On("UpdateStatus", s.ctx, uint(4), order.StatusPending, order.StatusPreparing).Return(nil).Once()

	got, err := s.service.AdvanceStatus(s.ctx, 4, order.StatusPreparing)

	s.Require().NoError(err)
	s.Equal(order.StatusPreparing, got.Status)
	s.orders.AssertExpectations(s.T())
}

func (s *OrderServiceTestSuite) TestAdvanceStatus_SkippingAStepIsRejected() {
	o := s.factory.Order(4, 3, s.factory.Meal(1))
	s.orders.On("FindByID", s.ctx, uint(4)).Return(o, nil).Once()

	_, err := s.service.AdvanceStatus(s.ctx, 4, order.StatusDelivered)

	s.Equal(apperrors.CodeInvalidTransition, apperrors.GetCode(err))
	s.orders.AssertNotCalled(s.T(), "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *OrderServiceTestSuite) TestAdvanceStatus_StorageFailure() {
	o := s.factory.Order(4, 3, s.factory.Meal(1))
	s.orders.On("FindByID", s.ctx, uint(4)).Return(o, nil).Once()
	s.orders.On("UpdateStatus", s.ctx, uint(4), order.StatusPending, order.StatusPreparing).Return(errors.New("db down")).Once()

	_, err := s.service.AdvanceStatus(s.ctx, 4, order.StatusPreparing)

	s.Equal(apperrors.CodeInternal, apperrors.GetCode(err))
}

func (s *OrderServiceTestSuite) TestAdvanceStatus_ConcurrentChangeIsRejected() {
	stale := s.factory.Order(4, 3, s.factory.Meal(1))
	current := s.factory.Order(4, 3, s.factory.Meal(1))
	current.Status = order.StatusDelivering

	s.orders.On("FindByID", s.ctx, uint(4)).Return(stale, nil).Once()
	s.orders.On("UpdateStatus", s.ctx, uint(4), order.StatusPending, order.StatusPreparing).
		Return(order.ErrInvalidStatusTransition).Once()
	s.orders.On("FindByID", s.ctx, uint(4)).Return(current, nil).Once()

	_, err := s.service.AdvanceStatus(s.ctx, 4, order.StatusPreparing)

	s.Equal(apperrors.CodeInvalidTransition, apperrors.GetCode(err))
	s.Contains(err.Error(), "delivering")
	s.orders.AssertExpectations(s.T())
}

func (s *OrderServiceTestSuite) TestAdvanceStatus_OrderRemovedMeanwhile() {
	o := s.factory.Order(4, 3, s.factory.Meal(1))
	s.orders.On("FindByID", s.ctx, uint(4)).Return(o, nil).Once()
	s.orders.On("UpdateStatus", s.ctx, uint(4), order.StatusPending, order.StatusPreparing).
		Return(order.ErrOrderNotFound).Once()

	_, err := s.service.AdvanceStatus(s.ctx, 4, order.StatusPreparing)

	s.Equal(apperrors.CodeOrderNotFound, apperrors.GetCode(err))
}

func TestOrderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}
