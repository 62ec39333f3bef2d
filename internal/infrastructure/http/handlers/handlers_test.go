package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/deliveria/api/internal/application/billing"
	"github.com/deliveria/api/internal/application/catalog"
	"github.com/deliveria/api/internal/application/order"
	"github.com/deliveria/api/internal/application/recommendation"
	"github.com/deliveria/api/internal/application/user"
	"github.com/deliveria/api/internal/domain/delivery"
	"github.com/deliveria/api/internal/domain/meal"
	domainorder "github.com/deliveria/api/internal/domain/order"
	domainuser "github.com/deliveria/api/internal/domain/user"
	"github.com/deliveria/api/internal/infrastructure/config"
	"github.com/deliveria/api/internal/infrastructure/http/middleware"
	"github.com/deliveria/api/internal/ports/inbound"
	"github.com/deliveria/api/internal/ports/outbound"
	apperrors "github.com/deliveria/api/pkg/errors"
	"github.com/deliveria/api/test/testutils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

type HandlersTestSuite struct {
	suite.Suite

	meals     *testutils.MockMealRepository
	users     *testutils.MockUserRepository
	orders    *testutils.MockOrderRepository
	generator *testutils.MockTextGenerator
	factory   *testutils.Factory
	http      *testutils.HTTPAssertions

	router *gin.Engine
	online *gin.Engine
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func (suite *HandlersTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	logger := zaptest.NewLogger(suite.T())

	suite.meals = new(testutils.MockMealRepository)
	suite.users = new(testutils.MockUserRepository)
	suite.orders = new(testutils.MockOrderRepository)
	suite.generator = new(testutils.MockTextGenerator)
	suite.factory = testutils.NewFactory(42)
	suite.http = testutils.NewHTTPAssertions(suite.T())

	catalogSvc := catalog.NewService(suite.meals, nil, time.Minute, logger)
	userSvc := user.NewService(suite.users, logger)
	orderSvc := order.NewService(suite.orders, suite.meals, suite.users, logger)
	billingSvc := billing.NewService(0.10, logger)

	build := func(gateway outbound.TextGenerator) *gin.Engine {
		advisor := recommendation.NewService(gateway, meal.DefaultKnowledge(), logger,
			recommendation.WithRandomSource(recommendation.NewRandomSource(7)))
		h := NewHandlers(advisor, catalogSvc, userSvc, orderSvc, billingSvc, logger)

		mw := middleware.New(&config.Config{}, logger)
		suite.T().Cleanup(mw.Close)

		r := gin.New()
		r.Use(mw.Recovery(), mw.RequestID(), mw.Security(), mw.ErrorHandler())
		r.NoRoute(mw.NotFound())
		h.RegisterRoutes(r)
		return r
	}

	suite.router = build(nil)
	suite.online = build(suite.generator)
}

func (suite *HandlersTestSuite) TearDownTest() {
	suite.meals.AssertExpectations(suite.T())
	suite.users.AssertExpectations(suite.T())
	suite.orders.AssertExpectations(suite.T())
	suite.generator.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func (suite *HandlersTestSuite) TestRoot() {
	rec := suite.do(suite.router, http.MethodGet, "/", "")

	suite.http.StatusCode(rec, http.StatusOK)
	suite.http.SecurityHeaders(rec)
	var body map[string]string
	suite.http.JSONResponse(rec, &body)
	assert.Equal(suite.T(), "Bem-vindo à API do DeliverIA", body["message"])
}

func (suite *HandlersTestSuite) TestAnalyzeNutritionOffline() {
	rec := suite.do(suite.router, http.MethodPost, "/api/nutrition/analyze", `["frango","quinoa"]`)

	suite.http.StatusCode(rec, http.StatusOK)
	var n meal.Nutrition
	suite.http.JSONResponse(rec, &n)
	assert.InDelta(suite.T(), 285, n.Calories, 1e-9)
	assert.InDelta(suite.T(), 35.4, n.Protein, 1e-9)
	assert.InDelta(suite.T(), 21.3, n.Carbs, 1e-9)
	assert.InDelta(suite.T(), 5.5, n.Fat, 1e-9)
}

func (suite *HandlersTestSuite) TestAnalyzeNutritionEmptyList() {
	rec := suite.do(suite.router, http.MethodPost, "/api/nutrition/analyze", `[]`)

	suite.http.StatusCode(rec, http.StatusOK)
	assert.JSONEq(suite.T(), `{"calories":0,"protein":0,"carbs":0,"fat":0}`, rec.Body.String())
}

func (suite *HandlersTestSuite) TestAnalyzeNutritionRejectsObject() {
	rec := suite.do(suite.router, http.MethodPost, "/api/nutrition/analyze", `{"ingredients":["frango"]}`)

	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
}

func (suite *HandlersTestSuite) TestRecommendVeganExcludesAnimalProtein() {
	body := `{
		"preferences": {"cuisine_type": "brasileira", "spice_level": 2, "preferred_protein": []},
		"dietary_restrictions": ["vegano"],
		"calories_range": [300, 500]
	}`
	rec := suite.do(suite.router, http.MethodPost, "/api/recommendations", body)

	suite.http.StatusCode(rec, http.StatusOK)
	var recs []meal.Recommendation
	suite.http.JSONResponse(rec, &recs)
	for _, r := range recs {
		assert.NotContains(suite.T(), r.Ingredients, "frango", r.Name)
		assert.NotContains(suite.T(), r.Ingredients, "salmao", r.Name)
		assert.GreaterOrEqual(suite.T(), r.Nutrition.Calories, 300.0)
		assert.LessOrEqual(suite.T(), r.Nutrition.Calories, 500.0)
		assert.NotEmpty(suite.T(), r.Explanation)
		assert.Greater(suite.T(), r.Price, 0.0)
	}
}

func (suite *HandlersTestSuite) TestRecommendInvertedRangeIsEmpty() {
	body := `{"preferences": {}, "dietary_restrictions": [], "calories_range": [600, 300]}`
	rec := suite.do(suite.router, http.MethodPost, "/api/recommendations", body)

	suite.http.StatusCode(rec, http.StatusOK)
	assert.JSONEq(suite.T(), `[]`, rec.Body.String())
}

func (suite *HandlersTestSuite) TestRecommendValidation() {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing range", `{"preferences": {}}`, "calories_range"},
		{"range of three", `{"preferences": {}, "calories_range": [1, 2, 3]}`, "calories_range"},
		{"spice too hot", `{"preferences": {"spice_level": 9}, "calories_range": [300, 500]}`, "preferences.spice_level"},
		{"zero limit", `{"preferences": {}, "calories_range": [300, 500], "limit": 0}`, "limit"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			rec := suite.do(suite.router, http.MethodPost, "/api/recommendations", tt.body)

			resp := suite.http.ErrorResponse(rec, http.StatusBadRequest, apperrors.CodeValidationFailed)
			assert.Contains(suite.T(), resp.Error.Details, tt.field)
		})
	}
}

func (suite *HandlersTestSuite) TestRecommendMalformedJSON() {
	rec := suite.do(suite.router, http.MethodPost, "/api/recommendations", `{"preferences":`)

	suite.http.ErrorResponse(rec, http.StatusBadRequest, apperrors.CodeBadRequest)
}

func (suite *HandlersTestSuite) TestOptimizeRouteOffline() {
	body := `{
		"starting_point": {"lat": -23.55, "lng": -46.63},
		"delivery_points": [
			{"address": "Rua A, 1", "lat": -23.56, "lng": -46.64, "order_id": 10, "customer_name": "Ana"},
			{"address": "Rua B, 2", "lat": -23.57, "lng": -46.65, "order_id": 11, "customer_name": "Bruno"}
		]
	}`
	rec := suite.do(suite.router, http.MethodPost, "/api/delivery/optimize-route", body)

	suite.http.StatusCode(rec, http.StatusOK)
	var route delivery.Route
	suite.http.JSONResponse(rec, &route)
	require.Len(suite.T(), route.OptimizedRoute, 2)
	assert.Equal(suite.T(), 10, route.OptimizedRoute[0].OrderID)
	assert.Equal(suite.T(), 11, route.OptimizedRoute[1].OrderID)
	assert.False(suite.T(), route.OptimizedRoute[1].ArrivesAt.Before(*route.OptimizedRoute[0].ArrivesAt))
}

func (suite *HandlersTestSuite) TestOptimizeRouteRequiresStart() {
	rec := suite.do(suite.router, http.MethodPost, "/api/delivery/optimize-route", `{"delivery_points": []}`)

	resp := suite.http.ErrorResponse(rec, http.StatusBadRequest, apperrors.CodeValidationFailed)
	assert.Contains(suite.T(), resp.Error.Details, "starting_point")
}

func (suite *HandlersTestSuite) TestOptimizeRouteBadLatitude() {
	body := `{"starting_point": {"lat": 123, "lng": 0}, "delivery_points": []}`
	rec := suite.do(suite.router, http.MethodPost, "/api/delivery/optimize-route", body)

	suite.http.ErrorResponse(rec, http.StatusBadRequest, apperrors.CodeValidationFailed)
}

func (suite *HandlersTestSuite) TestCustomMenuDefaultsToFourItems() {
	rec := suite.do(suite.router, http.MethodPost, "/api/menu/custom", `{"preferences": "quero algo vegano"}`)

	suite.http.StatusCode(rec, http.StatusOK)
	var items []meal.MenuItem
	suite.http.JSONResponse(rec, &items)
	require.Len(suite.T(), items, meal.DefaultMenuItems)
	for i, item := range items {
		assert.Equal(suite.T(), i+1, item.ID)
		assert.NotEmpty(suite.T(), item.Tags)
	}
}

func (suite *HandlersTestSuite) TestCustomMenuValidation() {
	rec := suite.do(suite.router, http.MethodPost, "/api/menu/custom", `{"preferences": "x", "item_count": 21}`)
	suite.http.ErrorResponse(rec, http.StatusBadRequest, apperrors.CodeValidationFailed)

	rec = suite.do(suite.router, http.MethodPost, "/api/menu/custom", `{"item_count": 2}`)
	suite.http.ErrorResponse(rec, http.StatusBadRequest, apperrors.CodeValidationFailed)
}

func (suite *HandlersTestSuite) TestGroqTestUnconfigured() {
	rec := suite.do(suite.router, http.MethodPost, "/api/groq/test", `{"prompt": "olá"}`)

	suite.http.ErrorResponse(rec, http.StatusBadRequest, apperrors.CodeGatewayUnconfigured)
}

func (suite *HandlersTestSuite) TestGroqTestPassthrough() {
	suite.generator.On("Generate", mock.Anything, "olá", outbound.GenerateOptions{MaxTokens: 1000}).
		Return("Olá! Como posso ajudar?", nil).Once()

	rec := suite.do(suite.online, http.MethodPost, "/api/groq/test", `{"prompt": "olá"}`)

	suite.http.StatusCode(rec, http.StatusOK)
	assert.JSONEq(suite.T(), `{"response": "Olá! Como posso ajudar?"}`, rec.Body.String())
}

func (suite *HandlersTestSuite) TestGroqTestCustomModel() {
	suite.generator.On("Generate", mock.Anything, "oi", outbound.GenerateOptions{Model: "llama3-70b-8192", MaxTokens: 50}).
		Return("oi", nil).Once()

	rec := suite.do(suite.online, http.MethodPost, "/api/groq/test", `{"prompt": "oi", "model": "llama3-70b-8192", "max_tokens": 50}`)

	suite.http.StatusCode(rec, http.StatusOK)
}

func (suite *HandlersTestSuite) TestGroqTestGatewayFailure() {
	suite.generator.On("Generate", mock.Anything, "olá", mock.Anything).
		Return("", errors.New("connection refused")).Once()

	rec := suite.do(suite.online, http.MethodPost, "/api/groq/test", `{"prompt": "olá"}`)

	resp := suite.http.ErrorResponse(rec, http.StatusInternalServerError, apperrors.CodeInternal)
	assert.Equal(suite.T(), "Sem resposta da API do Groq", resp.Error.Message)
}

func (suite *HandlersTestSuite) TestListMeals() {
	meals := []*meal.Meal{suite.factory.Meal(1), suite.factory.Meal(2)}
	suite.meals.On("ListAvailable", mock.Anything).Return(meals, nil).Once()

	rec := suite.do(suite.router, http.MethodGet, "/api/meals", "")

	suite.http.StatusCode(rec, http.StatusOK)
	var got []map[string]interface{}
	suite.http.JSONResponse(rec, &got)
	require.Len(suite.T(), got, 2)
	assert.Contains(suite.T(), got[0], "nutritional_info")
	assert.Equal(suite.T(), true, got[0]["is_available"])
}

func (suite *HandlersTestSuite) TestGetMeal() {
	m := suite.factory.Meal(3)
	suite.meals.On("FindByID", mock.Anything, uint(3)).Return(m, nil).Once()

	rec := suite.do(suite.router, http.MethodGet, "/api/meals/3", "")

	suite.http.StatusCode(rec, http.StatusOK)
	var got meal.Meal
	suite.http.JSONResponse(rec, &got)
	assert.Equal(suite.T(), m.Name, got.Name)
}

func (suite *HandlersTestSuite) TestGetMealNotFound() {
	suite.meals.On("FindByID", mock.Anything, uint(999)).Return(nil, meal.ErrMealNotFound).Once()

	rec := suite.do(suite.router, http.MethodGet, "/api/meals/999", "")

	resp := suite.http.ErrorResponse(rec, http.StatusNotFound, apperrors.CodeMealNotFound)
	assert.Equal(suite.T(), "Refeição não encontrada", resp.Error.Message)
	assert.NotEmpty(suite.T(), resp.Error.RequestID)
}

func (suite *HandlersTestSuite) TestGetMealBadID() {
	rec := suite.do(suite.router, http.MethodGet, "/api/meals/abc", "")

	suite.http.ErrorResponse(rec, http.StatusBadRequest, apperrors.CodeValidationFailed)
}

func (suite *HandlersTestSuite) TestRegisterUser() {
	suite.users.On("FindByEmail", mock.Anything, "ana@example.com").Return(nil, domainuser.ErrUserNotFound).Once()
	suite.users.On("Create", mock.Anything, mock.AnythingOfType("*user.User")).Return(nil, uint(5)).Once()

	body := `{"email": "ana@example.com", "name": "Ana", "password": "SenhaForte123", "dietary_restrictions": ["vegano"]}`
	rec := suite.do(suite.router, http.MethodPost, "/api/users", body)

	suite.http.StatusCode(rec, http.StatusCreated)
	assert.NotContains(suite.T(), strings.ToLower(rec.Body.String()), "password")
	var dto inbound.UserDTO
	suite.http.JSONResponse(rec, &dto)
	assert.Equal(suite.T(), uint(5), dto.ID)
	assert.Equal(suite.T(), []string{"vegano"}, dto.DietaryRestrictions)
}

func (suite *HandlersTestSuite) TestRegisterUserDuplicate() {
	existing := suite.factory.User(1)
	suite.users.On("FindByEmail", mock.Anything, "ana@example.com").Return(existing, nil).Once()

	body := `{"email": "ana@example.com", "name": "Ana", "password": "SenhaForte123"}`
	rec := suite.do(suite.router, http.MethodPost, "/api/users", body)

	suite.http.ErrorResponse(rec, http.StatusConflict, apperrors.CodeAlreadyExists)
}

func (suite *HandlersTestSuite) TestRegisterUserValidation() {
	body := `{"email": "not-an-email", "name": "Ana", "password": "curta"}`
	rec := suite.do(suite.router, http.MethodPost, "/api/users", body)

	resp := suite.http.ErrorResponse(rec, http.StatusBadRequest, apperrors.CodeValidationFailed)
	assert.Contains(suite.T(), resp.Error.Details, "email")
	assert.Contains(suite.T(), resp.Error.Details, "password")
}

func (suite *HandlersTestSuite) TestGetUserNotFound() {
	suite.users.On("FindByID", mock.Anything, uint(8)).Return(nil, domainuser.ErrUserNotFound).Once()

	rec := suite.do(suite.router, http.MethodGet, "/api/users/8", "")

	suite.http.ErrorResponse(rec, http.StatusNotFound, apperrors.CodeUserNotFound)
}

func (suite *HandlersTestSuite) TestPlaceOrder() {
	u := suite.factory.User(1)
	m := suite.factory.Meal(2)
	m.Price = 30.5

	suite.users.On("FindByID", mock.Anything, uint(1)).Return(u, nil).Once()
	suite.meals.On("FindByIDs", mock.Anything, mock.Anything).Return(map[uint]*meal.Meal{2: m}, nil).Once()
	suite.orders.On("Create", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil, uint(77)).Once()

	body := `{"user_id": 1, "delivery_address": "Rua A, 1", "items": [{"meal_id": 2, "quantity": 2}]}`
	rec := suite.do(suite.router, http.MethodPost, "/api/orders", body)

	suite.http.StatusCode(rec, http.StatusCreated, "body: %s", rec.Body.String())
	var o domainorder.Order
	suite.http.JSONResponse(rec, &o)
	assert.Equal(suite.T(), uint(77), o.ID)
	assert.Equal(suite.T(), domainorder.StatusPending, o.Status)
	assert.Equal(suite.T(), domainorder.PaymentPix, o.PaymentMethod)
	assert.InDelta(suite.T(), 61.0, o.TotalPrice, 1e-9)
}

func (suite *HandlersTestSuite) TestPlaceOrderValidation() {
	tests := []struct {
		name string
		body string
	}{
		{"no items", `{"user_id": 1, "delivery_address": "Rua A", "items": []}`},
		{"zero quantity", `{"user_id": 1, "delivery_address": "Rua A", "items": [{"meal_id": 2, "quantity": 0}]}`},
		{"unknown payment", `{"user_id": 1, "delivery_address": "Rua A", "payment_method": "boleto", "items": [{"meal_id": 2, "quantity": 1}]}`},
		{"no address", `{"user_id": 1, "items": [{"meal_id": 2, "quantity": 1}]}`},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			rec := suite.do(suite.router, http.MethodPost, "/api/orders", tt.body)
			suite.http.ErrorResponse(rec, http.StatusBadRequest, apperrors.CodeValidationFailed)
		})
	}
}

func (suite *HandlersTestSuite) TestAdvanceOrderStatus() {
	o := suite.factory.Order(4, 1, suite.factory.Meal(2))
	suite.orders.On("FindByID", mock.Anything, uint(4)).Return(o, nil).Once()
	suite.orders.On("UpdateStatus", mock.Anything, uint(4), domainorder.StatusPending, domainorder.StatusPreparing).Return(nil).Once()

	rec := suite.do(suite.router, http.MethodPatch, "/api/orders/4/status", `{"status": "preparing"}`)

	suite.http.StatusCode(rec, http.StatusOK)
	var got domainorder.Order
	suite.http.JSONResponse(rec, &got)
	assert.Equal(suite.T(), domainorder.StatusPreparing, got.Status)
}

func (suite *HandlersTestSuite) TestAdvanceOrderStatusSkippingStep() {
	o := suite.factory.Order(4, 1, suite.factory.Meal(2))
	suite.orders.On("FindByID", mock.Anything, uint(4)).Return(o, nil).Once()

	rec := suite.do(suite.router, http.MethodPatch, "/api/orders/4/status", `{"status": "delivered"}`)

	suite.http.ErrorResponse(rec, http.StatusUnprocessableEntity, apperrors.CodeInvalidTransition)
}

func (suite *HandlersTestSuite) TestAdvanceOrderStatusUnknown() {
	rec := suite.do(suite.router, http.MethodPatch, "/api/orders/4/status", `{"status": "lost"}`)

	suite.http.ErrorResponse(rec, http.StatusBadRequest, apperrors.CodeValidationFailed)
}

func (suite *HandlersTestSuite) TestListUserOrders() {
	u := suite.factory.User(1)
	suite.users.On("FindByID", mock.Anything, uint(1)).Return(u, nil).Once()
	suite.orders.On("ListByUser", mock.Anything, uint(1)).Return(nil, nil).Once()

	rec := suite.do(suite.router, http.MethodGet, "/api/users/1/orders", "")

	suite.http.StatusCode(rec, http.StatusOK)
	assert.JSONEq(suite.T(), `[]`, rec.Body.String())
}

func (suite *HandlersTestSuite) TestCreatePix() {
	rec := suite.do(suite.router, http.MethodPost, "/api/payment/pix", `{"order_id": 12, "amount": 59.9, "description": "Pedido 12"}`)

	suite.http.StatusCode(rec, http.StatusOK)
	assert.JSONEq(suite.T(), `{
		"order_id": 12,
		"amount": 59.9,
		"pix_key": "deliveria12@pix.com.br",
		"qr_code_url": "https://placeholder.com/qrcode/pix/12",
		"expiration": 3600,
		"status": "pending"
	}`, rec.Body.String())
}

func (suite *HandlersTestSuite) TestCreatePixMissingAmount() {
	rec := suite.do(suite.router, http.MethodPost, "/api/payment/pix", `{"order_id": 12, "description": "Pedido 12"}`)

	suite.http.ErrorResponse(rec, http.StatusBadRequest, apperrors.CodeValidationFailed)
}

func (suite *HandlersTestSuite) TestApplyCashback() {
	rec := suite.do(suite.router, http.MethodPost, "/api/loyalty/cashback", `{"user_id": 1, "order_id": 12, "amount": 80}`)

	suite.http.StatusCode(rec, http.StatusOK)
	var cb inbound.Cashback
	suite.http.JSONResponse(rec, &cb)
	assert.Equal(suite.T(), 80.0, cb.OriginalAmount)
	assert.InDelta(suite.T(), 8.0, cb.CashbackAmount, 1e-9)
	assert.Equal(suite.T(), "applied", cb.Status)
}

func (suite *HandlersTestSuite) TestApplyCashbackZeroAmount() {
	rec := suite.do(suite.router, http.MethodPost, "/api/loyalty/cashback", `{"user_id": 1, "order_id": 12, "amount": 0}`)

	suite.http.StatusCode(rec, http.StatusOK)
}

func (suite *HandlersTestSuite) TestUnknownRoute() {
	rec := suite.do(suite.router, http.MethodGet, "/api/unknown", "")

	suite.http.ErrorResponse(rec, http.StatusNotFound, apperrors.CodeNotFound)
}
