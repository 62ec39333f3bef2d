// Package handlers exposes the application services over the public gin API.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/deliveria/api/internal/ports/inbound"
	apperrors "github.com/deliveria/api/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const welcomeMessage = "Bem-vindo à API do DeliverIA"

// Handlers serves every public route. Errors are attached with c.Error and
// rendered by the ErrorHandler middleware.
type Handlers struct {
	advisor inbound.Advisor
	catalog inbound.CatalogService
	users   inbound.UserService
	orders  inbound.OrderService
	billing inbound.BillingService
	logger  *zap.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(
	advisor inbound.Advisor,
	catalog inbound.CatalogService,
	users inbound.UserService,
	orders inbound.OrderService,
	billing inbound.BillingService,
	logger *zap.Logger,
) *Handlers {
	useJSONFieldNames()
	return &Handlers{
		advisor: advisor,
		catalog: catalog,
		users:   users,
		orders:  orders,
		billing: billing,
		logger:  logger.Named("handlers"),
	}
}

// RegisterRoutes mounts the API on r.
func (h *Handlers) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.Root)

	api := r.Group("/api")
	{
		api.POST("/recommendations", h.Recommend)
		api.POST("/nutrition/analyze", h.AnalyzeNutrition)
		api.POST("/delivery/optimize-route", h.OptimizeRoute)
		api.POST("/menu/custom", h.CustomMenu)
		api.POST("/groq/test", h.GroqTest)

		api.GET("/meals", h.ListMeals)
		api.GET("/meals/:id", h.GetMeal)

		api.POST("/users", h.RegisterUser)
		api.GET("/users/:id", h.GetUser)
		api.GET("/users/:id/orders", h.ListUserOrders)

		api.POST("/orders", h.PlaceOrder)
		api.GET("/orders/:id", h.GetOrder)
		api.PATCH("/orders/:id/status", h.AdvanceOrderStatus)

		api.POST("/payment/pix", h.CreatePix)
		api.POST("/loyalty/cashback", h.ApplyCashback)
	}
}

// Root handles GET /
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": welcomeMessage})
}

var tagNameOnce sync.Once

// useJSONFieldNames makes validator report fields by their JSON names.
func useJSONFieldNames() {
	tagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

// bind decodes the JSON body into dst. On failure it attaches the error and
// reports false.
func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		_ = c.Error(bindingError(err))
		return false
	}
	return true
}

// bindingError maps decoding and validation failures to a 400 AppError.
func bindingError(err error) *apperrors.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]apperrors.ValidationError, 0, len(verrs))
		for _, fe := range verrs {
			field := fieldPath(fe)
			out = append(out, apperrors.ValidationError{
				Field:   field,
				Value:   fe.Value(),
				Tag:     fe.Tag(),
				Message: validationMessage(field, fe),
			})
		}
		return apperrors.NewValidationErrors(out)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperrors.NewValidationError(fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type.String()))
	}
	if errors.Is(err, io.EOF) {
		return apperrors.NewBadRequestError("Request body is required")
	}
	return apperrors.NewBadRequestError("Invalid JSON payload").WithCause(err)
}

// fieldPath drops the root struct name from the validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func validationMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "len":
		return fmt.Sprintf("%s must have exactly %s elements", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed the %s check", field, fe.Tag())
	}
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		_ = c.Error(apperrors.NewValidationError(name + " must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}
