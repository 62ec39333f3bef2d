// Package billing simulates the payment integrations. Nothing is persisted
// and no external provider is called.
package billing

import (
	"context"
	"fmt"
	"math"

	"github.com/deliveria/api/internal/ports/inbound"
	apperrors "github.com/deliveria/api/pkg/errors"
	"go.uber.org/zap"
)

const (
	// PixExpirationSeconds is how long a simulated charge stays payable.
	PixExpirationSeconds = 3600

	pixKeyFormat    = "deliveria%d@pix.com.br"
	pixQRCodeFormat = "https://placeholder.com/qrcode/pix/%d"
)

// Service implements inbound.BillingService.
type Service struct {
	cashbackRate float64
	logger       *zap.Logger
}

var _ inbound.BillingService = (*Service)(nil)

// NewService creates a billing simulator crediting cashbackRate of each amount.
func NewService(cashbackRate float64, logger *zap.Logger) *Service {
	return &Service{
		cashbackRate: cashbackRate,
		logger:       logger.Named("billing-service"),
	}
}

// CreatePixCharge returns a pending instant-payment charge.
func (s *Service) CreatePixCharge(ctx context.Context, cmd inbound.PixCommand) (*inbound.PixCharge, error) {
	if cmd.Amount <= 0 {
		return nil, apperrors.NewValidationError("amount must be greater than zero")
	}

	s.logger.Debug("Simulated pix charge",
		zap.Int("order_id", cmd.OrderID),
		zap.Float64("amount", cmd.Amount),
		zap.String("description", cmd.Description),
	)

	return &inbound.PixCharge{
		OrderID:    cmd.OrderID,
		Amount:     cmd.Amount,
		PixKey:     fmt.Sprintf(pixKeyFormat, cmd.OrderID),
		QRCodeURL:  fmt.Sprintf(pixQRCodeFormat, cmd.OrderID),
		Expiration: PixExpirationSeconds,
		Status:     "pending",
	}, nil
}

// ApplyCashback credits the configured share of an order amount.
func (s *Service) ApplyCashback(ctx context.Context, cmd inbound.CashbackCommand) (*inbound.Cashback, error) {
	if cmd.Amount < 0 {
		return nil, apperrors.NewValidationError("amount must not be negative")
	}

	credit := math.Round(cmd.Amount*s.cashbackRate*100) / 100

	s.logger.Debug("Simulated cashback",
		zap.Int("user_id", cmd.UserID),
		zap.Int("order_id", cmd.OrderID),
		zap.Float64("cashback_amount", credit),
	)

	return &inbound.Cashback{
		UserID:         cmd.UserID,
		OrderID:        cmd.OrderID,
		OriginalAmount: cmd.Amount,
		CashbackAmount: credit,
		Status:         "applied",
	}, nil
}
