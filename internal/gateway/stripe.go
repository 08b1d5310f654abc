// Package gateway implements payment.Gateway on top of Stripe.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/refund"
	"go.uber.org/zap"

	paymentDomain "github.com/fixgo-platform/service-booking/internal/domain/payment"
	"github.com/fixgo-platform/service-booking/internal/platform/apperror"
)

// zeroDecimal lists currencies Stripe charges in whole units.
var zeroDecimal = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true,
	"kmf": true, "krw": true, "mga": true, "pyg": true, "rwf": true,
	"ugx": true, "vnd": true, "vuv": true, "xaf": true, "xof": true, "xpf": true,
}

// StripeConfig configures a StripeGateway.
type StripeConfig struct {
	SecretKey string
	// APIURL overrides the API base URL; empty means api.stripe.com.
	APIURL string
	// Timeout bounds each HTTP round trip.
	Timeout time.Duration
	// MaxNetworkRetries applies to connection errors and 409/5xx answers only.
	// Every attempt carries the same idempotency key.
	MaxNetworkRetries int64
}

// StripeGateway issues refunds through the Stripe API. It owns its own
// backend and key; nothing is set on the stripe package globals.
type StripeGateway struct {
	client refund.Client
	logger *zap.Logger
}

// NewStripeGateway creates a StripeGateway.
func NewStripeGateway(cfg StripeConfig, logger *zap.Logger) (*StripeGateway, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("stripe secret key is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	backendCfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		MaxNetworkRetries: stripe.Int64(cfg.MaxNetworkRetries),
		LeveledLogger:     logger.Named("stripe").Sugar(),
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripe.String(cfg.APIURL)
	}

	return &StripeGateway{
		client: refund.Client{
			B:   stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
			Key: cfg.SecretKey,
		},
		logger: logger,
	}, nil
}

// Refund reverses a charge or payment intent. An already refunded charge is
// reported as success.
func (g *StripeGateway) Refund(ctx context.Context, req paymentDomain.RefundRequest) (*paymentDomain.RefundReceipt, error) {
	if strings.TrimSpace(req.ChargeReference) == "" {
		return nil, apperror.NewGatewayError("refund failed", errors.New("missing charge reference"))
	}

	params := &stripe.RefundParams{
		Reason: stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)
	params.AddMetadata("booking_id", req.BookingID.String())
	params.AddMetadata("payment_id", req.PaymentID.String())

	if strings.HasPrefix(req.ChargeReference, "pi_") {
		params.PaymentIntent = stripe.String(req.ChargeReference)
	} else {
		params.Charge = stripe.String(req.ChargeReference)
	}
	if req.Amount.IsPositive() {
		params.Amount = stripe.Int64(MinorUnits(req.Amount, req.Currency))
	}

	r, err := g.client.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeChargeAlreadyRefunded {
			g.logger.Info("charge already refunded",
				zap.String("booking_id", req.BookingID.String()),
				zap.String("charge", req.ChargeReference),
			)
			return &paymentDomain.RefundReceipt{Status: "already_refunded"}, nil
		}
		return nil, apperror.NewGatewayError("stripe refund failed", err)
	}

	if r.Status == stripe.RefundStatusFailed || r.Status == stripe.RefundStatusCanceled {
		return nil, apperror.NewGatewayError("refund failed",
			fmt.Errorf("stripe refund %s ended in status %s", r.ID, r.Status))
	}

	return &paymentDomain.RefundReceipt{RefundID: r.ID, Status: string(r.Status)}, nil
}

// MinorUnits converts an amount to the currency's smallest unit, rounding
// half away from zero.
func MinorUnits(amount decimal.Decimal, currency string) int64 {
	if zeroDecimal[strings.ToLower(currency)] {
		return amount.Round(0).IntPart()
	}
	return amount.Shift(2).Round(0).IntPart()
}
