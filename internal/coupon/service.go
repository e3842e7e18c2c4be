package coupon

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"zaqeen-be/internal/logger"
)

var (
	hundred = decimal.NewFromInt(100)
	// maxDiscountRatio caps any discount at half of the subtotal.
	maxDiscountRatio = decimal.NewFromFloat(0.5)
)

type Service interface {
	// Apply validates and prices the coupon code against the subtotal.
	Apply(ctx context.Context, code string, subtotal decimal.Decimal) (*Discount, error)
	// ConsumeUsage increments the usage counter after an order referencing
	// the coupon has been durably persisted.
	ConsumeUsage(ctx context.Context, code string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Apply(ctx context.Context, code string, subtotal decimal.Decimal) (*Discount, error) {
	normalized := NormalizeCode(code)

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ApplyCoupon"),
		zap.String("code", normalized),
	)

	c, err := s.repo.FindActiveByCode(ctx, normalized)
	if err != nil {
		log.Warn("coupon lookup failed", zap.Error(err))
		return nil, err
	}

	// Rejection order: expired, then min-spend, then exhausted.
	if c.ExpiryDate.Before(time.Now()) {
		log.Info("coupon expired", zap.Time("expiry", c.ExpiryDate))
		return nil, ErrExpired
	}
	if subtotal.LessThan(c.MinSpend) {
		log.Info("subtotal below coupon minimum",
			zap.String("subtotal", subtotal.String()),
			zap.String("min_spend", c.MinSpend.String()),
		)
		return nil, ErrMinSpend
	}
	if c.UsedCount >= c.UsageLimit {
		log.Info("coupon exhausted",
			zap.Int("used_count", c.UsedCount),
			zap.Int("usage_limit", c.UsageLimit),
		)
		return nil, ErrExhausted
	}

	amount := discountAmount(c, subtotal)

	log.Info("coupon applied", zap.String("discount", amount.String()))

	return &Discount{Code: c.Code, Amount: amount}, nil
}

func (s *service) ConsumeUsage(ctx context.Context, code string) error {
	return s.repo.IncrementUsage(ctx, NormalizeCode(code))
}

// discountAmount prices the coupon and clamps the result to half of the
// subtotal so a generous code can never zero out an order.
func discountAmount(c *Coupon, subtotal decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch c.Type {
	case DiscountPercentage:
		amount = subtotal.Mul(c.Value).Div(hundred)
	default:
		amount = c.Value
	}

	cap := subtotal.Mul(maxDiscountRatio)
	if amount.GreaterThan(cap) {
		amount = cap
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return amount.Round(2)
}
