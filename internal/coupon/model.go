package coupon

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type Coupon struct {
	ID         uint
	Code       string
	Type       DiscountType
	Value      decimal.Decimal
	ExpiryDate time.Time
	MinSpend   decimal.Decimal
	UsageLimit int
	UsedCount  int
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Discount is the priced result of a successfully applied coupon.
type Discount struct {
	Code   string
	Amount decimal.Decimal
}

// NormalizeCode canonicalizes a user-entered coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
