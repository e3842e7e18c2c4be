// Package pricing computes shipping fees and order totals. Everything here
// is a pure function of the inputs so the same settings snapshot always
// yields the same numbers.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"zaqeen-be/internal/settings"
)

const (
	cityDhaka = "dhaka"
	citySavar = "savar"
)

// ShippingFee returns the delivery charge for the given subtotal and
// destination city. Orders at or above the free-shipping threshold ship
// free; otherwise the fee is tiered by city.
func ShippingFee(subtotal decimal.Decimal, city string, s *settings.SiteSettings) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(s.FreeShippingThreshold) {
		return decimal.Zero
	}

	switch strings.ToLower(strings.TrimSpace(city)) {
	case cityDhaka:
		return s.ShippingFeeDhaka
	case citySavar:
		return s.ShippingFeeSavar
	default:
		return s.ShippingFeeOutside
	}
}

// Total returns subtotal - discount + shippingFee, never negative. The
// discount is already capped upstream, the clamp is a guard for bad inputs.
func Total(subtotal, discount, shippingFee decimal.Decimal) decimal.Decimal {
	total := subtotal.Sub(discount).Add(shippingFee)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// Subtotal sums price*quantity over the cart lines.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// Line is the minimal cart line shape the calculator needs.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}
