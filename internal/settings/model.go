package settings

import (
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// SiteSettings is the storefront configuration a checkout attempt runs
// against. It is fetched once per attempt so the totals shown to the buyer
// and the totals persisted on the order come from the same snapshot.
type SiteSettings struct {
	ShippingFeeDhaka      decimal.Decimal
	ShippingFeeSavar      decimal.Decimal
	ShippingFeeOutside    decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	MinOrderAmount        decimal.Decimal
	MaxOrdersPerDay       int
	OTPRequired           bool
	PaymentMethods        pq.StringArray
}

// PaymentMethodEnabled reports whether the given method is currently offered.
func (s *SiteSettings) PaymentMethodEnabled(method string) bool {
	for _, m := range s.PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}
