package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"zaqeen-be/internal/settings"
)

func testSettings() *settings.SiteSettings {
	return &settings.SiteSettings{
		ShippingFeeDhaka:      decimal.NewFromInt(60),
		ShippingFeeSavar:      decimal.NewFromInt(80),
		ShippingFeeOutside:    decimal.NewFromInt(120),
		FreeShippingThreshold: decimal.NewFromInt(2000),
		MinOrderAmount:        decimal.NewFromInt(300),
	}
}

func TestShippingFee(t *testing.T) {
	s := testSettings()

	t.Run("DhakaBelowThreshold", func(t *testing.T) {
		fee := ShippingFee(decimal.NewFromInt(1500), "Dhaka", s)
		assert.True(t, fee.Equal(decimal.NewFromInt(60)), "got %s", fee)
	})

	t.Run("FreeAboveThreshold", func(t *testing.T) {
		fee := ShippingFee(decimal.NewFromInt(2500), "Dhaka", s)
		assert.True(t, fee.IsZero(), "got %s", fee)
	})

	t.Run("FreeAtThreshold", func(t *testing.T) {
		fee := ShippingFee(decimal.NewFromInt(2000), "Bogura", s)
		assert.True(t, fee.IsZero())
	})

	t.Run("SavarTier", func(t *testing.T) {
		fee := ShippingFee(decimal.NewFromInt(500), " savar ", s)
		assert.True(t, fee.Equal(decimal.NewFromInt(80)))
	})

	t.Run("OutsideTier", func(t *testing.T) {
		fee := ShippingFee(decimal.NewFromInt(500), "Chattogram", s)
		assert.True(t, fee.Equal(decimal.NewFromInt(120)))
	})
}

func TestTotal(t *testing.T) {
	t.Run("SubtotalMinusDiscountPlusShipping", func(t *testing.T) {
		total := Total(decimal.NewFromInt(1500), decimal.NewFromInt(200), decimal.NewFromInt(60))
		assert.True(t, total.Equal(decimal.NewFromInt(1360)))
	})

	t.Run("ClampedAtZero", func(t *testing.T) {
		total := Total(decimal.NewFromInt(100), decimal.NewFromInt(500), decimal.Zero)
		assert.True(t, total.IsZero())
	})
}

func TestSubtotal(t *testing.T) {
	lines := []Line{
		{UnitPrice: decimal.NewFromInt(500), Quantity: 2},
		{UnitPrice: decimal.NewFromInt(250), Quantity: 2},
	}
	assert.True(t, Subtotal(lines).Equal(decimal.NewFromInt(1500)))
}
