package settings

import (
	"context"
	"database/sql"
	"errors"

	"zaqeen-be/internal/logger"

	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("site settings not configured")

type Repository interface {
	Get(ctx context.Context) (*SiteSettings, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context) (*SiteSettings, error) {
	query := `
		SELECT
			shipping_fee_dhaka, shipping_fee_savar, shipping_fee_outside,
			free_shipping_threshold, min_order_amount,
			max_orders_per_day, otp_required, payment_methods
		FROM site_settings
		WHERE id = 1
	`

	var s SiteSettings
	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.ShippingFeeDhaka,
		&s.ShippingFeeSavar,
		&s.ShippingFeeOutside,
		&s.FreeShippingThreshold,
		&s.MinOrderAmount,
		&s.MaxOrdersPerDay,
		&s.OTPRequired,
		&s.PaymentMethods,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotConfigured
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load site settings", zap.Error(err))
		return nil, err
	}

	return &s, nil
}
