package coupon

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Repository interface {
	FindActiveByCode(ctx context.Context, code string) (*Coupon, error)
	IncrementUsage(ctx context.Context, code string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindActiveByCode(ctx context.Context, code string) (*Coupon, error) {
	query := `
		SELECT
			id, code, discount_type, value, expiry_date,
			min_spend, usage_limit, used_count, active,
			created_at, updated_at
		FROM coupons
		WHERE code = $1 AND active = TRUE
	`

	var c Coupon
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&c.ID,
		&c.Code,
		&c.Type,
		&c.Value,
		&c.ExpiryDate,
		&c.MinSpend,
		&c.UsageLimit,
		&c.UsedCount,
		&c.Active,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// IncrementUsage bumps used_count by one. Called only after the referencing
// order is durably persisted; the usage cap is a soft quota, so the
// check-then-increment race under concurrent checkouts is tolerated.
func (r *repository) IncrementUsage(ctx context.Context, code string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE coupons
		SET used_count = used_count + 1, updated_at = NOW()
		WHERE code = $1
	`, code)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("coupon not found for usage increment: %s", code)
	}
	return nil
}
