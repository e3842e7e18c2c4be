package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"zaqeen-be/internal/logger"
)

type Repository interface {
	// Create persists the order and its items in one transaction, keyed by
	// the order id (create, never create-then-update). It also stamps the
	// stock locks of the given reservation so the reconciliation sweep
	// knows they are backed by a real order. Returns ErrDuplicateID on an
	// id collision.
	Create(ctx context.Context, o *Order, reservationID string) error

	CountByUserSince(ctx context.Context, userID string, since time.Time) (int, error)
	CountByIPSince(ctx context.Context, ip string, since time.Time) (int, error)
	CountByPhoneSince(ctx context.Context, phone string, since time.Time) (int, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, o *Order, reservationID string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrder"),
		zap.String("order_id", o.ID),
		zap.Int("item_count", len(o.Items)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin order transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback order transaction", zap.Error(rbErr))
			}
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, user_id,
			subtotal, discount, coupon_code, shipping_fee, total_amount,
			delivery_name, delivery_phone, delivery_email,
			delivery_city, delivery_address, delivery_note,
			payment_method, transaction_id, payment_status, payment_verified,
			status, ip, user_agent, device_fingerprint, bot_score,
			created_at, updated_at
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,
			$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24
		)
	`,
		o.ID,
		o.UserID,
		o.Subtotal,
		o.Discount,
		o.CouponCode,
		o.ShippingFee,
		o.TotalAmount,
		o.DeliveryInfo.Name,
		o.DeliveryInfo.Phone,
		o.DeliveryInfo.Email,
		o.DeliveryInfo.City,
		o.DeliveryInfo.Address,
		o.DeliveryInfo.Note,
		o.PaymentInfo.Method,
		o.PaymentInfo.TransactionID,
		o.PaymentInfo.Status,
		o.PaymentInfo.Verified,
		o.Status,
		o.Metadata.IP,
		o.Metadata.UserAgent,
		o.Metadata.DeviceFingerprint,
		o.Metadata.BotScore,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			log.Warn("order id collision")
			return ErrDuplicateID
		}
		log.Error("failed to insert order", zap.Error(err))
		return err
	}

	for i, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				order_id, product_id, name, quantity,
				price_at_purchase, selected_size
			) VALUES ($1,$2,$3,$4,$5,$6)
		`,
			o.ID,
			item.ProductID,
			item.Name,
			item.Quantity,
			item.PriceAtPurchase,
			item.SelectedSize,
		)
		if err != nil {
			log.Error("failed to insert order item",
				zap.Int("item_index", i),
				zap.String("product_id", item.ProductID),
				zap.Error(err),
			)
			return err
		}
	}

	// Stamp the reservation's locks so the sweep never treats them as
	// orphans.
	_, err = tx.ExecContext(ctx, `
		UPDATE stock_locks
		SET order_id = $1
		WHERE reservation_id = $2
	`, o.ID, reservationID)
	if err != nil {
		log.Error("failed to stamp stock locks", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order transaction", zap.Error(err))
		return err
	}

	committed = true
	log.Info("order persisted")

	return nil
}

func (r *repository) CountByUserSince(ctx context.Context, userID string, since time.Time) (int, error) {
	return r.countSince(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1 AND created_at >= $2`, userID, since)
}

func (r *repository) CountByIPSince(ctx context.Context, ip string, since time.Time) (int, error) {
	return r.countSince(ctx, `SELECT COUNT(*) FROM orders WHERE ip = $1 AND created_at >= $2`, ip, since)
}

func (r *repository) CountByPhoneSince(ctx context.Context, phone string, since time.Time) (int, error) {
	return r.countSince(ctx, `SELECT COUNT(*) FROM orders WHERE delivery_phone = $1 AND created_at >= $2`, phone, since)
}

func (r *repository) countSince(ctx context.Context, query, value string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, query, value, since).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
