package inventory

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"zaqeen-be/internal/logger"
)

type Repository interface {
	// ReserveTx locks stock for every item inside a single serializable
	// transaction. Either all lines are reserved or none are.
	ReserveTx(ctx context.Context, reservationID string, items []ReservationItem) ([]Snapshot, error)
	// ReleaseExpired restores stock held by reservations that passed their
	// expiry without ever being stamped with an order. Returns how many
	// lock rows were reclaimed.
	ReleaseExpired(ctx context.Context) (int, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ReserveTx(
	ctx context.Context,
	reservationID string,
	items []ReservationItem,
) ([]Snapshot, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ReserveTx"),
		zap.String("reservation_id", reservationID),
		zap.Int("item_count", len(items)),
	)

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		log.Error("failed to begin reservation transaction", zap.Error(err))
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback reservation", zap.Error(rbErr))
			}
		}
	}()

	expiresAt := time.Now().Add(LockTTL)
	snapshots := make([]Snapshot, 0, len(items))

	for _, item := range items {
		var snap Snapshot
		var available int

		err := tx.QueryRowContext(ctx, `
			SELECT id, name, price, stock
			FROM products
			WHERE id = $1
			FOR UPDATE
		`, item.ProductID).Scan(&snap.ProductID, &snap.Name, &snap.UnitPrice, &available)

		if errors.Is(err, sql.ErrNoRows) {
			return nil, &ProductNotFoundError{ProductID: item.ProductID}
		}
		if err != nil {
			log.Error("failed to read product for reservation",
				zap.String("product_id", item.ProductID),
				zap.Error(err),
			)
			return nil, err
		}

		if available < item.Quantity {
			log.Warn("insufficient stock, aborting whole reservation",
				zap.String("product_id", item.ProductID),
				zap.Int("requested", item.Quantity),
				zap.Int("available", available),
			)
			return nil, &InsufficientStockError{
				ProductID: snap.ProductID,
				Name:      snap.Name,
				Requested: item.Quantity,
				Available: available,
			}
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $1,
			    locked_stock = locked_stock + $1,
			    lock_expires_at = $2
			WHERE id = $3 AND stock >= $1
		`, item.Quantity, expiresAt, item.ProductID)
		if err != nil {
			return nil, err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO stock_locks (
				id, reservation_id, product_id, quantity, expires_at
			) VALUES ($1,$2,$3,$4,$5)
		`, uuid.New(), reservationID, item.ProductID, item.Quantity, expiresAt)
		if err != nil {
			return nil, err
		}

		snap.Quantity = item.Quantity
		snap.SelectedSize = item.SelectedSize
		snapshots = append(snapshots, snap)
	}

	if err := tx.Commit(); err != nil {
		log.Warn("reservation commit failed", zap.Error(err))
		return nil, err
	}

	committed = true
	log.Info("stock reserved", zap.Time("expires_at", expiresAt))

	return snapshots, nil
}

func (r *repository) ReleaseExpired(ctx context.Context) (int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ReleaseExpired"),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Locks already stamped with an order belong to a persisted order and
	// must not be clawed back. SKIP LOCKED keeps concurrent sweeps and
	// in-flight reservations out of each other's way.
	rows, err := tx.QueryContext(ctx, `
		SELECT id, product_id, quantity
		FROM stock_locks
		WHERE released = FALSE
		  AND order_id IS NULL
		  AND expires_at < NOW()
		FOR UPDATE SKIP LOCKED
	`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	type expiredLock struct {
		id        string
		productID string
		quantity  int
	}

	var expired []expiredLock
	for rows.Next() {
		var l expiredLock
		if err := rows.Scan(&l.id, &l.productID, &l.quantity); err != nil {
			return 0, err
		}
		expired = append(expired, l)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, l := range expired {
		_, err = tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock + $1,
			    locked_stock = GREATEST(locked_stock - $1, 0)
			WHERE id = $2
		`, l.quantity, l.productID)
		if err != nil {
			return 0, err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE stock_locks
			SET released = TRUE
			WHERE id = $1
		`, l.id)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true

	if len(expired) > 0 {
		log.Info("expired stock locks reclaimed", zap.Int("count", len(expired)))
	}

	return len(expired), nil
}
