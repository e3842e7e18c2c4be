package cart

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"zaqeen-be/internal/logger"
)

// The client session owns the cart contents until submission; the server
// side only keeps stale rows around to drop once an order goes through.
type Repository interface {
	// Clear empties the owner's cart after a successful checkout.
	Clear(ctx context.Context, ownerID string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Clear(ctx context.Context, ownerID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE owner_id = $1`, ownerID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to clear cart",
			zap.String("owner_id", ownerID),
			zap.Error(err),
		)
	}
	return err
}
