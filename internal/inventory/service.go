package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"zaqeen-be/internal/logger"
)

const (
	maxReserveAttempts = 3
	retryBaseDelay     = 50 * time.Millisecond
)

// Service is the reservation manager. Reserve is the only operation in the
// pipeline that must be strictly atomic across multiple products.
type Service interface {
	Reserve(ctx context.Context, items []ReservationItem) (string, []Snapshot, error)
	ReleaseExpired(ctx context.Context) (int, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Reserve locks stock for the whole cart, retrying with a small backoff
// when two checkouts race for the same rows. The serializable transaction
// guarantees that at most one of two racing carts can take the last units.
func (s *service) Reserve(ctx context.Context, items []ReservationItem) (string, []Snapshot, error) {
	reservationID := uuid.New().String()

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Reserve"),
		zap.String("reservation_id", reservationID),
	)

	var lastErr error
	for attempt := 1; attempt <= maxReserveAttempts; attempt++ {
		snapshots, err := s.repo.ReserveTx(ctx, reservationID, items)
		if err == nil {
			return reservationID, snapshots, nil
		}

		if !isRetryableTxError(err) {
			return "", nil, err
		}

		lastErr = err
		log.Warn("reservation write conflict, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return "", nil, ctx.Err()
		case <-time.After(retryBaseDelay * time.Duration(attempt)):
		}
	}

	log.Error("reservation retries exhausted", zap.Error(lastErr))
	return "", nil, ErrReservationConflict
}

func (s *service) ReleaseExpired(ctx context.Context) (int, error) {
	return s.repo.ReleaseExpired(ctx)
}

// isRetryableTxError reports whether the error is a transient transaction
// conflict (serialization failure or deadlock) worth retrying.
func isRetryableTxError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}
