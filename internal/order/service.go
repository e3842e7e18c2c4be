package order

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"zaqeen-be/internal/logger"
)

const maxIDAttempts = 3

type Service interface {
	// PersistNew assigns a fresh order id and writes the order, retrying
	// with a regenerated id when the timestamp+random scheme collides.
	PersistNew(ctx context.Context, o *Order, reservationID string) (string, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) PersistNew(ctx context.Context, o *Order, reservationID string) (string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PersistNew"),
	)

	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	o.Status = StatusPending

	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		o.ID = NewOrderID()

		err := s.repo.Create(ctx, o, reservationID)
		if err == nil {
			return o.ID, nil
		}
		if !errors.Is(err, ErrDuplicateID) {
			return "", err
		}

		log.Warn("order id collision, regenerating", zap.Int("attempt", attempt))
	}

	return "", ErrRetriesExhausted
}
