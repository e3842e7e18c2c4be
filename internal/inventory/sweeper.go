package inventory

import (
	"context"
	"time"

	"go.uber.org/zap"

	"zaqeen-be/internal/logger"
)

// Sweeper periodically reclaims stock held by abandoned reservations. A
// reservation can outlive its checkout when persistence fails after the
// stock lock succeeded; without the sweep that stock would stay locked
// forever.
type Sweeper struct {
	svc      Service
	interval time.Duration
}

func NewSweeper(svc Service, interval time.Duration) *Sweeper {
	return &Sweeper{svc: svc, interval: interval}
}

// Run blocks until ctx is cancelled, sweeping once per interval. Sweep
// errors are logged and the loop keeps going.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log := logger.L().With(zap.String("worker", "stock-lock-sweeper"))
	log.Info("sweeper started", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			log.Info("sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			count, err := s.svc.ReleaseExpired(ctx)
			if err != nil {
				log.Error("sweep failed", zap.Error(err))
				continue
			}
			if count > 0 {
				log.Info("sweep reclaimed expired locks", zap.Int("count", count))
			}
		}
	}
}
