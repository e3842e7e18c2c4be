package risk

import (
	"context"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"go.uber.org/zap"

	"zaqeen-be/internal/logger"
	"zaqeen-be/internal/order"
)

// rateWindow is the trailing period order counts are evaluated over.
const rateWindow = 24 * time.Hour

// Rejection is returned when screening denies an order. The message is
// deliberately generic so callers cannot probe the detection logic; the
// triggering dimension is kept for internal logging only.
type Rejection struct {
	Dimension string // "blacklist", "account", "ip" or "phone"
}

func (e *Rejection) Error() string {
	return "order could not be accepted"
}

// Identity carries every identifier the screen evaluates.
type Identity struct {
	UserID string
	Phone  string
	Email  string
	IP     string
}

type Service interface {
	// Screen runs the blacklist check and the trailing-24h order quotas.
	// Both checks fail open: a storage error admits the order rather than
	// blocking every buyer during an outage.
	Screen(ctx context.Context, id Identity, maxOrdersPerDay int) error
	// WarmBloom loads the blocked-value set into the bloom pre-screen.
	WarmBloom(ctx context.Context) error
}

type service struct {
	blacklist BlacklistRepository
	orders    order.Repository

	mu     sync.RWMutex
	filter *bloom.BloomFilter
}

func NewService(blacklist BlacklistRepository, orders order.Repository) Service {
	return &service{
		blacklist: blacklist,
		orders:    orders,
	}
}

func (s *service) WarmBloom(ctx context.Context) error {
	values, err := s.blacklist.AllValues(ctx)
	if err != nil {
		return err
	}

	n := uint(len(values))
	if n < 1000 {
		n = 1000
	}
	filter := bloom.NewWithEstimates(n, 0.01)
	for _, v := range values {
		filter.AddString(v)
	}

	s.mu.Lock()
	s.filter = filter
	s.mu.Unlock()

	logger.L().Info("blacklist bloom filter warmed", zap.Int("values", len(values)))
	return nil
}

func (s *service) Screen(ctx context.Context, id Identity, maxOrdersPerDay int) error {
	if err := s.checkBlacklist(ctx, id); err != nil {
		return err
	}
	return s.checkOrderLimits(ctx, id, maxOrdersPerDay)
}

func (s *service) checkBlacklist(ctx context.Context, id Identity) error {
	log := logger.FromCtx(ctx).With(zap.String("check", "blacklist"))

	values := nonEmpty(id.Phone, id.Email, id.IP)
	if len(values) == 0 {
		return nil
	}

	// Bloom pre-screen: a definite miss on every value skips the store
	// round trip. Possible hits still go through the exact lookup.
	if !s.maybeBlocked(values) {
		return nil
	}

	blocked, err := s.blacklist.AnyBlocked(ctx, values)
	if err != nil {
		// Fail open: availability over strict blocking.
		log.Error("blacklist lookup failed, admitting order", zap.Error(err))
		return nil
	}
	if blocked {
		log.Warn("blacklisted identifier on order attempt",
			zap.String("phone", id.Phone),
			zap.String("ip", id.IP),
		)
		return &Rejection{Dimension: "blacklist"}
	}

	return nil
}

// checkOrderLimits enforces three independent trailing-24h quotas. The IP
// cap is doubled since NATs put many buyers behind one address; the phone
// cap matches the account cap because a phone is the harder signal to spoof.
func (s *service) checkOrderLimits(ctx context.Context, id Identity, limit int) error {
	if limit <= 0 {
		return nil
	}

	log := logger.FromCtx(ctx).With(zap.String("check", "order_limits"))
	since := time.Now().Add(-rateWindow)

	if id.UserID != "" && id.UserID != order.GuestUserID {
		count, err := s.orders.CountByUserSince(ctx, id.UserID, since)
		if err != nil {
			log.Error("account quota query failed, admitting order", zap.Error(err))
		} else if count >= limit {
			log.Warn("per-account order quota exceeded",
				zap.String("user_id", id.UserID),
				zap.Int("count", count),
				zap.Int("limit", limit),
			)
			return &Rejection{Dimension: "account"}
		}
	}

	if id.IP != "" {
		count, err := s.orders.CountByIPSince(ctx, id.IP, since)
		if err != nil {
			log.Error("ip quota query failed, admitting order", zap.Error(err))
		} else if count >= limit*2 {
			log.Warn("per-ip order quota exceeded",
				zap.String("ip", id.IP),
				zap.Int("count", count),
			)
			return &Rejection{Dimension: "ip"}
		}
	}

	if id.Phone != "" {
		count, err := s.orders.CountByPhoneSince(ctx, id.Phone, since)
		if err != nil {
			log.Error("phone quota query failed, admitting order", zap.Error(err))
		} else if count >= limit {
			log.Warn("per-phone order quota exceeded",
				zap.String("phone", id.Phone),
				zap.Int("count", count),
			)
			return &Rejection{Dimension: "phone"}
		}
	}

	return nil
}

// maybeBlocked reports whether any value could be in the blacklist. With no
// warmed filter it returns true so the exact lookup always runs.
func (s *service) maybeBlocked(values []string) bool {
	s.mu.RLock()
	filter := s.filter
	s.mu.RUnlock()

	if filter == nil {
		return true
	}
	for _, v := range values {
		if filter.TestString(v) {
			return true
		}
	}
	return false
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
