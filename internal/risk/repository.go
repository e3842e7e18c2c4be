package risk

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
)

// BlacklistRepository is the flat set of blocked identifier values
// (phones, emails, IPs).
type BlacklistRepository interface {
	// AnyBlocked reports whether any of the values is on the blacklist.
	AnyBlocked(ctx context.Context, values []string) (bool, error)
	// AllValues streams every blocked value, used to warm the bloom
	// pre-screen at startup.
	AllValues(ctx context.Context) ([]string, error)
}

type blacklistRepository struct {
	db *sql.DB
}

func NewBlacklistRepository(db *sql.DB) BlacklistRepository {
	return &blacklistRepository{db: db}
}

func (r *blacklistRepository) AnyBlocked(ctx context.Context, values []string) (bool, error) {
	var blocked bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM blacklist WHERE value = ANY($1)
		)
	`, pq.Array(values)).Scan(&blocked)
	if err != nil {
		return false, err
	}
	return blocked, nil
}

func (r *blacklistRepository) AllValues(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT value FROM blacklist`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
