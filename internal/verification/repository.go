package verification

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type Repository interface {
	// Upsert stores a freshly sent code, overwriting any previous one for
	// the phone. Resends go through the same path.
	Upsert(ctx context.Context, phone, codeHash string, expiresAt time.Time) error
	Get(ctx context.Context, phone string) (*Record, error)
	MarkVerified(ctx context.Context, phone string) error
	IncrementAttempts(ctx context.Context, phone string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Upsert(ctx context.Context, phone, codeHash string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO phone_verifications (phone, code_hash, state, attempts, expires_at, updated_at)
		VALUES ($1, $2, 'OTP_SENT', 0, $3, NOW())
		ON CONFLICT (phone) DO UPDATE
		SET code_hash = EXCLUDED.code_hash,
		    state = 'OTP_SENT',
		    attempts = 0,
		    expires_at = EXCLUDED.expires_at,
		    updated_at = NOW()
	`, phone, codeHash, expiresAt)
	return err
}

func (r *repository) Get(ctx context.Context, phone string) (*Record, error) {
	var rec Record
	err := r.db.QueryRowContext(ctx, `
		SELECT phone, code_hash, state, attempts, expires_at, updated_at
		FROM phone_verifications
		WHERE phone = $1
	`, phone).Scan(
		&rec.Phone,
		&rec.CodeHash,
		&rec.State,
		&rec.Attempts,
		&rec.ExpiresAt,
		&rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotRequested
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repository) MarkVerified(ctx context.Context, phone string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE phone_verifications
		SET state = 'VERIFIED', updated_at = NOW()
		WHERE phone = $1
	`, phone)
	return err
}

func (r *repository) IncrementAttempts(ctx context.Context, phone string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE phone_verifications
		SET attempts = attempts + 1, updated_at = NOW()
		WHERE phone = $1
	`, phone)
	return err
}
