package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"zaqeen-be/internal/logger"
)

type Service interface {
	// Send dispatches a fresh 6-digit code to the phone and moves it to
	// OTP_SENT. Explicit resends replace the previous code.
	Send(ctx context.Context, phone string) error
	// Verify matches the submitted code. Success is terminal: the phone
	// becomes Verified and a signed proof token is returned. Failure keeps
	// the OTP_SENT state so the buyer can retry or resend.
	Verify(ctx context.Context, phone, code string) (string, error)
}

type service struct {
	repo   Repository
	sender Sender
	proofs *ProofIssuer
}

func NewService(repo Repository, sender Sender, proofs *ProofIssuer) Service {
	return &service{
		repo:   repo,
		sender: sender,
		proofs: proofs,
	}
}

func (s *service) Send(ctx context.Context, phone string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "SendOTP"),
		zap.String("phone", phone),
	)

	code, err := generateCode()
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.repo.Upsert(ctx, phone, string(hash), time.Now().Add(codeTTL)); err != nil {
		log.Error("failed to store verification code", zap.Error(err))
		return err
	}

	if err := s.sender.Send(ctx, phone, code); err != nil {
		log.Error("failed to dispatch otp", zap.Error(err))
		return err
	}

	log.Info("otp sent")
	return nil
}

func (s *service) Verify(ctx context.Context, phone, code string) (string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "VerifyOTP"),
		zap.String("phone", phone),
	)

	rec, err := s.repo.Get(ctx, phone)
	if err != nil {
		return "", err
	}

	if rec.State != StateOTPSent && rec.State != StateVerified {
		return "", ErrNotRequested
	}

	if time.Now().After(rec.ExpiresAt) {
		log.Info("otp expired")
		return "", ErrCodeExpired
	}

	if bcrypt.CompareHashAndPassword([]byte(rec.CodeHash), []byte(code)) != nil {
		if err := s.repo.IncrementAttempts(ctx, phone); err != nil {
			log.Error("failed to record failed attempt", zap.Error(err))
		}
		log.Info("otp mismatch", zap.Int("attempts", rec.Attempts+1))
		return "", ErrCodeMismatch
	}

	if err := s.repo.MarkVerified(ctx, phone); err != nil {
		log.Error("failed to mark phone verified", zap.Error(err))
		return "", err
	}

	proof, err := s.proofs.Issue(phone)
	if err != nil {
		return "", err
	}

	log.Info("phone verified")
	return proof, nil
}

// generateCode produces a 6-digit code with crypto randomness.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
