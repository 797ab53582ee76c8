package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"hostel-portal/internal/domain"
	"hostel-portal/internal/store"

	"go.uber.org/zap"
)

// OTP purposes; each has its own key space.
const (
	OTPRegister = "register"
	OTPLogin    = "login"
)

// OTPManager issues single-use six-digit codes kept in the KV store.
type OTPManager struct {
	kv          store.KV
	ttl         time.Duration
	maxAttempts int
	logger      *zap.Logger
}

func NewOTPManager(kv store.KV, ttl time.Duration, maxAttempts int, logger *zap.Logger) *OTPManager {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &OTPManager{kv: kv, ttl: ttl, maxAttempts: maxAttempts, logger: logger}
}

func otpKey(purpose, email string) string      { return "otp:" + purpose + ":" + email }
func attemptsKey(purpose, email string) string { return "otp:" + purpose + ":" + email + ":attempts" }

// TTL is how long an issued code stays valid.
func (m *OTPManager) TTL() time.Duration { return m.ttl }

// Issue replaces any outstanding code for (purpose, email).
func (m *OTPManager) Issue(ctx context.Context, purpose, email string) (string, error) {
	code, err := generateOTP()
	if err != nil {
		return "", err
	}
	if err := m.kv.Del(ctx, attemptsKey(purpose, email)); err != nil {
		return "", fmt.Errorf("reset otp attempts: %w", err)
	}
	if err := m.kv.Set(ctx, otpKey(purpose, email), code, m.ttl); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return code, nil
}

// Verify consumes the code on success. After maxAttempts wrong guesses the
// code is discarded and a new one must be requested.
func (m *OTPManager) Verify(ctx context.Context, purpose, email, code string) error {
	want, err := m.kv.Get(ctx, otpKey(purpose, email))
	if errors.Is(err, store.ErrMiss) {
		return fmt.Errorf("%w: OTP expired or not requested", domain.ErrUnauthorized)
	}
	if err != nil {
		return fmt.Errorf("load otp: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(want), []byte(code)) == 1 {
		if err := m.kv.Del(ctx, otpKey(purpose, email), attemptsKey(purpose, email)); err != nil {
			m.logger.Warn("failed to discard used OTP", zap.String("purpose", purpose), zap.Error(err))
		}
		return nil
	}

	n, err := m.kv.Incr(ctx, attemptsKey(purpose, email), m.ttl)
	if err != nil {
		return fmt.Errorf("count otp attempts: %w", err)
	}
	if int(n) >= m.maxAttempts {
		_ = m.kv.Del(ctx, otpKey(purpose, email), attemptsKey(purpose, email))
		m.logger.Info("OTP discarded after too many attempts", zap.String("purpose", purpose), zap.String("email", email))
		return fmt.Errorf("%w: too many invalid attempts, request a new OTP", domain.ErrUnauthorized)
	}
	return fmt.Errorf("%w: invalid OTP", domain.ErrUnauthorized)
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
