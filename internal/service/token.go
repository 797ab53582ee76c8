package service

import (
	"errors"
	"fmt"
	"time"

	"hostel-portal/internal/domain"

	"github.com/golang-jwt/jwt/v4"
)

// Claims is the session token payload. Subject is the admin's e-mail or the
// student's application number.
type Claims struct {
	Role string `json:"role"`
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token and its expiry.
func (t *TokenIssuer) Issue(subject, role, name string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	claims := Claims{
		Role: role,
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			Issuer:    "hostel-portal",
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies signature, algorithm and expiry. Every failure wraps
// domain.ErrUnauthorized.
func (t *TokenIssuer) Parse(raw string) (*Claims, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: missing token", domain.ErrUnauthorized)
	}
	claims := &Claims{}
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	tok, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: session expired", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}
	if !tok.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}
	if claims.Role != domain.RoleAdmin && claims.Role != domain.RoleStudent {
		return nil, fmt.Errorf("%w: unknown role", domain.ErrUnauthorized)
	}
	return claims, nil
}

// Refresh re-issues a still-valid token with a new expiry.
func (t *TokenIssuer) Refresh(raw string) (string, time.Time, *Claims, error) {
	claims, err := t.Parse(raw)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	signed, exp, err := t.Issue(claims.Subject, claims.Role, claims.Name)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	return signed, exp, claims, nil
}
