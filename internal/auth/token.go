// Package auth implements the token service and the access control gate that
// every protected endpoint passes through.
package auth

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClass partitions tokens into the two lifecycle roles. An access token
// is never accepted where a refresh token is required, and vice versa.
type TokenClass string

const (
	ClassAccess  TokenClass = "access"
	ClassRefresh TokenClass = "refresh"
)

var (
	ErrTokenExpired    = errors.New("token expired")
	ErrTokenInvalid    = errors.New("token invalid")
	ErrWrongTokenClass = errors.New("wrong token class")
)

// Claims carries the registered claims plus the token class.
type Claims struct {
	jwt.RegisteredClaims
	Class TokenClass `json:"class"`
}

type TokenConfig struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenConfigFromEnv reads the signing secret and TTL overrides from env vars.
// The access TTL is deliberately short so a leaked access token has a narrow
// exposure window and clients exercise the refresh flow.
func TokenConfigFromEnv() (TokenConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return TokenConfig{}, errors.New("JWT_SECRET is required")
	}
	cfg := TokenConfig{
		Secret:     []byte(secret),
		AccessTTL:  time.Minute,
		RefreshTTL: 72 * time.Hour,
	}
	if v := os.Getenv("JWT_ACCESS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return TokenConfig{}, fmt.Errorf("parse JWT_ACCESS_TTL: %w", err)
		}
		cfg.AccessTTL = d
	}
	if v := os.Getenv("JWT_REFRESH_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return TokenConfig{}, fmt.Errorf("parse JWT_REFRESH_TTL: %w", err)
		}
		cfg.RefreshTTL = d
	}
	return cfg, nil
}

// TokenService issues and validates signed, self-contained tokens. Tokens are
// stateless: nothing is persisted server-side, lifecycle is implicit in the
// expiry timestamp and signature.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(cfg TokenConfig) *TokenService {
	return &TokenService{secret: cfg.Secret, accessTTL: cfg.AccessTTL, refreshTTL: cfg.RefreshTTL}
}

// IssueAccess creates a signed short-lived access token for the subject.
func (s *TokenService) IssueAccess(subject string) (string, time.Time, error) {
	return s.issue(subject, ClassAccess, s.accessTTL)
}

// IssueRefresh creates a signed long-lived refresh token for the subject.
func (s *TokenService) IssueRefresh(subject string) (string, time.Time, error) {
	return s.issue(subject, ClassRefresh, s.refreshTTL)
}

func (s *TokenService) issue(subject string, class TokenClass, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Class: class,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	return signed, exp, err
}

// Verify checks signature and expiry and that the token carries the expected
// class. It returns the token subject on success.
func (s *TokenService) Verify(tokenString string, expected TokenClass) (string, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if !tok.Valid {
		return "", ErrTokenInvalid
	}
	if claims.Class != expected {
		return "", ErrWrongTokenClass
	}
	return claims.Subject, nil
}
