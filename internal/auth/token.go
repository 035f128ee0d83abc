package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer is stamped into every token and required on verification.
const Issuer = "movies-api"

var (
	// ErrTokenMissing indicates no token was supplied.
	ErrTokenMissing = errors.New("auth: token missing")
	// ErrTokenMalformed indicates the token could not be decoded.
	ErrTokenMalformed = errors.New("auth: token malformed")
	// ErrTokenExpired indicates the token is past its expiration time.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrTokenInvalid covers bad signatures, unexpected algorithms and unusable claims.
	ErrTokenInvalid = errors.New("auth: token invalid")
)

// Claims is the payload carried by an access token.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// Token is a signed access token and the moment it stops being accepted.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// TokenManager issues and verifies HMAC-signed access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option customizes a TokenManager.
type Option func(*TokenManager)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *TokenManager) {
		m.now = now
	}
}

// NewTokenManager validates the secret and TTL and returns a ready manager.
func NewTokenManager(secret string, ttl time.Duration, opts ...Option) (*TokenManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret cannot be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive")
	}
	m := &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// TTL reports how long issued tokens stay valid.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for userID that expires after the configured TTL.
func (m *TokenManager) Issue(userID int64) (Token, error) {
	issuedAt := m.now().UTC()
	expiresAt := issuedAt.Add(m.ttl)
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	// NumericDate has second precision; report what the verifier will enforce.
	return Token{Value: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Parse verifies the signature, issuer and expiration of raw and returns its claims.
func (m *TokenManager) Parse(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrTokenMissing
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS512.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
		}
	}
	if claims.UserID <= 0 {
		return nil, fmt.Errorf("%w: missing user_id", ErrTokenInvalid)
	}
	return claims, nil
}
