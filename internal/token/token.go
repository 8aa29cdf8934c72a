// Package token issues and verifies the signed bearer credentials that
// authenticate API requests.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrMalformed indicates the token could not be parsed or carries an
	// unusable subject claim.
	ErrMalformed = errors.New("token: malformed")
	// ErrExpired indicates the token expiry is in the past.
	ErrExpired = errors.New("token: expired")
	// ErrBadSignature indicates the signature does not match the secret.
	ErrBadSignature = errors.New("token: bad signature")
)

// Service issues and verifies HS256 signed tokens. The signing secret is
// process-wide configuration fixed at construction time.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService constructs a Service with the given secret and token lifetime.
func NewService(secret []byte, ttl time.Duration) *Service {
	return &Service{secret: secret, ttl: ttl, now: time.Now}
}

// WithClock overrides the time source. Used by tests to exercise expiry.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// TTL reports the configured token lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue produces a signed token asserting the given subject, valid from now
// until now plus the configured TTL.
func (s *Service) Issue(subject uuid.UUID) (string, error) {
	now := s.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   subject.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses and validates a signed token and returns the subject it
// asserts. Failures are classified as ErrBadSignature, ErrExpired or
// ErrMalformed.
func (s *Service) Verify(raw string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return uuid.Nil, ErrBadSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return uuid.Nil, ErrExpired
		default:
			return uuid.Nil, ErrMalformed
		}
	}
	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrMalformed
	}
	return subject, nil
}
