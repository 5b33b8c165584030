package jwt

import (
	"errors"
	"fmt"
	"maps"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Algorithm is the only signing method issued and accepted.
const Algorithm = "HS256"

// Claims is the token payload: registered claims (sub, iat, exp, iss, aud)
// plus arbitrary application fields.
type Claims map[string]any

// Subject returns the sub claim or an empty string.
func (c Claims) Subject() string {
	s, _ := c["sub"].(string)
	return s
}

// String returns a string claim or an empty string.
func (c Claims) String(key string) string {
	s, _ := c[key].(string)
	return s
}

// ExpiresAt returns the exp claim as a time, or zero when absent.
func (c Claims) ExpiresAt() time.Time {
	d, err := jwtlib.MapClaims(c).GetExpirationTime()
	if err != nil || d == nil {
		return time.Time{}
	}
	return d.Time
}

// IssuedAt returns the iat claim as a time, or zero when absent.
func (c Claims) IssuedAt() time.Time {
	d, err := jwtlib.MapClaims(c).GetIssuedAt()
	if err != nil || d == nil {
		return time.Time{}
	}
	return d.Time
}

// Service signs and verifies HS256 tokens with a single secret.
type Service struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// New creates a service. The secret should be at least 32 random bytes.
func New(secret string, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, ErrMissingSigningKey
	}
	s := &Service{
		secret: []byte(secret),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sign issues a token for claims. iat is always set; exp, iss and aud come
// from the service defaults unless overridden per call. The caller's map is
// not modified.
func (s *Service) Sign(claims Claims, opts ...SignOption) (string, error) {
	if claims == nil {
		return "", ErrMissingClaims
	}

	so := signOptions{
		ttl:      s.ttl,
		issuer:   s.issuer,
		audience: s.audience,
	}
	for _, opt := range opts {
		opt(&so)
	}

	now := s.now()
	payload := jwtlib.MapClaims(maps.Clone(claims))
	payload["iat"] = now.Unix()
	switch {
	case !so.expiresAt.IsZero():
		payload["exp"] = so.expiresAt.Unix()
	case so.ttl > 0:
		payload["exp"] = now.Add(so.ttl).Unix()
	}
	if so.issuer != "" {
		payload["iss"] = so.issuer
	}
	if so.audience != "" {
		payload["aud"] = so.audience
	}

	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, payload).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return token, nil
}

// Verify checks the signature, algorithm, expiry and, when configured, the
// issuer and audience, and returns the claims. Expired tokens yield
// ErrExpiredToken; every other failure yields ErrInvalidToken.
func (s *Service) Verify(token string) (Claims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	parserOpts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{Algorithm}),
		jwtlib.WithTimeFunc(s.now),
		jwtlib.WithIssuedAt(),
		jwtlib.WithStrictDecoding(),
	}
	if s.issuer != "" {
		parserOpts = append(parserOpts, jwtlib.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		parserOpts = append(parserOpts, jwtlib.WithAudience(s.audience))
	}

	claims := jwtlib.MapClaims{}
	_, err := jwtlib.ParseWithClaims(token, claims, func(*jwtlib.Token) (any, error) {
		return s.secret, nil
	}, parserOpts...)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, errors.Join(ErrExpiredToken, err)
		}
		return nil, errors.Join(ErrInvalidToken, err)
	}
	return Claims(claims), nil
}

// Decode returns the payload without verifying anything. Never trust its
// result for authorization.
func Decode(token string) (Claims, error) {
	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	return Claims(claims), nil
}
