package jwt

import "time"

// DefaultTTL is the token lifetime when none is configured.
const DefaultTTL = 24 * time.Hour

// Option configures a Service.
type Option func(*Service)

// WithIssuer sets the iss claim on issued tokens and requires it on verify.
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		s.issuer = issuer
	}
}

// WithAudience sets the aud claim on issued tokens and requires it on verify.
func WithAudience(audience string) Option {
	return func(s *Service) {
		s.audience = audience
	}
}

// WithTTL sets the default lifetime. Zero issues tokens without exp.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

// WithClock replaces time.Now for both signing and verification.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

type signOptions struct {
	ttl       time.Duration
	expiresAt time.Time
	issuer    string
	audience  string
}

// SignOption overrides service defaults for a single token.
type SignOption func(*signOptions)

// SignWithTTL sets the lifetime of this token.
func SignWithTTL(ttl time.Duration) SignOption {
	return func(o *signOptions) {
		o.ttl = ttl
	}
}

// SignWithExpiresAt sets an absolute expiry; it wins over any TTL.
func SignWithExpiresAt(t time.Time) SignOption {
	return func(o *signOptions) {
		o.expiresAt = t
	}
}

// SignWithIssuer overrides the iss claim.
func SignWithIssuer(issuer string) SignOption {
	return func(o *signOptions) {
		o.issuer = issuer
	}
}

// SignWithAudience overrides the aud claim.
func SignWithAudience(audience string) SignOption {
	return func(o *signOptions) {
		o.audience = audience
	}
}
