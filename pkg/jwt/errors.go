package jwt

import "errors"

var (
	ErrInvalidToken      = errors.New("jwt: invalid token")
	ErrExpiredToken      = errors.New("jwt: token is expired")
	ErrMissingSigningKey = errors.New("jwt: missing signing key")
	ErrMissingClaims     = errors.New("jwt: missing claims")
	ErrMissingToken      = errors.New("jwt: missing token")
	ErrInvalidClaims     = errors.New("jwt: invalid claims")
)
