package jwt

import (
	"context"
	"encoding/json"
	"fmt"
)

type contextKey struct{ name string }

func (c contextKey) String() string { return c.name }

var (
	tokenContextKey  = &contextKey{name: "jwt"}
	claimsContextKey = &contextKey{name: "jwt_claims"}
)

// SetToken stores the raw token string in the context.
func SetToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// SetClaims stores verified claims in the context.
func SetClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// GetToken returns the raw token stored by the middleware.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey).(string)
	return token, ok
}

// GetClaims returns the verified claims stored by the middleware.
func GetClaims(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(Claims)
	return claims, ok
}

// GetClaimsAs decodes the context claims into a struct via JSON, e.g. a type
// embedding jwt.RegisteredClaims from golang-jwt.
func GetClaimsAs[T any](ctx context.Context) (T, error) {
	var out T
	claims, ok := GetClaims(ctx)
	if !ok {
		return out, ErrMissingClaims
	}
	raw, err := json.Marshal(claims)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	}
	return out, nil
}
