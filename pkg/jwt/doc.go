// Package jwt signs and verifies HS256 JSON Web Tokens on top of
// github.com/golang-jwt/jwt/v5, and provides HTTP middleware and context
// helpers for the verified claims.
//
//	svc, err := jwt.New(cfg.JWTSecret, jwt.WithIssuer("my-app"), jwt.WithTTL(time.Hour))
//	token, err := svc.Sign(jwt.Claims{"sub": user.ID, "role": "admin"})
//	claims, err := svc.Verify(token) // ErrExpiredToken or ErrInvalidToken on failure
//
// Only HS256 is issued and accepted. Middleware answers missing or invalid
// tokens with the Unauthorized error envelope and stores the claims for
// GetClaims and GetClaimsAs.
package jwt
