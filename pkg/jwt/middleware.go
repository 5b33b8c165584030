package jwt

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/elysium/handler"
	"github.com/dmitrymomot/elysium/pkg/httperror"
	"github.com/dmitrymomot/elysium/pkg/logger"
)

// TokenExtractorFunc pulls a raw token out of a request.
type TokenExtractorFunc func(r *http.Request) (string, error)

// SkipFunc reports whether a request bypasses verification.
type SkipFunc func(r *http.Request) bool

// MiddlewareConfig configures Middleware.
type MiddlewareConfig struct {
	Service *Service
	// Extractors are tried in order; the first token found wins.
	// Defaults to BearerTokenExtractor.
	Extractors []TokenExtractorFunc
	Skip       SkipFunc
	Logger     *slog.Logger
}

// Middleware verifies Bearer tokens and stores the claims in the request
// context. Failures are answered with the Unauthorized error envelope.
func Middleware(service *Service) func(next http.Handler) http.Handler {
	return MiddlewareWithConfig(MiddlewareConfig{Service: service})
}

// MiddlewareWithConfig is Middleware with custom extraction and skipping.
func MiddlewareWithConfig(cfg MiddlewareConfig) func(next http.Handler) http.Handler {
	if len(cfg.Extractors) == 0 {
		cfg.Extractors = []TokenExtractorFunc{BearerTokenExtractor}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	log := cfg.Logger.With(logger.Component("jwt"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			token, err := extract(r, cfg.Extractors)
			if err != nil {
				handler.WriteError(w, r, httperror.Wrap(httperror.KindUnauthorized, err), log)
				return
			}

			claims, err := cfg.Service.Verify(token)
			if err != nil {
				msg := "Invalid token"
				if errors.Is(err, ErrExpiredToken) {
					msg = "Token expired"
				}
				e := httperror.Unauthorized(msg)
				e.Cause = err
				handler.WriteError(w, r, e, log)
				return
			}

			ctx := SetToken(r.Context(), token)
			ctx = SetClaims(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extract(r *http.Request, extractors []TokenExtractorFunc) (string, error) {
	for _, ex := range extractors {
		if token, err := ex(r); err == nil && token != "" {
			return token, nil
		}
	}
	return "", ErrMissingToken
}

// BearerTokenExtractor reads "Authorization: Bearer <token>".
func BearerTokenExtractor(r *http.Request) (string, error) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}

// CookieTokenExtractor reads the token from a cookie.
func CookieTokenExtractor(name string) TokenExtractorFunc {
	return func(r *http.Request) (string, error) {
		cookie, err := r.Cookie(name)
		if err != nil || cookie.Value == "" {
			return "", ErrMissingToken
		}
		return cookie.Value, nil
	}
}

// QueryTokenExtractor reads the token from a query parameter. Tokens in URLs
// end up in access logs.
func QueryTokenExtractor(param string) TokenExtractorFunc {
	return func(r *http.Request) (string, error) {
		token := r.URL.Query().Get(param)
		if token == "" {
			return "", ErrMissingToken
		}
		return token, nil
	}
}

// HeaderTokenExtractor reads the token from a custom header.
func HeaderTokenExtractor(name string) TokenExtractorFunc {
	return func(r *http.Request) (string, error) {
		token := r.Header.Get(name)
		if token == "" {
			return "", ErrMissingToken
		}
		return token, nil
	}
}
