package autorouter

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Module registers the routes of a +server, +api or named handler file.
// The router it receives is scoped to the file's URL prefix.
//
//	func Posts(r *autorouter.Router) {
//		r.Get("/", listPosts)
//		r.Post("/", createPost)
//		r.Get("/:id", showPost)
//	}
type Module func(r *Router)

// Loader produces page data for a +page.server or +layout.server file.
// Its result is merged into the template data; returning an error renders
// the nearest +error page with the error's status.
type Loader func(r *http.Request) (map[string]any, error)

// Manifest maps route files, relative to the routes root with forward
// slashes, to the Go code serving them.
//
//	autorouter.Manifest{
//		Modules: map[string]autorouter.Module{"api/posts/+server.go": posts.Routes},
//		Loaders: map[string]autorouter.Loader{"blog/[slug]/+page.server.go": blog.Load},
//	}
type Manifest struct {
	Modules map[string]Module
	Loaders map[string]Loader
}

// Route is a method and chi pattern registered for a file.
type Route struct {
	Method  string
	Pattern string
	File    string
}

// Router registers routes below a fixed prefix. Patterns may use :name or
// chi's {name} placeholders.
type Router struct {
	prefix      string
	mux         chi.Router
	file        string
	catchAll    string
	middlewares chi.Middlewares
	record      func(Route)
}

// Prefix returns the chi pattern the router is scoped to.
func (r *Router) Prefix() string {
	return r.prefix
}

func (r *Router) join(pattern string) string {
	pattern = chiPattern(pattern)
	if pattern == "" || pattern == "/" {
		return r.prefix
	}
	if !strings.HasPrefix(pattern, "/") {
		pattern = "/" + pattern
	}
	if r.prefix == "/" {
		return pattern
	}
	return strings.TrimSuffix(r.prefix, "/") + pattern
}

// Method registers h for method at pattern below the prefix.
func (r *Router) Method(method, pattern string, h http.Handler) {
	full := r.join(pattern)
	h = r.wrap(h)
	r.mux.Method(method, full, h)
	r.record(Route{Method: method, Pattern: full, File: r.file})
}

// Handle registers h for all methods at pattern below the prefix.
func (r *Router) Handle(pattern string, h http.Handler) {
	full := r.join(pattern)
	r.mux.Handle(full, r.wrap(h))
	r.record(Route{Method: "*", Pattern: full, File: r.file})
}

func (r *Router) Get(pattern string, h http.HandlerFunc) {
	r.Method(http.MethodGet, pattern, h)
}

func (r *Router) Post(pattern string, h http.HandlerFunc) {
	r.Method(http.MethodPost, pattern, h)
}

func (r *Router) Put(pattern string, h http.HandlerFunc) {
	r.Method(http.MethodPut, pattern, h)
}

func (r *Router) Patch(pattern string, h http.HandlerFunc) {
	r.Method(http.MethodPatch, pattern, h)
}

func (r *Router) Delete(pattern string, h http.HandlerFunc) {
	r.Method(http.MethodDelete, pattern, h)
}

// With returns a router for the same prefix whose handlers run behind the
// given middlewares.
func (r *Router) With(middlewares ...func(http.Handler) http.Handler) *Router {
	sub := *r
	sub.middlewares = append(chi.Middlewares{}, r.middlewares...)
	sub.middlewares = append(sub.middlewares, middlewares...)
	return &sub
}

// Group calls fn with a router scoped to pattern below the prefix.
func (r *Router) Group(pattern string, fn func(r *Router)) {
	sub := *r
	sub.prefix = r.join(pattern)
	sub.middlewares = append(chi.Middlewares{}, r.middlewares...)
	fn(&sub)
}

func (r *Router) wrap(h http.Handler) http.Handler {
	if r.catchAll != "" {
		h = withCatchAll(r.catchAll, h)
	}
	if len(r.middlewares) > 0 {
		h = chi.Chain(r.middlewares...).Handler(h)
	}
	return h
}

type catchAllKey struct{}

func withCatchAll(name string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), catchAllKey{}, name)))
	})
}

// Param returns the value of a dynamic segment, including the name given
// to a [...name] catch-all.
func Param(r *http.Request, name string) string {
	if alias, ok := r.Context().Value(catchAllKey{}).(string); ok && alias == name {
		return chi.URLParam(r, "*")
	}
	return chi.URLParam(r, name)
}
