package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Context is what a typed handler receives: the request context together
// with the request, its writer and the matched route params.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	// Param returns a chi URL param such as {id}; empty when absent.
	Param(name string) string
	// Partial reports an HTMX request that expects a fragment.
	Partial() bool
}

// NewContext binds w and r. The context is the request context at the time
// of the call.
func NewContext(w http.ResponseWriter, r *http.Request) Context {
	return &requestContext{Context: r.Context(), w: w, r: r}
}

type requestContext struct {
	context.Context
	w http.ResponseWriter
	r *http.Request
}

func (c *requestContext) Request() *http.Request              { return c.r }
func (c *requestContext) ResponseWriter() http.ResponseWriter { return c.w }
func (c *requestContext) Partial() bool                       { return IsPartial(c.r) }

func (c *requestContext) Param(name string) string {
	return chi.URLParam(c.r, name)
}
