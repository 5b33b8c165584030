package handler

import (
	"bytes"
	"net/http"

	"github.com/a-h/templ"
)

// templResponse wraps a templ component to implement Response
type templResponse struct {
	component templ.Component
	status    int
}

// Render buffers the component so a failing render never leaves a
// half-written page with a 200 status behind.
func (t templResponse) Render(w http.ResponseWriter, r *http.Request) error {
	var buf bytes.Buffer
	if err := t.component.Render(r.Context(), &buf); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(t.status)
	_, err := buf.WriteTo(w)
	return err
}

// Templ renders a templ component as text/html with status 200.
// Compiled .els templates satisfy templ.Component through Template.Component.
//
//	return handler.Templ(page.Component(data))
func Templ(component templ.Component) Response {
	return templResponse{component: component, status: http.StatusOK}
}

// TemplWithStatus renders a templ component with a custom status code.
func TemplWithStatus(component templ.Component, status int) Response {
	return templResponse{component: component, status: status}
}

type templPartialResponse struct {
	partial templ.Component
	full    templ.Component
}

func (t templPartialResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if IsPartial(r) {
		return Templ(t.partial).Render(w, r)
	}
	return Templ(t.full).Render(w, r)
}

// TemplPartial renders partial for HTMX fragment requests and full otherwise.
func TemplPartial(partial, full templ.Component) Response {
	return templPartialResponse{partial: partial, full: full}
}
