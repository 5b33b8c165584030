package binder

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// maxBodySize bounds JSON and form bodies.
const maxBodySize = 1 << 20

// JSON decodes application/json bodies. Requests without a body are not
// applicable, so the same handler can serve GET and POST.
func JSON() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
			return ErrNotApplicable
		}
		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mediaType != "application/json" {
			if mediaType == "" {
				return ErrNotApplicable
			}
			return badRequest(ErrUnsupportedMediaType, "expected application/json, got "+mediaType)
		}

		dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			if errors.Is(err, io.EOF) {
				return badRequest(ErrInvalidJSON, "empty JSON body")
			}
			return badRequest(ErrInvalidJSON, "invalid JSON body: "+err.Error())
		}
		if dec.More() {
			return badRequest(ErrInvalidJSON, "unexpected data after JSON object")
		}
		return nil
	}
}

// Form binds urlencoded and multipart form fields using `form` tags.
func Form() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		switch mediaType {
		case "application/x-www-form-urlencoded":
			r.Body = http.MaxBytesReader(nil, r.Body, maxBodySize)
			if err := r.ParseForm(); err != nil {
				return badRequest(ErrInvalidForm, err.Error())
			}
		case "multipart/form-data":
			if err := r.ParseMultipartForm(maxBodySize); err != nil {
				return badRequest(ErrInvalidForm, err.Error())
			}
		default:
			return ErrNotApplicable
		}
		if err := bindValues(v, "form", func(name string) []string { return r.PostForm[name] }); err != nil {
			if errors.Is(err, ErrInvalidTarget) {
				return err
			}
			return badRequest(ErrInvalidForm, err.Error())
		}
		return nil
	}
}

// Query binds URL query parameters using `query` tags.
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		q := r.URL.Query()
		if err := bindValues(v, "query", func(name string) []string { return q[name] }); err != nil {
			if errors.Is(err, ErrInvalidTarget) {
				return err
			}
			return badRequest(ErrInvalidQuery, err.Error())
		}
		return nil
	}
}

// Path binds chi URL parameters using `path` tags.
func Path() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		rctx := chi.RouteContext(r.Context())
		if rctx == nil {
			return ErrNotApplicable
		}
		err := bindValues(v, "path", func(name string) []string {
			if val := rctx.URLParam(name); val != "" {
				return []string{val}
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, ErrInvalidTarget) {
				return err
			}
			return badRequest(ErrInvalidPath, err.Error())
		}
		return nil
	}
}
