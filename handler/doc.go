// Package handler provides type-safe HTTP handlers and the standard
// response shapes of Elysium applications.
//
// Handlers are generic functions that receive a bound request value and
// return a Response:
//
//	type CreatePost struct {
//		Title string `json:"title"`
//	}
//
//	func create(ctx handler.Context, req CreatePost) handler.Response {
//		if req.Title == "" {
//			return handler.Error(handler.ValidationError{"title": {"is required"}})
//		}
//		return handler.Created(store.Add(req), "Post created")
//	}
//
//	r.Post("/posts", handler.Wrap(create,
//		handler.WithBinders[handler.Context, CreatePost](binder.JSON()),
//	))
//
// # Envelopes
//
// Successful API responses use {status, message, data}; Success reflects
// the status in both the envelope and the HTTP status code, and NoContent
// writes 204 without a body. Errors use {error, message, statusCode} where
// error is the taxonomy kind name from package httperror. Unknown errors are
// logged and surface as a generic 500.
//
// # HTML
//
// Templ renders any templ.Component. HTMX requests are detected with IsHTMX
// and IsPartial; Redirect sets HX-Redirect for them. Errors raised during an
// HTMX request render as an inline <div class="els-error"> fragment.
package handler
