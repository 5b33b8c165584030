// Package binder populates request structs from JSON bodies, form data,
// query strings and chi path parameters.
//
// Binders are plain functions used with handler.WithBinders:
//
//	type UpdatePost struct {
//		ID    string `path:"id"`
//		Draft bool   `query:"draft"`
//		Title string `json:"title"`
//	}
//
//	r.Put("/posts/{id}", handler.Wrap(update,
//		handler.WithBinders[handler.Context, UpdatePost](binder.Path(), binder.Query(), binder.JSON()),
//	))
//
// Malformed input yields a BadRequest taxonomy error, so the global error
// handler answers with a 400 envelope. Binders that have nothing to read
// return ErrNotApplicable and are skipped.
package binder
