// Package middleware holds the HTTP middleware the application installs on
// every request: request correlation IDs, request logging, panic recovery
// and CORS.
//
//	r := chi.NewRouter()
//	r.Use(
//		middleware.RequestID,
//		middleware.Logger(log),
//		middleware.Recoverer(log),
//		middleware.CORS(middleware.DefaultCORSConfig()),
//	)
package middleware
