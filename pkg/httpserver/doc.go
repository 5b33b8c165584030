// Package httpserver runs an http.Handler with graceful shutdown,
// configurable timeouts, lifecycle hooks and health-check handlers.
//
// Run listens before it returns control to the hooks, so a bad address
// fails fast with ErrStart. It blocks until its context is cancelled, the
// process receives SIGINT or SIGTERM, or Shutdown is called, and then
// drains in-flight requests for up to the shutdown timeout.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	r.Get("/health/live", httpserver.LivenessHandler())
//	r.Get("/health/ready", httpserver.ReadinessHandler(log, map[string]httpserver.Check{
//		"store": store.Ping,
//	}))
//	if err := srv.Run(ctx, r); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Health responses use the standard {status, message, data} envelope.
package httpserver
