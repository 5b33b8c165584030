// Package logger builds log/slog loggers for Elysium applications.
//
// New returns a *slog.Logger configured through functional options. Output
// is JSON by default; WithEnvironment switches to text at debug level for
// development. WithFile adds a file sink next to the console so the same
// record lands in both:
//
//	f, err := logger.OpenFile("var/log/app.log")
//	if err != nil {
//		return err
//	}
//	defer f.Close()
//
//	log := logger.New(
//		logger.WithEnvironment(environment.Development, "blog"),
//		logger.WithFile(f),
//		logger.WithContextExtractors(requestIDExtractor),
//	)
//
// Context extractors run for every record so request-scoped values such as
// request IDs are always current. The attribute helpers (Error, Component,
// Route, Task, ...) keep key names consistent across packages.
package logger
