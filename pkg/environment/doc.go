// Package environment carries the current application environment
// (development, staging, production, test) through context.Context, HTTP
// requests and structured logs.
//
// Parse normalises the common spellings ("prod", "dev", "stage") used in
// APP_ENV values:
//
//	env := environment.Parse(os.Getenv("APP_ENV"))
//	if env.IsProduction() {
//		// production-specific behaviour
//	}
//
// Middleware attaches the environment to every request context, and
// LoggerExtractor exposes it to the logger package so each record carries an
// "env" attribute.
package environment
