// Package config loads application configuration from the .env file family
// and the process environment.
//
// LoadEnv reads, from lowest to highest precedence:
//
//	.env
//	.env.local
//	.env.<environment>
//	.env.<environment>.local
//
// and the process environment overrides them all. Values may reference
// other variables (${BASE_URL}/api), including ones from files loaded
// earlier. Files are parsed by github.com/joho/godotenv.
//
// The resulting Env offers typed getters (String, Int, Bool, Duration,
// Strings), Public for PUBLIC_-prefixed client-safe values, and Parse to fill
// tagged structs through github.com/caarlos0/env/v11:
//
//	e, err := config.LoadEnv(".", "production")
//	if err != nil {
//		return err
//	}
//	var cfg elysium.Config
//	if err := config.Parse(&cfg, e); err != nil {
//		return err
//	}
//
// Load caches parsed structs per type for code that reads configuration
// from several places.
package config
