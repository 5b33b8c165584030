package elysium

import (
	"errors"
	"time"

	"github.com/dmitrymomot/elysium/pkg/config"
	"github.com/dmitrymomot/elysium/pkg/environment"
	"github.com/dmitrymomot/elysium/pkg/httpserver"
)

// Config is the application configuration, read from the environment.
type Config struct {
	Name      string `env:"APP_NAME" envDefault:"elysium"`
	Env       string `env:"APP_ENV" envDefault:"development"`
	Version   string `env:"APP_VERSION" envDefault:"0.1.0"`
	RoutesDir string `env:"ROUTES_DIR" envDefault:"routes"`
	// Watch recompiles templates on change. Defaults to on in development.
	Watch *bool `env:"ROUTES_WATCH"`

	// OpenAPIPath serves a JSON listing of the routes table. Empty disables it.
	OpenAPIPath string `env:"OPENAPI_PATH" envDefault:"/openapi.json"`

	HTTP httpserver.Config

	JWTSecret   string        `env:"JWT_SECRET"`
	JWTIssuer   string        `env:"JWT_ISSUER"`
	JWTAudience string        `env:"JWT_AUDIENCE"`
	JWTTTL      time.Duration `env:"JWT_TTL" envDefault:"24h"`

	LogLevel string `env:"LOG_LEVEL"`
	LogFile  string `env:"LOG_FILE"`

	CORSOrigins     []string `env:"CORS_ORIGINS" envSeparator:","`
	CORSCredentials bool     `env:"CORS_CREDENTIALS"`

	// RateLimitRPS enables per-client rate limiting when positive.
	RateLimitRPS   int `env:"RATE_LIMIT_RPS"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST"`
}

// Environment returns the parsed APP_ENV.
func (c Config) Environment() environment.Environment {
	return environment.Parse(c.Env)
}

func (c Config) watch() bool {
	if c.Watch != nil {
		return *c.Watch
	}
	return c.Environment().IsDevelopment()
}

// LoadConfig reads the .env file family from dir and parses Config from
// it. APP_ENV, from the process or the base files, selects the
// environment-specific files.
func LoadConfig(dir string) (Config, *config.Env, error) {
	base, err := config.LoadEnv(dir, "")
	if err != nil {
		return Config{}, nil, errors.Join(ErrInvalidConfig, err)
	}
	env := base
	if name := base.String("APP_ENV", ""); name != "" {
		env, err = config.LoadEnv(dir, environment.Parse(name).String())
		if err != nil {
			return Config{}, nil, errors.Join(ErrInvalidConfig, err)
		}
	}

	var cfg Config
	if err := config.Parse(&cfg, env); err != nil {
		return Config{}, nil, errors.Join(ErrInvalidConfig, err)
	}
	return cfg, env, nil
}
