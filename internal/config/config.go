package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Normalizer NormalizerConfig
	Metrics    MetricsConfig
	Log        LogConfig
}

type AppConfig struct {
	AppName       string `env:"APP_NAME,required"`
	Environment   string `env:"APP_ENV,required"`
	HTTPPort      string `env:"HTTP_PORT,required"`
	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"migrations"`
	SeedTaxonomy  bool   `env:"SEED_TAXONOMY" envDefault:"false"`
}

func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(a.Environment), "production")
}

type DatabaseConfig struct {
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBName     string `env:"DB_NAME"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBSSLMode  string `env:"DB_SSL_MODE" envDefault:"disable"`

	ConnectTimeout        time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"5s"`
	PoolMaxConns          int32         `env:"DB_POOL_MAX_CONNS"`
	PoolMinConns          int32         `env:"DB_POOL_MIN_CONNS"`
	PoolMaxConnLifetime   time.Duration `env:"DB_POOL_MAX_CONN_LIFETIME"`
	PoolMaxConnIdleTime   time.Duration `env:"DB_POOL_MAX_CONN_IDLE_TIME"`
	PoolHealthCheckPeriod time.Duration `env:"DB_POOL_HEALTH_CHECK_PERIOD"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	TTL      time.Duration `env:"REDIS_TTL" envDefault:"10m"`
	Disabled bool          `env:"REDIS_DISABLED" envDefault:"false"`
}

// AuthConfig holds the shared secret of the external identity provider. An
// empty secret leaves the API unauthenticated.
type AuthConfig struct {
	AccessSecret string `env:"JWT_ACCESS_SECRET"`
}

type NormalizerConfig struct {
	ConfidenceThreshold float64 `env:"NORMALIZER_CONFIDENCE_THRESHOLD" envDefault:"0.7"`
	MaxMatches          int     `env:"NORMALIZER_MAX_MATCHES" envDefault:"5"`
	BatchSize           int     `env:"NORMALIZER_BATCH_SIZE" envDefault:"5"`
}

type MetricsConfig struct {
	Enabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	Path    string `env:"METRICS_PATH" envDefault:"/metrics"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

var errInvalidConfig = errors.New("invalid configuration")

var envFiles = []string{".env", ".env.local"}

// Load reads optional .env files and then parses the process environment.
func Load() (Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return Config{}, err
	}
	return parse(env.Options{})
}

// LoadFrom parses the given environment only, ignoring the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) {
			missing := make([]string, 0, len(aggErr.Errors))
			for _, e := range aggErr.Errors {
				var reqErr env.VarIsNotSetError
				if errors.As(e, &reqErr) {
					missing = append(missing, reqErr.Key)
				}
			}
			if len(missing) > 0 {
				return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
			}
		}
		return Config{}, errors.Wrap(err, "parse environment")
	}

	cfg.App.AppName = strings.TrimSpace(cfg.App.AppName)
	cfg.App.HTTPPort = strings.TrimSpace(cfg.App.HTTPPort)

	if err := cfg.Normalizer.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (n NormalizerConfig) validate() error {
	if n.ConfidenceThreshold < 0 || n.ConfidenceThreshold > 1 {
		return fmt.Errorf("%w: NORMALIZER_CONFIDENCE_THRESHOLD must be within [0,1], got %v", errInvalidConfig, n.ConfidenceThreshold)
	}
	if n.MaxMatches < 0 {
		return fmt.Errorf("%w: NORMALIZER_MAX_MATCHES must be non-negative, got %d", errInvalidConfig, n.MaxMatches)
	}
	if n.BatchSize < 0 {
		return fmt.Errorf("%w: NORMALIZER_BATCH_SIZE must be non-negative, got %d", errInvalidConfig, n.BatchSize)
	}
	return nil
}

func loadEnvFiles(files []string) error {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return errors.Wrap(godotenv.Load(existing...), "load env files")
}
