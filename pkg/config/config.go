package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App         AppConfig
	Backend     BackendConfig
	Persistence PersistenceConfig
	DB          DBConfig
	Redis       RedisConfig
	Metrics     MetricsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Backend.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Persistence.validate(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"ALMAHRA_APP_ENV" required:"true"`
	Port         string   `envconfig:"ALMAHRA_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"ALMAHRA_LOG_LEVEL" default:"info"`
	LogFormat    string   `envconfig:"ALMAHRA_LOG_FORMAT" default:"json"`
	LogWarnStack bool     `envconfig:"ALMAHRA_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"ALMAHRA_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// BackendConfig points at the storefront REST API that owns authenticated carts.
type BackendConfig struct {
	BaseURL string        `envconfig:"ALMAHRA_API_URL" default:"http://localhost:5000/api"`
	Timeout time.Duration `envconfig:"ALMAHRA_API_TIMEOUT" default:"10s"`
}

func (b BackendConfig) validate() error {
	parsed, err := url.Parse(strings.TrimSpace(b.BaseURL))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvAPIURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url", EnvAPIURL)
	}
	return nil
}

// PersistenceConfig selects where the guest cart snapshot lives.
type PersistenceConfig struct {
	Driver   string `envconfig:"ALMAHRA_CART_STORE" default:"file"`
	FilePath string `envconfig:"ALMAHRA_CART_FILE" default:".almahra/cart.json"`
	Key      string `envconfig:"ALMAHRA_CART_KEY" default:"cart"`
}

func (p PersistenceConfig) validate(cfg Config) error {
	switch strings.ToLower(strings.TrimSpace(p.Driver)) {
	case PersistenceFile:
		if strings.TrimSpace(p.FilePath) == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvCartFile, EnvCartStore, PersistenceFile)
		}
	case PersistenceRedis:
		if cfg.Redis.URL == "" && cfg.Redis.Address == "" {
			return fmt.Errorf("%s or %s is required when %s=%s", EnvRedisURL, EnvRedisAddr, EnvCartStore, PersistenceRedis)
		}
	case PersistenceSQL:
		if cfg.DB.DSN == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvDBDSN, EnvCartStore, PersistenceSQL)
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvCartStore, p.Driver)
	}
	return nil
}

// NormalizedDriver returns the lower-cased persistence driver name.
func (p PersistenceConfig) NormalizedDriver() string {
	return strings.ToLower(strings.TrimSpace(p.Driver))
}

type DBConfig struct {
	DSN    string `envconfig:"ALMAHRA_DB_DSN"`
	Driver string `envconfig:"ALMAHRA_DB_DRIVER" default:"sqlite"`

	MaxOpenConns    int           `envconfig:"ALMAHRA_DB_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int           `envconfig:"ALMAHRA_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"ALMAHRA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ALMAHRA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	AutoMigrate     bool          `envconfig:"ALMAHRA_DB_AUTO_MIGRATE" default:"true"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ALMAHRA_REDIS_URL"`
	Address      string        `envconfig:"ALMAHRA_REDIS_ADDR"`
	Password     string        `envconfig:"ALMAHRA_REDIS_PASSWORD"`
	DB           int           `envconfig:"ALMAHRA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ALMAHRA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ALMAHRA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ALMAHRA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ALMAHRA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ALMAHRA_REDIS_WRITE_TIMEOUT" default:"5s"`
	SnapshotTTL  time.Duration `envconfig:"ALMAHRA_REDIS_SNAPSHOT_TTL" default:"720h"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"ALMAHRA_METRICS_ENABLED" default:"true"`
	Path    string `envconfig:"ALMAHRA_METRICS_PATH" default:"/metrics"`
}
