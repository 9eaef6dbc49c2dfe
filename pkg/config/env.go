package config

// EnvPrefix is empty because every field carries its fully qualified envconfig name.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	PersistenceFile  = "file"
	PersistenceRedis = "redis"
	PersistenceSQL   = "sql"
)

const (
	EnvAppEnv      = "ALMAHRA_APP_ENV"
	EnvPort        = "ALMAHRA_APP_PORT"
	EnvLogLevel    = "ALMAHRA_LOG_LEVEL"
	EnvAPIURL      = "ALMAHRA_API_URL"
	EnvAPITimeout  = "ALMAHRA_API_TIMEOUT"
	EnvCartStore   = "ALMAHRA_CART_STORE"
	EnvCartFile    = "ALMAHRA_CART_FILE"
	EnvCartKey     = "ALMAHRA_CART_KEY"
	EnvDBDSN       = "ALMAHRA_DB_DSN"
	EnvDBDriver    = "ALMAHRA_DB_DRIVER"
	EnvRedisURL    = "ALMAHRA_REDIS_URL"
	EnvRedisAddr   = "ALMAHRA_REDIS_ADDR"
	EnvMetricsOn   = "ALMAHRA_METRICS_ENABLED"
	EnvMetricsPath = "ALMAHRA_METRICS_PATH"
	EnvCORSOrigins = "ALMAHRA_CORS_ORIGINS"
)
