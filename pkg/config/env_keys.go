package config

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "REGISTROPOL"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "REGISTROPOL_APP_ENV"
	EnvPort     = "REGISTROPOL_APP_PORT"
	EnvDBDSN    = "REGISTROPOL_DB_DSN"
	EnvDBHost   = "REGISTROPOL_DB_HOST"
	EnvDBUser   = "REGISTROPOL_DB_USER"
	EnvDBName   = "REGISTROPOL_DB_NAME"
	EnvRedisURL = "REGISTROPOL_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
