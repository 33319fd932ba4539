package config

const (
	EnvPrefix = "MISE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "MISE_APP_ENV"
	EnvPort     = "MISE_APP_PORT"
	EnvLogLevel = "MISE_LOG_LEVEL"

	EnvDBDSN  = "MISE_DB_DSN"
	EnvDBHost = "MISE_DB_HOST"
	EnvDBUser = "MISE_DB_USER"
	EnvDBName = "MISE_DB_NAME"

	EnvRedisURL = "MISE_REDIS_URL"

	EnvJWTSecret = "MISE_JWT_SECRET"
	EnvJWTIssuer = "MISE_JWT_ISSUER"

	EnvCompletionAPIKey  = "MISE_COMPLETION_API_KEY"
	EnvCompletionBaseURL = "MISE_COMPLETION_BASE_URL"
	EnvCompletionModel   = "MISE_COMPLETION_MODEL"

	EnvUseSQLite = "MISE_USE_SQLITE"
)

var dbPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
