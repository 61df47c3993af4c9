package config

const EnvPrefix = "SUPPLYDESK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv    = "SUPPLYDESK_APP_ENV"
	EnvPort      = "SUPPLYDESK_APP_PORT"
	EnvDBDSN     = "SUPPLYDESK_DB_DSN"
	EnvDBHost    = "SUPPLYDESK_DB_HOST"
	EnvDBUser    = "SUPPLYDESK_DB_USER"
	EnvDBName    = "SUPPLYDESK_DB_NAME"
	EnvRedisURL  = "SUPPLYDESK_REDIS_URL"
	EnvJWTSecret = "SUPPLYDESK_JWT_SECRET"
	EnvJWTIssuer = "SUPPLYDESK_JWT_ISSUER"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
