package config

// EnvPrefix namespaces every environment variable the backend reads.
const EnvPrefix = "OPTICA"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names, kept in one place so tests and deploy manifests
// agree with the envconfig tags below.
const (
	EnvAppEnv   = "OPTICA_APP_ENV"
	EnvPort     = "OPTICA_APP_PORT"
	EnvLogLevel = "OPTICA_LOG_LEVEL"

	EnvDBDSN      = "OPTICA_DB_DSN"
	EnvDBHost     = "OPTICA_DB_HOST"
	EnvDBUser     = "OPTICA_DB_USER"
	EnvDBName     = "OPTICA_DB_NAME"
	EnvRedisURL   = "OPTICA_REDIS_URL"
	EnvRedisAddr  = "OPTICA_REDIS_ADDR"
	EnvUseSQLite  = "OPTICA_USE_SQLITE"
	EnvSQLitePath = "OPTICA_SQLITE_PATH"

	EnvJWTAccessSecret   = "OPTICA_JWT_ACCESS_SECRET"
	EnvJWTRefreshSecret  = "OPTICA_JWT_REFRESH_SECRET"
	EnvJWTIssuer         = "OPTICA_JWT_ISSUER"
	EnvJWTAudience       = "OPTICA_JWT_AUDIENCE"
	EnvJWTAccessExpMins  = "OPTICA_JWT_ACCESS_EXPIRATION_MINUTES"
	EnvJWTRefreshExpDays = "OPTICA_JWT_REFRESH_EXPIRATION_DAYS"

	EnvBcryptCost       = "OPTICA_BCRYPT_COST"
	EnvMaxLoginAttempts = "OPTICA_MAX_LOGIN_ATTEMPTS"
	EnvLockoutWindow    = "OPTICA_LOCKOUT_WINDOW"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
