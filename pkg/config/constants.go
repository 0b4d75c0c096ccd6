package config

// EnvPrefix is handed to envconfig; every field sets an explicit envconfig name.
const EnvPrefix = "POS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	CookieSecureAuto   = "auto"
	CookieSecureAlways = "always"
	CookieSecureNever  = "never"

	SameSiteLax    = "lax"
	SameSiteStrict = "strict"
	SameSiteNone   = "none"
)

const (
	EnvAppEnv         = "POS_APP_ENV"
	EnvPort           = "POS_APP_PORT"
	EnvBaseURL        = "POS_BASE_URL"
	EnvDBDSN          = "POS_DB_DSN"
	EnvDBDriver       = "POS_DB_DRIVER"
	EnvDBHost         = "POS_DB_HOST"
	EnvDBUser         = "POS_DB_USER"
	EnvDBName         = "POS_DB_NAME"
	EnvDBPassword     = "POS_DB_PASSWORD"
	EnvRedisURL       = "POS_REDIS_URL"
	EnvJWTSecret      = "POS_JWT_SECRET"
	EnvJWTExpMins     = "POS_JWT_EXPIRATION_MINUTES"
	EnvBcryptCost     = "POS_BCRYPT_COST"
	EnvCookieName     = "POS_COOKIE_NAME"
	EnvCookieSecure   = "POS_COOKIE_SECURE"
	EnvCookieSameSite = "POS_COOKIE_SAMESITE"
	EnvUploadDir      = "POS_MEDIA_UPLOAD_DIR"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
