package config

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Cookie       CookieConfig
	Media        MediaConfig
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
	Metrics      MetricsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Cookie.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"POS_APP_ENV" default:"dev"`
	Port         string `envconfig:"POS_APP_PORT" default:"5025"`
	LogLevel     string `envconfig:"POS_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"POS_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"POS_LOG_WARN_STACK" default:"false"`
	APIPrefix    string `envconfig:"POS_API_PREFIX" default:"/api"`
	BaseURL      string `envconfig:"POS_BASE_URL" default:"http://localhost:5025"`
	// TrustProxy honours X-Forwarded-Proto/Host when building image URLs.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxy   bool   `envconfig:"POS_TRUST_PROXY" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"POS_DB_DSN"`
	Driver string `envconfig:"POS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"POS_DB_HOST"`
	LegacyPort     int    `envconfig:"POS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"POS_DB_USER"`
	LegacyPassword string `envconfig:"POS_DB_PASSWORD"`
	LegacyName     string `envconfig:"POS_DB_NAME"`
	LegacySSLMode  string `envconfig:"POS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"POS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"POS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"POS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"POS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver targets SQLite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"POS_REDIS_URL"`
	Address      string        `envconfig:"POS_REDIS_ADDR"`
	Password     string        `envconfig:"POS_REDIS_PASSWORD"`
	DB           int           `envconfig:"POS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"POS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"POS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"POS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"POS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"POS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"POS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"POS_JWT_ISSUER" default:"postoko"`
	ExpirationMinutes int    `envconfig:"POS_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// TTL returns the session token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	BcryptCost int `envconfig:"POS_BCRYPT_COST" default:"10"`
}

type CookieConfig struct {
	Name     string `envconfig:"POS_COOKIE_NAME" default:"token"`
	Path     string `envconfig:"POS_COOKIE_PATH" default:"/"`
	Domain   string `envconfig:"POS_COOKIE_DOMAIN"`
	Secure   string `envconfig:"POS_COOKIE_SECURE" default:"auto"`
	SameSite string `envconfig:"POS_COOKIE_SAMESITE" default:"lax"`
}

// SameSiteMode maps the configured policy onto net/http's representation.
func (c CookieConfig) SameSiteMode() http.SameSite {
	switch strings.ToLower(strings.TrimSpace(c.SameSite)) {
	case SameSiteStrict:
		return http.SameSiteStrictMode
	case SameSiteNone:
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// SecureFor resolves the Secure attribute given whether the request used TLS.
func (c CookieConfig) SecureFor(tls bool) bool {
	if c.SameSiteMode() == http.SameSiteNoneMode {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(c.Secure)) {
	case CookieSecureAlways:
		return true
	case CookieSecureNever:
		return false
	default:
		return tls
	}
}

func (c CookieConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Secure)) {
	case CookieSecureAuto, CookieSecureAlways, CookieSecureNever:
	default:
		return fmt.Errorf("%s must be one of auto, always, never", EnvCookieSecure)
	}
	switch strings.ToLower(strings.TrimSpace(c.SameSite)) {
	case SameSiteLax, SameSiteStrict, SameSiteNone:
	default:
		return fmt.Errorf("%s must be one of lax, strict, none", EnvCookieSameSite)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%s cannot be empty", EnvCookieName)
	}
	return nil
}

type MediaConfig struct {
	UploadDir       string        `envconfig:"POS_MEDIA_UPLOAD_DIR" default:"uploads"`
	URLPrefix       string        `envconfig:"POS_MEDIA_URL_PREFIX" default:"/uploads"`
	MaxUploadMB     int           `envconfig:"POS_MAX_UPLOAD_MB" default:"5"`
	CleanupWorkers  int           `envconfig:"POS_MEDIA_CLEANUP_WORKERS" default:"4"`
	CleanupRetries  uint64        `envconfig:"POS_MEDIA_CLEANUP_RETRIES" default:"3"`
	CleanupBackoff  time.Duration `envconfig:"POS_MEDIA_CLEANUP_BACKOFF" default:"200ms"`
	CleanupDrainTTL time.Duration `envconfig:"POS_MEDIA_CLEANUP_DRAIN_TIMEOUT" default:"10s"`
}

// MaxUploadBytes returns the multipart size limit in bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 5 << 20
	}
	return int64(m.MaxUploadMB) << 20
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"POS_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"POS_AUTO_MIGRATE" default:"false"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"POS_METRICS_ENABLED" default:"true"`
	Path    string `envconfig:"POS_METRICS_PATH" default:"/metrics"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
