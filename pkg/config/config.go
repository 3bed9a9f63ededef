package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthLockout   AuthLockoutConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Redis.ensureTarget(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"OPTICA_APP_ENV" required:"true"`
	Port         string `envconfig:"OPTICA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"OPTICA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"OPTICA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"OPTICA_DB_DSN"`
	Driver string `envconfig:"OPTICA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"OPTICA_DB_HOST"`
	LegacyPort     int    `envconfig:"OPTICA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"OPTICA_DB_USER"`
	LegacyPassword string `envconfig:"OPTICA_DB_PASSWORD"`
	LegacyName     string `envconfig:"OPTICA_DB_NAME"`
	LegacySSLMode  string `envconfig:"OPTICA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"OPTICA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"OPTICA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"OPTICA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"OPTICA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"OPTICA_REDIS_URL"`
	Address      string        `envconfig:"OPTICA_REDIS_ADDR"`
	Password     string        `envconfig:"OPTICA_REDIS_PASSWORD"`
	DB           int           `envconfig:"OPTICA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"OPTICA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"OPTICA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"OPTICA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"OPTICA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"OPTICA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig carries both token classes. Access and refresh secrets are
// deliberately separate so compromise of one never compromises the other.
type JWTConfig struct {
	AccessSecret            string `envconfig:"OPTICA_JWT_ACCESS_SECRET" required:"true"`
	RefreshSecret           string `envconfig:"OPTICA_JWT_REFRESH_SECRET" required:"true"`
	Issuer                  string `envconfig:"OPTICA_JWT_ISSUER" required:"true"`
	Audience                string `envconfig:"OPTICA_JWT_AUDIENCE" default:"optica-api"`
	AccessExpirationMinutes int    `envconfig:"OPTICA_JWT_ACCESS_EXPIRATION_MINUTES" default:"15"`
	RefreshExpirationDays   int    `envconfig:"OPTICA_JWT_REFRESH_EXPIRATION_DAYS" default:"7"`
}

// AccessTokenTTL returns the configured access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.AccessExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.AccessExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the configured refresh token lifetime.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshExpirationDays <= 0 {
		return 0
	}
	return time.Duration(j.RefreshExpirationDays) * 24 * time.Hour
}

type PasswordConfig struct {
	BcryptCost int `envconfig:"OPTICA_BCRYPT_COST" default:"12"`
}

type AuthLockoutConfig struct {
	MaxAttempts   int           `envconfig:"OPTICA_MAX_LOGIN_ATTEMPTS" default:"5"`
	LockoutWindow time.Duration `envconfig:"OPTICA_LOCKOUT_WINDOW" default:"15m"`
}

type AuthRateLimitConfig struct {
	LoginWindow          time.Duration `envconfig:"OPTICA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIdentifierLimit int           `envconfig:"OPTICA_AUTH_RATE_LIMIT_LOGIN_IDENTIFIER_LIMIT" default:"10"`
	LoginIPLimit         int           `envconfig:"OPTICA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"30"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool   `envconfig:"OPTICA_USE_SQLITE" default:"false"`
	SQLitePath  string `envconfig:"OPTICA_SQLITE_PATH" default:"optica.db"`
	AutoMigrate bool   `envconfig:"OPTICA_AUTO_MIGRATE" default:"false"`
}

func (r *RedisConfig) ensureTarget() error {
	if r.URL == "" && r.Address == "" {
		return fmt.Errorf("either %s or %s is required", EnvRedisURL, EnvRedisAddr)
	}
	return nil
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
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
