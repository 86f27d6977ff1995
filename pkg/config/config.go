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
	AuthRateLimit AuthRateLimitConfig
	Delivery      DeliveryConfig
	Stripe        StripeConfig
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
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PETALPOST_APP_ENV" required:"true"`
	Port         string `envconfig:"PETALPOST_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PETALPOST_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PETALPOST_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PETALPOST_DB_DSN"`
	Driver string `envconfig:"PETALPOST_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PETALPOST_DB_HOST"`
	LegacyPort     int    `envconfig:"PETALPOST_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PETALPOST_DB_USER"`
	LegacyPassword string `envconfig:"PETALPOST_DB_PASSWORD"`
	LegacyName     string `envconfig:"PETALPOST_DB_NAME"`
	LegacySSLMode  string `envconfig:"PETALPOST_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PETALPOST_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PETALPOST_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PETALPOST_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PETALPOST_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PETALPOST_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PETALPOST_REDIS_ADDR"`
	Password     string        `envconfig:"PETALPOST_REDIS_PASSWORD"`
	DB           int           `envconfig:"PETALPOST_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PETALPOST_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PETALPOST_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PETALPOST_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PETALPOST_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PETALPOST_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PETALPOST_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PETALPOST_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PETALPOST_JWT_EXPIRATION_MINUTES" required:"true"`
	SessionTTLMinutes int    `envconfig:"PETALPOST_SESSION_TTL_MINUTES" default:"720"`
}

// SessionTTL returns the server-side session lifetime.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PETALPOST_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PETALPOST_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PETALPOST_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PETALPOST_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PETALPOST_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"PETALPOST_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"PETALPOST_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"PETALPOST_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type DeliveryConfig struct {
	FlatFee string `envconfig:"PETALPOST_DELIVERY_FLAT_FEE" default:"100.00"`
}

type StripeConfig struct {
	APIKey         string        `envconfig:"PETALPOST_STRIPE_API_KEY"`
	WebhookSecret  string        `envconfig:"PETALPOST_STRIPE_WEBHOOK_SECRET"`
	Env            string        `envconfig:"PETALPOST_STRIPE_ENV" default:"test"`
	IdempotencyTTL time.Duration `envconfig:"PETALPOST_STRIPE_IDEMPOTENCY_TTL" default:"720h"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PETALPOST_AUTO_MIGRATE" default:"false"`
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
