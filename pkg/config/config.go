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
	FeatureFlags  FeatureFlagsConfig
	Cashout       CashoutConfig
	RazorpayX     RazorpayXConfig
	PubSub        PubSubConfig
	GCP           GCPConfig
	Outbox        OutboxConfig
	Webhook       WebhookConfig
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
	Env          string `envconfig:"TOURCLEAN_APP_ENV" required:"true"`
	Port         string `envconfig:"TOURCLEAN_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TOURCLEAN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TOURCLEAN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TOURCLEAN_DB_DSN"`
	Driver string `envconfig:"TOURCLEAN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TOURCLEAN_DB_HOST"`
	LegacyPort     int    `envconfig:"TOURCLEAN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TOURCLEAN_DB_USER"`
	LegacyPassword string `envconfig:"TOURCLEAN_DB_PASSWORD"`
	LegacyName     string `envconfig:"TOURCLEAN_DB_NAME"`
	LegacySSLMode  string `envconfig:"TOURCLEAN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TOURCLEAN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TOURCLEAN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TOURCLEAN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TOURCLEAN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TOURCLEAN_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TOURCLEAN_REDIS_ADDR"`
	Password     string        `envconfig:"TOURCLEAN_REDIS_PASSWORD"`
	DB           int           `envconfig:"TOURCLEAN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TOURCLEAN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TOURCLEAN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TOURCLEAN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TOURCLEAN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TOURCLEAN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TOURCLEAN_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TOURCLEAN_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TOURCLEAN_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTTLHours   int    `envconfig:"TOURCLEAN_JWT_REFRESH_TTL_HOURS" default:"720"`
}

// RefreshTokenTTL returns the refresh token lifetime as a duration.
func (c JWTConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTTLHours) * time.Hour
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TOURCLEAN_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TOURCLEAN_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TOURCLEAN_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TOURCLEAN_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TOURCLEAN_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"TOURCLEAN_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"TOURCLEAN_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"TOURCLEAN_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"TOURCLEAN_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"TOURCLEAN_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"TOURCLEAN_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TOURCLEAN_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TOURCLEAN_AUTO_MIGRATE" default:"false"`
	SeedBins    bool `envconfig:"TOURCLEAN_SEED_BINS" default:"false"`
}

// CashoutConfig carries the authoritative points-to-currency policy. The rate
// is read once per cashout request and snapshotted onto the row; settlement
// never re-reads it.
type CashoutConfig struct {
	MinimumPoints int `envconfig:"TOURCLEAN_CASHOUT_MINIMUM_POINTS" default:"100"`
	PointsPerUnit int `envconfig:"TOURCLEAN_CASHOUT_POINTS_PER_UNIT" default:"20"`
	DefaultAward  int `envconfig:"TOURCLEAN_DEFAULT_POINTS_AWARDED" default:"75"`
}

type RazorpayXConfig struct {
	KeyID           string        `envconfig:"TOURCLEAN_RAZORPAYX_KEY_ID"`
	KeySecret       string        `envconfig:"TOURCLEAN_RAZORPAYX_KEY_SECRET"`
	AccountNumber   string        `envconfig:"TOURCLEAN_RAZORPAYX_ACCOUNT_NUMBER"`
	FundAccountMode string        `envconfig:"TOURCLEAN_RAZORPAYX_FUND_ACCOUNT_MODE" default:"upi"`
	WebhookSecret   string        `envconfig:"TOURCLEAN_RAZORPAYX_WEBHOOK_SECRET"`
	BaseURL         string        `envconfig:"TOURCLEAN_RAZORPAYX_BASE_URL" default:"https://api.razorpay.com/v1"`
	RequestTimeout  time.Duration `envconfig:"TOURCLEAN_RAZORPAYX_REQUEST_TIMEOUT" default:"15s"`
	Currency        string        `envconfig:"TOURCLEAN_RAZORPAYX_CURRENCY" default:"INR"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"TOURCLEAN_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"TOURCLEAN_PUBSUB_DOMAIN_TOPIC" default:"tc-domain-events"`
	DomainSubscription string `envconfig:"TOURCLEAN_PUBSUB_DOMAIN_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"TOURCLEAN_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"TOURCLEAN_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"TOURCLEAN_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type WebhookConfig struct {
	IdempotencyTTL time.Duration `envconfig:"TOURCLEAN_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
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
