package config

import (
	"fmt"
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
	Feed         FeedConfig
	PartnerRate  PartnerRateConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"SUPPLYDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"SUPPLYDESK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SUPPLYDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SUPPLYDESK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SUPPLYDESK_DB_DSN"`
	Driver string `envconfig:"SUPPLYDESK_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"SUPPLYDESK_DB_HOST"`
	Port     int    `envconfig:"SUPPLYDESK_DB_PORT" default:"5432"`
	User     string `envconfig:"SUPPLYDESK_DB_USER"`
	Password string `envconfig:"SUPPLYDESK_DB_PASSWORD"`
	Name     string `envconfig:"SUPPLYDESK_DB_NAME"`
	SSLMode  string `envconfig:"SUPPLYDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SUPPLYDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SUPPLYDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SUPPLYDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SUPPLYDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SUPPLYDESK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SUPPLYDESK_REDIS_ADDR"`
	Password     string        `envconfig:"SUPPLYDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"SUPPLYDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SUPPLYDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SUPPLYDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SUPPLYDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SUPPLYDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SUPPLYDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SUPPLYDESK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SUPPLYDESK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SUPPLYDESK_JWT_EXPIRATION_MINUTES" default:"60"`
}

// FeedConfig bounds the supplier price-list fetch.
type FeedConfig struct {
	FetchTimeout time.Duration `envconfig:"SUPPLYDESK_FEED_FETCH_TIMEOUT" default:"15s"`
	MaxBodyBytes int64         `envconfig:"SUPPLYDESK_FEED_MAX_BODY_BYTES" default:"10485760"`
}

// PartnerRateConfig limits how often a supplier can trigger an ingest.
type PartnerRateConfig struct {
	Window time.Duration `envconfig:"SUPPLYDESK_PARTNER_RATE_WINDOW" default:"1m"`
	Limit  int64         `envconfig:"SUPPLYDESK_PARTNER_RATE_LIMIT" default:"6"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SUPPLYDESK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SUPPLYDESK_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"SUPPLYDESK_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	NotificationTopic string `envconfig:"SUPPLYDESK_PUBSUB_NOTIFICATION_TOPIC" default:"sd-notification-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SUPPLYDESK_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SUPPLYDESK_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SUPPLYDESK_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// PollInterval returns the outbox poll interval as a duration.
func (o OutboxConfig) PollInterval() time.Duration {
	if o.PollIntervalMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(o.PollIntervalMS) * time.Millisecond
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	parts := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if parts[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
