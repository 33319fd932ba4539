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
	Completion   CompletionConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.resolve(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// StorageConfig is the subset needed by tooling that only talks to the database.
type StorageConfig struct {
	App          AppConfig
	DB           DBConfig
	FeatureFlags FeatureFlagsConfig
}

// LoadStorage reads only the app, database and feature flag sections.
func LoadStorage() (*StorageConfig, error) {
	var cfg StorageConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.resolve(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IssuerConfig is the subset needed to mint and register access tokens.
type IssuerConfig struct {
	JWT   JWTConfig
	Redis RedisConfig
}

// LoadIssuer reads only the JWT and Redis sections.
func LoadIssuer() (*IssuerConfig, error) {
	var cfg IssuerConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MISE_APP_ENV" required:"true"`
	Port         string `envconfig:"MISE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MISE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MISE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MISE_DB_DSN"`
	Driver string `envconfig:"MISE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"MISE_DB_HOST"`
	Port     int    `envconfig:"MISE_DB_PORT" default:"5432"`
	User     string `envconfig:"MISE_DB_USER"`
	Password string `envconfig:"MISE_DB_PASSWORD"`
	Name     string `envconfig:"MISE_DB_NAME"`
	SSLMode  string `envconfig:"MISE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MISE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MISE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MISE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MISE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MISE_REDIS_URL"`
	Address      string        `envconfig:"MISE_REDIS_ADDR"`
	Password     string        `envconfig:"MISE_REDIS_PASSWORD"`
	DB           int           `envconfig:"MISE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MISE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MISE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MISE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MISE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MISE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret string `envconfig:"MISE_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"MISE_JWT_ISSUER" required:"true"`
	// ExpirationMinutes is only consulted when minting tokens (tests, local tooling).
	ExpirationMinutes int `envconfig:"MISE_JWT_EXPIRATION_MINUTES" default:"60"`
}

// CompletionConfig points at an OpenAI-compatible chat completion endpoint.
type CompletionConfig struct {
	APIKey        string        `envconfig:"MISE_COMPLETION_API_KEY" required:"true"`
	BaseURL       string        `envconfig:"MISE_COMPLETION_BASE_URL"`
	OrgID         string        `envconfig:"MISE_COMPLETION_ORG_ID"`
	Model         string        `envconfig:"MISE_COMPLETION_MODEL" default:"gpt-4o-mini"`
	StreamTimeout time.Duration `envconfig:"MISE_COMPLETION_STREAM_TIMEOUT" default:"0s"`
}

type RateLimitConfig struct {
	Window  time.Duration `envconfig:"MISE_RATE_LIMIT_WINDOW" default:"1m"`
	IPLimit int           `envconfig:"MISE_RATE_LIMIT_IP_LIMIT" default:"30"`
}

type FeatureFlagsConfig struct {
	UseSQLite    bool `envconfig:"MISE_USE_SQLITE" default:"false"`
	AutoMigrate  bool `envconfig:"MISE_AUTO_MIGRATE" default:"false"`
	SessionCheck bool `envconfig:"MISE_SESSION_CHECK" default:"true"`
}

func (db *DBConfig) resolve(useSQLite bool) error {
	if useSQLite {
		if db.DSN == "" {
			return fmt.Errorf("%s is required when %s is enabled", EnvDBDSN, EnvUseSQLite)
		}
		db.Driver = "sqlite"
		return nil
	}
	return db.ensureDSN()
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range dbPartEnvVars {
		if values[env] == "" {
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
