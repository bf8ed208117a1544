package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "boutique"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	SessionStoreFile  = "file"
	SessionStoreRedis = "redis"
)

type Config struct {
	App     AppConfig
	API     APIConfig
	Session SessionConfig
	Redis   RedisConfig
	Stub    StubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.API.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Session.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// StubSettings is the subset of configuration the stub server needs. It
// leaves out the client-side settings so running the stub does not demand an
// API base URL.
type StubSettings struct {
	App  AppConfig
	Stub StubConfig
}

func LoadStub() (*StubSettings, error) {
	var s StubSettings
	if err := envconfig.Process(EnvPrefix, &s); err != nil {
		return nil, fmt.Errorf("parsing stub config: %w", err)
	}
	return &s, nil
}

type AppConfig struct {
	Env      string `envconfig:"BOUTIQUE_APP_ENV" default:"dev"`
	LogLevel string `envconfig:"BOUTIQUE_LOG_LEVEL" default:"info"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type APIConfig struct {
	BaseURL string        `envconfig:"BOUTIQUE_API_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"BOUTIQUE_API_TIMEOUT" default:"15s"`
}

func (a APIConfig) validate() error {
	parsed, err := url.Parse(a.BaseURL)
	if err != nil {
		return fmt.Errorf("parsing api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("api base url must be http or https, got %q", a.BaseURL)
	}
	if a.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive")
	}
	return nil
}

type SessionConfig struct {
	Store    string        `envconfig:"BOUTIQUE_SESSION_STORE" default:"file"`
	FilePath string        `envconfig:"BOUTIQUE_SESSION_FILE" default:".boutique/session.json"`
	TTL      time.Duration `envconfig:"BOUTIQUE_SESSION_TTL" default:"720h"`
}

func (s SessionConfig) validate() error {
	switch s.Store {
	case SessionStoreFile:
		if strings.TrimSpace(s.FilePath) == "" {
			return fmt.Errorf("session file path is required for the file store")
		}
	case SessionStoreRedis:
	default:
		return fmt.Errorf("session store must be %q or %q, got %q", SessionStoreFile, SessionStoreRedis, s.Store)
	}
	if s.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"BOUTIQUE_REDIS_URL"`
	Address      string        `envconfig:"BOUTIQUE_REDIS_ADDR"`
	Password     string        `envconfig:"BOUTIQUE_REDIS_PASSWORD"`
	DB           int           `envconfig:"BOUTIQUE_REDIS_DB" default:"0"`
	DialTimeout  time.Duration `envconfig:"BOUTIQUE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BOUTIQUE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BOUTIQUE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type StubConfig struct {
	Addr      string `envconfig:"BOUTIQUE_STUB_ADDR" default:":8085"`
	JWTSecret string `envconfig:"BOUTIQUE_STUB_JWT_SECRET" default:"dev-secret"`
	Seed      bool   `envconfig:"BOUTIQUE_STUB_SEED" default:"true"`
}
