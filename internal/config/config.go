package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Well-known secrets that only make sense on a developer machine.
const (
	DefaultSessionSecret     = "mytrade-default-secret-change-me"
	DefaultCredentialsSecret = "mytrade-default-credentials-secret"
)

const developmentEnvironment = "development"

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Backend     BackendConfig     `yaml:"backend"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Tracing     TracingConfig     `yaml:"tracing"`
	Demo        DemoConfig        `yaml:"demo"`
	Log         LogConfig         `yaml:"log"`
}

type ServerConfig struct {
	Port          int           `yaml:"port"`
	SessionSecret string        `yaml:"session_secret"`
	SessionMaxAge time.Duration `yaml:"session_max_age"`
	SecureCookie  bool          `yaml:"secure_cookie"`
}

type BackendConfig struct {
	BaseURL            string        `yaml:"base_url"`
	Timeout            time.Duration `yaml:"timeout"`
	FetchRetryAttempts int           `yaml:"fetch_retry_attempts"`
}

type DatabaseConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type RedisConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Address     string        `yaml:"address"`
	Password    string        `yaml:"password"`
	DB          int           `yaml:"db"`
	PresenceTTL time.Duration `yaml:"presence_ttl"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type CredentialsConfig struct {
	Path   string `yaml:"path"`
	Secret string `yaml:"secret"`
}

type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ExporterURL string  `yaml:"exporter_url"`
	SampleRate  float64 `yaml:"sample_rate"`
	ServiceName string  `yaml:"service_name"`
	Environment string  `yaml:"environment"`
}

type DemoConfig struct {
	Enabled bool `yaml:"enabled"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          8080,
			SessionSecret: DefaultSessionSecret,
			SessionMaxAge: 7 * 24 * time.Hour,
		},
		Backend: BackendConfig{
			BaseURL:            "https://mytrade-cx5z.onrender.com",
			Timeout:            15 * time.Second,
			FetchRetryAttempts: 2,
		},
		Database: DatabaseConfig{
			Enabled:         false,
			Host:            "localhost",
			Port:            3306,
			User:            "mytrade",
			Password:        "secret",
			Name:            "mytrade",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Enabled:     false,
			Address:     "localhost:6379",
			DB:          0,
			PresenceTTL: 60 * time.Second,
		},
		Kafka: KafkaConfig{
			Topic: "mytrade.order-actions",
		},
		Credentials: CredentialsConfig{
			Path:   "mytrade-credentials.db",
			Secret: DefaultCredentialsSecret,
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ExporterURL: "localhost:4318",
			SampleRate:  1.0,
			ServiceName: "mytrade-gateway",
			Environment: developmentEnvironment,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultSecrets names the secrets still left empty or at their published
// default value.
func (c *Config) DefaultSecrets() []string {
	var keys []string
	if c.Server.SessionSecret == "" || c.Server.SessionSecret == DefaultSessionSecret {
		keys = append(keys, "server.session_secret")
	}
	if c.Credentials.Secret == "" || c.Credentials.Secret == DefaultCredentialsSecret {
		keys = append(keys, "credentials.secret")
	}
	return keys
}

func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(strings.TrimSpace(c.Tracing.Environment))
	return env == "" || env == developmentEnvironment
}

// Load returns the defaults with any environment overrides applied.
func Load() (*Config, error) {
	cfg := Defaults()
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overwrites the fields whose environment variable is set, e.g.
// SERVER_PORT or BACKEND_BASE_URL.
func ApplyEnv(cfg *Config) error {
	v := viper.New()
	v.AutomaticEnv()

	setInt(v, "SERVER_PORT", &cfg.Server.Port)
	setString(v, "SERVER_SESSION_SECRET", &cfg.Server.SessionSecret)
	if err := setDuration(v, "SERVER_SESSION_MAX_AGE", &cfg.Server.SessionMaxAge); err != nil {
		return err
	}
	setBool(v, "SERVER_SECURE_COOKIE", &cfg.Server.SecureCookie)

	setString(v, "BACKEND_BASE_URL", &cfg.Backend.BaseURL)
	if err := setDuration(v, "BACKEND_TIMEOUT", &cfg.Backend.Timeout); err != nil {
		return err
	}
	setInt(v, "BACKEND_FETCH_RETRY_ATTEMPTS", &cfg.Backend.FetchRetryAttempts)

	setBool(v, "DB_ENABLED", &cfg.Database.Enabled)
	setString(v, "DB_HOST", &cfg.Database.Host)
	setInt(v, "DB_PORT", &cfg.Database.Port)
	setString(v, "DB_USER", &cfg.Database.User)
	setString(v, "DB_PASSWORD", &cfg.Database.Password)
	setString(v, "DB_NAME", &cfg.Database.Name)
	setInt(v, "DB_MAX_OPEN_CONNS", &cfg.Database.MaxOpenConns)
	setInt(v, "DB_MAX_IDLE_CONNS", &cfg.Database.MaxIdleConns)
	if err := setDuration(v, "DB_CONN_MAX_LIFETIME", &cfg.Database.ConnMaxLifetime); err != nil {
		return err
	}

	setBool(v, "REDIS_ENABLED", &cfg.Redis.Enabled)
	setString(v, "REDIS_ADDRESS", &cfg.Redis.Address)
	setString(v, "REDIS_PASSWORD", &cfg.Redis.Password)
	setInt(v, "REDIS_DB", &cfg.Redis.DB)
	if err := setDuration(v, "REDIS_PRESENCE_TTL", &cfg.Redis.PresenceTTL); err != nil {
		return err
	}

	if v.IsSet("KAFKA_BROKERS") {
		cfg.Kafka.Brokers = splitList(v.GetString("KAFKA_BROKERS"))
	}
	setString(v, "KAFKA_TOPIC", &cfg.Kafka.Topic)

	setString(v, "CREDENTIALS_PATH", &cfg.Credentials.Path)
	setString(v, "CREDENTIALS_SECRET", &cfg.Credentials.Secret)

	setBool(v, "TRACING_ENABLED", &cfg.Tracing.Enabled)
	setString(v, "TRACING_EXPORTER_URL", &cfg.Tracing.ExporterURL)
	if v.IsSet("TRACING_SAMPLE_RATE") {
		cfg.Tracing.SampleRate = v.GetFloat64("TRACING_SAMPLE_RATE")
	}
	setString(v, "TRACING_SERVICE_NAME", &cfg.Tracing.ServiceName)
	setString(v, "TRACING_ENVIRONMENT", &cfg.Tracing.Environment)

	setBool(v, "DEMO_ENABLED", &cfg.Demo.Enabled)
	setString(v, "LOG_LEVEL", &cfg.Log.Level)

	return nil
}

func setString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}

func setInt(v *viper.Viper, key string, dst *int) {
	if v.IsSet(key) {
		*dst = v.GetInt(key)
	}
}

func setBool(v *viper.Viper, key string, dst *bool) {
	if v.IsSet(key) {
		*dst = v.GetBool(key)
	}
}

func setDuration(v *viper.Viper, key string, dst *time.Duration) error {
	if !v.IsSet(key) {
		return nil
	}
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
