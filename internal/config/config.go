package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Env       string          `mapstructure:"env"`
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Events    EventsConfig    `mapstructure:"events"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
	Client    ClientConfig    `mapstructure:"client"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Port         string   `mapstructure:"port"`
	ReadTimeout  int      `mapstructure:"read_timeout_seconds"`
	WriteTimeout int      `mapstructure:"write_timeout_seconds"`
	IdleTimeout  int      `mapstructure:"idle_timeout_seconds"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
	MaxUploadMB  int64    `mapstructure:"max_upload_mb"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            string `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time_seconds"`
}

type AuthConfig struct {
	JWTSecret          string `mapstructure:"jwt_secret"`
	Issuer             string `mapstructure:"issuer"`
	AccessTokenMinutes int    `mapstructure:"access_token_minutes"`
	RefreshTokenHours  int    `mapstructure:"refresh_token_hours"`
	SecureCookies      bool   `mapstructure:"secure_cookies"`
	// AdminUsername and AdminPassword seed the first account on an empty
	// users table. Leave the password empty to skip seeding.
	AdminUsername      string `mapstructure:"admin_username"`
	AdminPassword      string `mapstructure:"admin_password"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// EventsConfig selects where domain events go: "nats", "kafka" or "none".
// Consume also reads them back into the activity log.
type EventsConfig struct {
	Broker        string `mapstructure:"broker"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
	Consume       bool   `mapstructure:"consume"`
}

type JobsConfig struct {
	TokenCleanupSchedule string `mapstructure:"token_cleanup_schedule"`
}

// TelemetryConfig enables the OTLP metric exporter. Disabled, counters go
// to the no-op global provider.
type TelemetryConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	Insecure        bool   `mapstructure:"insecure"`
	IntervalSeconds int    `mapstructure:"interval_seconds"`
}

// ClientConfig is read by agencyctl.
type ClientConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	StaleSeconds   int    `mapstructure:"stale_seconds"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("log.level", "info")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 15)
	v.SetDefault("server.idle_timeout_seconds", 60)
	v.SetDefault("server.max_upload_mb", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "agency")
	v.SetDefault("auth.issuer", "agency-service")
	v.SetDefault("auth.access_token_minutes", 15)
	v.SetDefault("auth.refresh_token_hours", 168)
	v.SetDefault("auth.admin_username", "admin")
	v.SetDefault("nats.subject", "agency.messages")
	v.SetDefault("kafka.topic", "agency.events")
	v.SetDefault("events.broker", "nats")
	v.SetDefault("events.subject_prefix", "agency.events")
	v.SetDefault("events.consume", true)
	v.SetDefault("jobs.token_cleanup_schedule", "@hourly")
	v.SetDefault("telemetry.endpoint", "otel-collector.infra.svc.cluster.local:4317")
	v.SetDefault("telemetry.insecure", true)
	v.SetDefault("telemetry.interval_seconds", 10)
	v.SetDefault("client.base_url", "http://localhost:8080")
	v.SetDefault("client.timeout_seconds", 10)
	v.SetDefault("client.stale_seconds", 30)
}

func Load() (*Config, error) {
	config, err := read()
	if err != nil {
		return nil, err
	}

	if config.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret (JWT_SECRET) is required")
	}

	return config, nil
}

// LoadClient reads the same files as Load but only needs the client
// section, so it works without server secrets.
func LoadClient() (*ClientConfig, error) {
	config, err := read()
	if err != nil {
		return nil, err
	}
	if config.Client.BaseURL == "" {
		return nil, fmt.Errorf("client.base_url (CLIENT_BASE_URL) is required")
	}
	return &config.Client, nil
}

func read() (*Config, error) {
	env := os.Getenv("ENV")
	if env == "" {
		env = "local"
	}

	v := viper.New()
	setDefaults(v)
	v.Set("env", env)

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	v.SetConfigType("yaml")
	v.AddConfigPath("/configs")  // Kubernetes mount
	v.AddConfigPath("./configs") // repo root
	v.AddConfigPath("../configs")

	// config file is optional, ENV still applies
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("auth.admin_password", "ADMIN_PASSWORD")
	v.BindEnv("telemetry.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &config, nil
}
