package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"agency-service/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("DefaultsWithEnvOverrides", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("ENV", "test")
		t.Setenv("JWT_SECRET", "test-secret-key-for-testing")
		t.Setenv("DB_USER", "agency")
		t.Setenv("DB_PASSWORD", "s3cret")

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, "test", cfg.Env)
		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, "agency", cfg.Database.User)
		assert.Equal(t, "s3cret", cfg.Database.Password)
		assert.Equal(t, "test-secret-key-for-testing", cfg.Auth.JWTSecret)
		assert.Equal(t, 15, cfg.Auth.AccessTokenMinutes)
		assert.Equal(t, "nats", cfg.Events.Broker)
		assert.Equal(t, "@hourly", cfg.Jobs.TokenCleanupSchedule)
	})

	t.Run("ReadsYAMLFile", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
		yaml := []byte("server:\n  port: \"9090\"\n  cors_origins:\n    - http://localhost:5173\nevents:\n  broker: kafka\nkafka:\n  brokers:\n    - localhost:9092\n")
		require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "config.yamltest.yaml"), yaml, 0o644))

		t.Chdir(dir)
		t.Setenv("ENV", "yamltest")
		t.Setenv("JWT_SECRET", "secret")

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.Server.Port)
		assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)
		assert.Equal(t, "kafka", cfg.Events.Broker)
		assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	})

	t.Run("MissingSecret", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("ENV", "test")
		t.Setenv("JWT_SECRET", "")

		_, err := config.Load()
		assert.Error(t, err)
	})
}

func TestLoadClient(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENV", "test")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CLIENT_BASE_URL", "https://agency.example.com")

	cfg, err := config.LoadClient()
	require.NoError(t, err)

	assert.Equal(t, "https://agency.example.com", cfg.BaseURL)
	assert.Equal(t, 10, cfg.TimeoutSeconds)
	assert.Equal(t, 30, cfg.StaleSeconds)
}
