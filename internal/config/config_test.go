package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/shop")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("ES_INDEX", "")

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, []byte("s3cret"), cfg.JWTSecret)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "products", cfg.ESIndex)
	assert.Equal(t, "/uploads", cfg.UploadPrefix)
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("STOREFRONT_TEST_KEY=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("STOREFRONT_TEST_KEY") })

	Load(path)

	assert.Equal(t, "from-file", os.Getenv("STOREFRONT_TEST_KEY"))
}

func TestMustValidate_MissingSecret(t *testing.T) {
	var got []string
	orig := exit
	exit = func(msg string) { got = append(got, msg) }
	t.Cleanup(func() { exit = orig })

	cfg := &Config{DatabaseURL: "postgres://x"}
	cfg.MustValidate()

	require.Len(t, got, 1)
	assert.Contains(t, got[0], "JWT_SECRET")
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("STOREFRONT_INT", "abc")
	t.Setenv("STOREFRONT_DUR", "-5s")

	assert.Equal(t, 7, EnvIntDefault("STOREFRONT_INT", 7))
	assert.Equal(t, time.Minute, EnvDurationDefault("STOREFRONT_DUR", time.Minute))
	assert.Nil(t, CSV(""))
}
