package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092, ,b:9092 "))
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("BOOKSTORE_TEST_STR", "value")
	t.Setenv("BOOKSTORE_TEST_INT", "42")
	t.Setenv("BOOKSTORE_TEST_BAD_INT", "forty-two")
	t.Setenv("BOOKSTORE_TEST_BOOL", "false")
	t.Setenv("BOOKSTORE_TEST_DUR", "90m")
	t.Setenv("BOOKSTORE_TEST_NEG_DUR", "-1s")

	assert.Equal(t, "value", EnvDefault("BOOKSTORE_TEST_STR", "def"))
	assert.Equal(t, "def", EnvDefault("BOOKSTORE_TEST_MISSING", "def"))
	assert.Equal(t, 42, EnvIntDefault("BOOKSTORE_TEST_INT", 1))
	assert.Equal(t, 1, EnvIntDefault("BOOKSTORE_TEST_BAD_INT", 1))
	assert.False(t, EnvBoolDefault("BOOKSTORE_TEST_BOOL", true))
	assert.True(t, EnvBoolDefault("BOOKSTORE_TEST_MISSING", true))
	assert.Equal(t, 90*time.Minute, EnvDurationDefault("BOOKSTORE_TEST_DUR", time.Hour))
	assert.Equal(t, time.Hour, EnvDurationDefault("BOOKSTORE_TEST_NEG_DUR", time.Hour))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite://bookstore.db")
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("COOKIE_SECURE", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("ES_INDEX", "")
	t.Setenv("SEED_ON_START", "")

	cfg := Load()
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "sqlite://bookstore.db", cfg.DatabaseURL)
	assert.Equal(t, []byte("s3cret"), cfg.SessionSecret)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Nil(t, cfg.KafkaBrokers)
	assert.Equal(t, "books", cfg.ESIndex)
	assert.True(t, cfg.SeedOnStart)
}

func TestValidate(t *testing.T) {
	err := Config{}.Validate()
	assert.EqualError(t, err, "missing required env DATABASE_URL, SECRET_KEY")

	err = Config{DatabaseURL: "sqlite://x.db"}.Validate()
	assert.EqualError(t, err, "missing required env SECRET_KEY")

	assert.NoError(t, Config{DatabaseURL: "sqlite://x.db", SessionSecret: []byte("k")}.Validate())
}
