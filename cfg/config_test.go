package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	env := map[string]string{
		"APP_ENV":                   "development",
		"APP_PORT":                  "8080",
		"NODE_ID":                   "3",
		"POSTGRES_HOST":             "localhost",
		"POSTGRES_PORT":             "5432",
		"POSTGRES_USER":             "travel",
		"POSTGRES_PASSWORD":         "secret",
		"POSTGRES_DB":               "travel",
		"REDIS_HOST":                "localhost",
		"REDIS_PORT":                "6379",
		"EXTRACTOR_BASE_URL":        "http://localhost:8081",
		"EXTRACTOR_TIMEOUT_SECONDS": "45",
		"CACHE_TTL_MINUTES":         "30",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}
}

func TestLoad(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequired(t)
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	c, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, int64(3), c.NodeID)
	assert.Equal(t, "disable", c.Postgres.SSLMode)
	assert.Equal(t, 45, c.Extractor.TimeoutSeconds)
	assert.Equal(t, 4, c.Extractor.MaxConcurrent)
	assert.Equal(t, 30, c.CacheTTLMinutes)
	assert.Equal(t, "k1:9092,k2:9092", c.Kafka.Brokers)
	assert.Equal(t, "travel.bookings", c.Kafka.BookingTopic)
	assert.Equal(t, "travel", c.Observability.ServiceName)
	assert.Equal(t, "development", c.Observability.Environment)
	assert.Equal(t, []string{"*"}, c.CORSAllowOrigins)
}

func TestLoad_CORSOriginsList(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequired(t)
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example,")

	c, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSAllowOrigins)
}

func TestLoad_ReportsEveryProblem(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequired(t)
	t.Setenv("POSTGRES_HOST", "")
	t.Setenv("CACHE_TTL_MINUTES", "half an hour")
	t.Setenv("EXTRACTOR_MAX_CONCURRENT", "many")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing env: POSTGRES_HOST")
	assert.Contains(t, err.Error(), "conversion failed env: CACHE_TTL_MINUTES")
	assert.Contains(t, err.Error(), "conversion failed env: EXTRACTOR_MAX_CONCURRENT")
}
