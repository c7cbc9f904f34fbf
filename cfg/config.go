package cfg

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

type ExtractorConfig struct {
	BaseURL        string
	TimeoutSeconds int
	MaxConcurrent  int
}

type KafkaConfig struct {
	Brokers      string
	BookingTopic string
}

type ObservabilityConfig struct {
	ServiceName  string
	OTLPEndpoint string
	Environment  string
}

type Config struct {
	AppEnv           string
	AppPort          string
	NodeID           int64
	Postgres         PostgresConfig
	Redis            RedisConfig
	Extractor        ExtractorConfig
	Kafka            KafkaConfig
	Observability    ObservabilityConfig
	CacheTTLMinutes  int
	CORSAllowOrigins []string
}

// Load reads the environment, optionally seeded from a .env file. Every
// missing or malformed variable is reported in one joined error.
func Load() (*Config, error) {
	var errs []error

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.New("failed load cfg: " + err.Error())
	}

	appEnv := mustEnv("APP_ENV", &errs)
	appPort := mustEnv("APP_PORT", &errs)
	nodeID := mustInt("NODE_ID", &errs)

	pgHost := mustEnv("POSTGRES_HOST", &errs)
	pgPort := mustEnv("POSTGRES_PORT", &errs)
	pgUser := mustEnv("POSTGRES_USER", &errs)
	pgPassword := mustEnv("POSTGRES_PASSWORD", &errs)
	pgDBName := mustEnv("POSTGRES_DB", &errs)
	pgSSLMode := envOr("POSTGRES_SSLMODE", "disable")

	redisHost := mustEnv("REDIS_HOST", &errs)
	redisPort := mustEnv("REDIS_PORT", &errs)
	redisPassword := envOr("REDIS_PASSWORD", "")

	extractorBaseURL := mustEnv("EXTRACTOR_BASE_URL", &errs)
	extractorTimeout := mustInt("EXTRACTOR_TIMEOUT_SECONDS", &errs)
	extractorWorkers := intOr("EXTRACTOR_MAX_CONCURRENT", 4, &errs)

	cacheTTLMinutes := mustInt("CACHE_TTL_MINUTES", &errs)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &Config{
		AppEnv:  appEnv,
		AppPort: appPort,
		NodeID:  int64(nodeID),
		Postgres: PostgresConfig{
			Host:     pgHost,
			Port:     pgPort,
			User:     pgUser,
			Password: pgPassword,
			DBName:   pgDBName,
			SSLMode:  pgSSLMode,
		},
		Redis: RedisConfig{
			Host:     redisHost,
			Port:     redisPort,
			Password: redisPassword,
		},
		Extractor: ExtractorConfig{
			BaseURL:        extractorBaseURL,
			TimeoutSeconds: extractorTimeout,
			MaxConcurrent:  extractorWorkers,
		},
		Kafka: KafkaConfig{
			Brokers:      envOr("KAFKA_BROKERS", ""),
			BookingTopic: envOr("KAFKA_BOOKING_TOPIC", "travel.bookings"),
		},
		Observability: ObservabilityConfig{
			ServiceName:  envOr("OTEL_SERVICE_NAME", "travel"),
			OTLPEndpoint: envOr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Environment:  appEnv,
		},
		CacheTTLMinutes:  cacheTTLMinutes,
		CORSAllowOrigins: splitList(envOr("CORS_ALLOW_ORIGINS", "*")),
	}, nil
}

func mustEnv(key string, errs *[]error) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		*errs = append(*errs, errors.New("missing env: "+key))
	}
	return value
}

func mustInt(key string, errs *[]error) int {
	value := mustEnv(key, errs)
	if value == "" {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, errors.New("conversion failed env: "+key))
	}
	return n
}

func envOr(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func intOr(key string, fallback int, errs *[]error) int {
	value := envOr(key, "")
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, errors.New("conversion failed env: "+key))
	}
	return n
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
