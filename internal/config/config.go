package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App            AppConfig
	Postgres       PostgresConfig
	Redis          RedisConfig
	Logger         LoggerConfig
	Auth           AuthConfig
	Classifier     ClassifierConfig
	DocumentReader DocumentReaderConfig
	Geocoder       GeocoderConfig
	Worker         WorkerConfig
	Notification   NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	CORSOrigins           string
	MaxComplaintLength    int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	QueueKey string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// ClassifierConfig points at the complaint classification service.
type ClassifierConfig struct {
	BaseURL        string
	TimeoutSeconds int
	RatePerSecond  float64
	Burst          int
}

// DocumentReaderConfig points at the identity document OCR service.
type DocumentReaderConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// GeocoderConfig points at the reverse geocoding service.
type GeocoderConfig struct {
	BaseURL        string
	UserAgent      string
	TimeoutSeconds int
}

// WorkerConfig controls the classification retry worker.
type WorkerConfig struct {
	Enabled           bool
	RetryDelaySeconds int
	PopTimeoutSeconds int
}

// NotificationConfig holds outbound notification targets.
type NotificationConfig struct {
	WebhookURL     string
	TimeoutSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	rate, err := strconv.ParseFloat(getEnv("CLASSIFIER_RATE_PER_SECOND", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CLASSIFIER_RATE_PER_SECOND: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "grievance-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "5000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			CORSOrigins:           getEnv("CORS_ALLOW_ORIGINS", "*"),
			MaxComplaintLength:    getEnvAsInt("COMPLAINT_MAX_LENGTH", 5000),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
			QueueKey: getEnv("REDIS_CLASSIFICATION_QUEUE", "grievance:classification:pending"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 10),
		},
		Classifier: ClassifierConfig{
			BaseURL:        getEnv("CLASSIFIER_BASE_URL", "http://127.0.0.1:8000"),
			TimeoutSeconds: getEnvAsInt("CLASSIFIER_TIMEOUT_SECONDS", 10),
			RatePerSecond:  rate,
			Burst:          getEnvAsInt("CLASSIFIER_BURST", 10),
		},
		DocumentReader: DocumentReaderConfig{
			BaseURL:        getEnv("DOCUMENT_READER_BASE_URL", "http://127.0.0.1:8001"),
			TimeoutSeconds: getEnvAsInt("DOCUMENT_READER_TIMEOUT_SECONDS", 20),
		},
		Geocoder: GeocoderConfig{
			BaseURL:        getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
			UserAgent:      getEnv("GEOCODER_USER_AGENT", "grievance-service/1.0"),
			TimeoutSeconds: getEnvAsInt("GEOCODER_TIMEOUT_SECONDS", 10),
		},
		Worker: WorkerConfig{
			Enabled:           getEnvAsBool("CLASSIFICATION_WORKER_ENABLED", true),
			RetryDelaySeconds: getEnvAsInt("CLASSIFICATION_RETRY_DELAY_SECONDS", 30),
			PopTimeoutSeconds: getEnvAsInt("CLASSIFICATION_POP_TIMEOUT_SECONDS", 5),
		},
		Notification: NotificationConfig{
			WebhookURL:     getEnv("NOTIFY_WEBHOOK_URL", ""),
			TimeoutSeconds: getEnvAsInt("NOTIFY_WEBHOOK_TIMEOUT_SECONDS", 5),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	return seconds(a.RequestTimeoutSeconds)
}

// TokenTTL returns the access token lifetime.
func (a AuthConfig) TokenTTL() time.Duration {
	if a.AccessTokenTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

func (c ClassifierConfig) Timeout() time.Duration     { return seconds(c.TimeoutSeconds) }
func (c DocumentReaderConfig) Timeout() time.Duration { return seconds(c.TimeoutSeconds) }
func (c GeocoderConfig) Timeout() time.Duration       { return seconds(c.TimeoutSeconds) }
func (c NotificationConfig) Timeout() time.Duration   { return seconds(c.TimeoutSeconds) }

// RetryDelay is how long a failed classification waits before it is queued again.
func (w WorkerConfig) RetryDelay() time.Duration { return seconds(w.RetryDelaySeconds) }

// PopTimeout bounds a single blocking queue read.
func (w WorkerConfig) PopTimeout() time.Duration { return seconds(w.PopTimeoutSeconds) }

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
