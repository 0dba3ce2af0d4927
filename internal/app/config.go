package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/yungbote/production-portal-backend/internal/platform/logger"
)

const defaultJWTSecret = "defaultsecret"

type Config struct {
	LogMode string `env:"LOG_MODE" envDefault:"development"`
	Port    string `env:"PORT" envDefault:"8080"`

	DBDriver         string `env:"DB_DRIVER" envDefault:"postgres"`
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresName     string `env:"POSTGRES_NAME" envDefault:"production_portal"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	PostgresMaxConns int    `env:"POSTGRES_MAX_OPEN_CONNS" envDefault:"20"`
	SQLitePath       string `env:"SQLITE_PATH"`
	SeedCatalogs     bool   `env:"SEED_CATALOGS" envDefault:"true"`

	JWTSecretKey   string        `env:"JWT_SECRET_KEY" envDefault:"defaultsecret"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`

	RedisAddr      string        `env:"REDIS_ADDR"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	EventsChannel  string        `env:"REDIS_EVENTS_CHANNEL" envDefault:"production-events"`
	CatalogTTL     time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"5m"`
	RequestLockTTL time.Duration `env:"REQUEST_LOCK_TTL" envDefault:"10s"`

	ObjectStorageMode    string `env:"OBJECT_STORAGE_MODE"`
	StorageEmulatorHost  string `env:"STORAGE_EMULATOR_HOST"`
	AttachmentBucket     string `env:"ATTACHMENT_GCS_BUCKET_NAME"`
	AttachmentCDNDomain  string `env:"ATTACHMENT_CDN_DOMAIN"`
	ObjectStorageBaseURL string `env:"OBJECT_STORAGE_PUBLIC_BASE_URL"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`

	OtelEnabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OtelServiceName string  `env:"OTEL_SERVICE_NAME" envDefault:"production-portal-backend"`
	OtelEnvironment string  `env:"OTEL_ENVIRONMENT" envDefault:"development"`
	OtelVersion     string  `env:"OTEL_SERVICE_VERSION"`
	OtelEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelHeaders     string  `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	OtelInsecure    bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`
	OtelSampleRatio float64 `env:"OTEL_SAMPLER_RATIO" envDefault:"1"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// loadDotEnv reads .env then .env.local when present. Real environment variables win.
func loadDotEnv() {
	for _, path := range []string{".env", ".env.local"} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
		}
	}
}

func parseConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env config: %w", err)
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	cfg.RedisAddr = strings.TrimSpace(cfg.RedisAddr)
	cfg.AttachmentBucket = strings.TrimSpace(cfg.AttachmentBucket)
	origins := cfg.CORSAllowedOrigins[:0]
	for _, o := range cfg.CORSAllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	cfg.CORSAllowedOrigins = origins
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	return cfg, nil
}

func LoadConfig(log *logger.Logger) (Config, error) {
	loadDotEnv()
	cfg, err := parseConfig()
	if err != nil {
		return Config{}, err
	}
	if cfg.JWTSecretKey == defaultJWTSecret {
		log.Warn("JWT_SECRET_KEY not set, using the development default")
	}
	if cfg.RedisAddr == "" {
		log.Warn("REDIS_ADDR not set, running without shared cache, cross-replica locks and change events")
	}
	if cfg.AttachmentBucket == "" {
		log.Warn("ATTACHMENT_GCS_BUCKET_NAME not set, file uploads are disabled")
	}
	return cfg, nil
}
