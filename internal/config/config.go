package config

import (
	"fmt"
	"time"

	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/config"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/database"
)

// Config holds all settings for the service, loaded from the environment.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"akart-backend"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Version     string `env:"VERSION" envDefault:"dev"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	HTTP    HTTPConfig
	Mongo   database.MongoConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	JWT     JWTConfig
	Uploads UploadsConfig
	Tracing TracingConfig
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int           `env:"HTTP_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
	AllowedOrigins  []string      `env:"HTTP_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// RedisConfig extends the connection settings with cache behavior.
type RedisConfig struct {
	database.RedisConfig
	Enabled  bool          `env:"REDIS_CACHE_ENABLED" envDefault:"true"`
	CacheTTL time.Duration `env:"REDIS_CACHE_TTL" envDefault:"5m"`
}

// KafkaConfig holds event publishing settings.
type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic   string   `env:"KAFKA_TOPIC" envDefault:"akart.events"`
	Enabled bool     `env:"KAFKA_ENABLED" envDefault:"true"`
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string        `env:"JWT_SECRET,required"`
	Expiry time.Duration `env:"JWT_EXPIRY" envDefault:"168h"`
}

// UploadsConfig holds image hosting settings. When CloudName is empty the
// service falls back to in-memory storage, which is suitable only for
// development.
type UploadsConfig struct {
	CloudName    string `env:"CLOUDINARY_CLOUD_NAME"`
	APIKey       string `env:"CLOUDINARY_API_KEY"`
	APISecret    string `env:"CLOUDINARY_API_SECRET"`
	UploadFolder string `env:"CLOUDINARY_FOLDER" envDefault:"akart"`
	MaxSizeBytes int64  `env:"UPLOAD_MAX_SIZE_BYTES" envDefault:"5242880"`
}

// TracingConfig holds OpenTelemetry exporter settings.
type TracingConfig struct {
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
