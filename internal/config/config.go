package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Mongo     MongoConfig
	Kafka     KafkaConfig
	Security  SecurityConfig
	Websocket WebsocketConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Port string
}

type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type KafkaConfig struct {
	Brokers []string
	GroupID string
}

type SecurityConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type WebsocketConfig struct {
	SendTimeout time.Duration
}

type LoggingConfig struct {
	Level     string
	Format    string
	Directory string
}

// Load assembles the configuration from environment variables, applying
// defaults suitable for local runs. Only the JWT secret is mandatory.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8000"),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DATABASE", "vehicle_rental"),
			Timeout:  getDuration("MONGO_TIMEOUT", 10*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", getEnv("KAFKA_BROKER", "localhost:9092"))),
			GroupID: getEnv("KAFKA_GROUP_ID", "rental-notifications"),
		},
		Security: SecurityConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
			TokenTTL:  getDuration("TOKEN_TTL", 30*time.Minute),
		},
		Websocket: WebsocketConfig{
			SendTimeout: getDuration("WS_SEND_TIMEOUT", 5*time.Second),
		},
		Logging: LoggingConfig{
			Level:     getEnv("LOG_LEVEL", "info"),
			Format:    getEnv("LOG_FORMAT", "text"),
			Directory: getEnv("LOG_DIR", "./logs"),
		},
	}

	if strings.TrimSpace(cfg.Security.JWTSecret) == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is required")
	}
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("config: no kafka brokers configured")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
