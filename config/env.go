package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// defaultJWTSecret keeps local runs working without a .env file. Deployments
// must set JWT_SECRET.
const defaultJWTSecret = "152fe54a-ac31-4d3c-b94b-6135cc25c55a"

type Config struct {
	HTTP     HTTPConfig
	GRPC     GRPCConfig
	Store    StoreConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Geo      GeoConfig
	Telegram TelegramConfig
	Search   SearchConfig
}

type HTTPConfig struct {
	Port        string
	RateLimit   string
	CORSOrigins []string
}

type GRPCConfig struct {
	Port string
	// HealthTarget is the address the gateway probes for detailed health.
	HealthTarget string
}

type StoreConfig struct {
	Driver   string
	DSN      string
	BoltPath string
}

type AuthConfig struct {
	JWTSecret  string
	SessionTTL time.Duration
}

// DefaultSecret reports whether tokens are signed with the built-in secret.
func (a AuthConfig) DefaultSecret() bool {
	return a.JWTSecret == defaultJWTSecret
}

type GeoConfig struct {
	Timeout time.Duration
	MaxAge  time.Duration
}

type TelegramConfig struct {
	Token   string
	ChatIDs []int64
}

type SearchConfig struct {
	Enabled bool
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	grpcPort := getEnv("GRPC_PORT", "50051")

	return Config{
		HTTP: HTTPConfig{
			Port:        getEnv("HTTP_PORT", "8080"),
			RateLimit:   getEnv("RATE_LIMIT", "100-M"),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		},
		GRPC: GRPCConfig{
			Port:         grpcPort,
			HealthTarget: getEnv("GRPC_HEALTH_TARGET", "localhost:"+grpcPort),
		},
		Store: StoreConfig{
			Driver:   getEnv("STORE_DRIVER", "memory"),
			DSN:      getEnv("DATABASE_DSN", ""),
			BoltPath: getEnv("BOLT_PATH", "data/fieldforce.db"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", defaultJWTSecret),
			SessionTTL: getDuration("SESSION_TTL", 12*time.Hour),
		},
		Geo: GeoConfig{
			Timeout: getDuration("GEO_TIMEOUT", 10*time.Second),
			MaxAge:  getDuration("GEO_MAX_AGE", 60*time.Second),
		},
		Telegram: TelegramConfig{
			Token:   getEnv("TELEGRAM_TOKEN", ""),
			ChatIDs: parseChatIDs(getEnv("TELEGRAM_CHAT_IDS", "")),
		},
		Search: SearchConfig{
			Enabled: getEnv("SEARCH_ENABLED", "true") == "true",
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Invalid duration for %s (%q), using %s", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseChatIDs(raw string) []int64 {
	var ids []int64
	for _, part := range splitList(raw) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Printf("Skipping invalid Telegram chat id %q", part)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
