package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Auth    AuthConfig
	Storage StorageConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port            string
	GinMode         string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

type AuthConfig struct {
	JWTSecret string
}

type StorageConfig struct {
	UploadDir string
}

type LogConfig struct {
	Level  string
	Format string
}

const defaultShutdownTimeout = 10 * time.Second

// Load reads an optional .env file from the working directory and then the process environment.
// Variables already set in the environment win over the .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Server: ServerConfig{
			Port:            getenv("PORT", "5000"),
			GinMode:         getenv("GIN_MODE", "release"),
			AllowedOrigins:  splitList(getenv("CORS_ALLOWED_ORIGINS", "*")),
			ShutdownTimeout: getduration("SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
		},
		Storage: StorageConfig{
			UploadDir: getenv("UPLOAD_DIR", "uploads"),
		},
		Log: LogConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "json"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
