package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseDriver string
	DatabaseURL    string
	JWTSecretKey   string
	ServerPort     int

	OrganizerPasswordHash string
	TokenTTL              time.Duration
	OddPlayerPolicy       string
	LogLevel              slog.Level
	CORSAllowedOrigins    []string

	Archive ArchiveConfig
}

// ArchiveConfig описывает S3/R2 бакет для архива снимков туров.
// Пустой BucketName отключает архив.
type ArchiveConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
}

func (a ArchiveConfig) Enabled() bool {
	return a.BucketName != ""
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	driver := getEnvOrDefault("DATABASE_DRIVER", "postgres")
	if driver != "postgres" && driver != "sqlite3" {
		return nil, fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite3, got %q", driver)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	port, err := strconv.Atoi(getEnvOrDefault("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	tokenTTL, err := time.ParseDuration(getEnvOrDefault("TOKEN_TTL", "24h"))
	if err != nil || tokenTTL <= 0 {
		return nil, fmt.Errorf("invalid TOKEN_TTL environment variable: %q", os.Getenv("TOKEN_TTL"))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnvOrDefault("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
	}

	cfg := &Config{
		DatabaseDriver:        driver,
		DatabaseURL:           dbURL,
		JWTSecretKey:          os.Getenv("JWT_SECRET_KEY"),
		ServerPort:            port,
		OrganizerPasswordHash: os.Getenv("ORGANIZER_PASSWORD_HASH"),
		TokenTTL:              tokenTTL,
		OddPlayerPolicy:       getEnvOrDefault("ODD_PLAYER_POLICY", "error"),
		LogLevel:              level,
		CORSAllowedOrigins:    splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		Archive: ArchiveConfig{
			Endpoint:        os.Getenv("ARCHIVE_ENDPOINT"),
			Region:          os.Getenv("ARCHIVE_REGION"),
			AccessKeyID:     os.Getenv("ARCHIVE_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("ARCHIVE_SECRET_ACCESS_KEY"),
			BucketName:      os.Getenv("ARCHIVE_BUCKET"),
			PublicBaseURL:   os.Getenv("ARCHIVE_PUBLIC_BASE_URL"),
		},
	}

	return cfg, nil
}

// RequireServerSecrets проверяет то, без чего HTTP-сервер не стартует.
func (c *Config) RequireServerSecrets() error {
	if c.JWTSecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
