// Package config reads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds settings read once at startup.
type Config struct {
	Port             string
	DatabaseURL      string
	JWTSecret        string
	GeminiAPIKey     string
	GeminiModel      string
	AITimeout        time.Duration
	TelegramBotToken string
	PublicBaseURL    string
	LogLevel         string
	CORSOrigins      []string
}

const (
	defaultPort      = "8080"
	defaultDBPath    = "expenses.db"
	defaultModel     = "gemini-2.5-flash"
	defaultAITimeout = 20 * time.Second
)

// Load reads an optional .env file from the working directory and then the
// environment. Variables already set in the environment win over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Port:             getenv("PORT", defaultPort),
		DatabaseURL:      getenv("DATABASE_URL", getenv("DB_PATH", defaultDBPath)),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      getenv("GEMINI_MODEL", defaultModel),
		AITimeout:        defaultAITimeout,
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
	}
	cfg.PublicBaseURL = strings.TrimRight(getenv("PUBLIC_BASE_URL", "http://localhost:"+cfg.Port), "/")

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is required")
	}

	if v := os.Getenv("AI_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid AI_TIMEOUT %q", v)
		}
		cfg.AITimeout = d
	}

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	} else {
		cfg.CORSOrigins = []string{"*"}
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
