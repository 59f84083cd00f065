package confs

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultDatabaseURL = "sqlite://./medication_app.db"
	defaultServerAddr  = "0.0.0.0:8000"
	defaultTokenTTL    = 30
)

var defaultCORSOrigins = []string{
	"http://localhost:5173",
	"http://127.0.0.1:5173",
	"http://localhost:3000",
}

// Config holds process-wide settings read once at startup.
type Config struct {
	DatabaseURL        string
	SecretKey          string
	AccessTokenTTL     time.Duration
	CORSAllowedOrigins []string
	ServerAddr         string
	LogLevel           string
	GinMode            string
	RequireAuth        bool
}

// LoadConfig loads environment variables from a .env file if present
// and builds the Config from them.
func LoadConfig() (*Config, error) {
	// Load .env if it exists; ignore error if file not found
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("warning: could not load .env: %v", err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		return nil, errors.New("SECRET_KEY is required")
	}

	ttlMinutes, err := strconv.Atoi(getEnv("ACCESS_TOKEN_EXPIRE_MINUTES", strconv.Itoa(defaultTokenTTL)))
	if err != nil {
		return nil, fmt.Errorf("invalid ACCESS_TOKEN_EXPIRE_MINUTES: %w", err)
	}
	if ttlMinutes <= 0 {
		return nil, fmt.Errorf("invalid ACCESS_TOKEN_EXPIRE_MINUTES: must be positive, got %d", ttlMinutes)
	}

	requireAuth, err := strconv.ParseBool(getEnv("REQUIRE_AUTH", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUIRE_AUTH: %w", err)
	}

	return &Config{
		DatabaseURL:        getEnv("DATABASE_URL", defaultDatabaseURL),
		SecretKey:          secret,
		AccessTokenTTL:     time.Duration(ttlMinutes) * time.Minute,
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", defaultCORSOrigins),
		ServerAddr:         getEnv("SERVER_ADDR", defaultServerAddr),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		GinMode:            getEnv("GIN_MODE", "release"),
		RequireAuth:        requireAuth,
	}, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func parseCSVEnv(key string, fallback []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
