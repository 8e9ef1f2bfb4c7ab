package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	DatabaseType    string
	DatabasePath    string
	DatabaseURL     string
	SessionDuration time.Duration
	StaticFilesPath string
	MigrationsPath  string
	AppBaseURL      string
	Debug           bool

	// Secrets
	JWTSecret  string
	CSRFSecret string
	TokenTTL   time.Duration

	// Login throttling
	RateLimitRPS   int
	RateLimitBurst int

	// AI analysis
	OpenAIAPIKey string
	OpenAIModel  string

	// Email (Amazon SES)
	AWSRegion    string
	SESFromEmail string
	SESFromName  string

	// Google sign-in
	GoogleClientID       string
	GoogleClientSecret   string
	OAuthRedirectBaseURL string

	// Bootstrap admin, created when the users table is empty
	AdminEmail    string
	AdminPassword string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:           getEnv("PORT", "8080"),
		DatabaseType:         strings.ToLower(getEnv("DB_TYPE", "sqlite")),
		DatabasePath:         getEnv("DB_PATH", "./learnplay.db"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		SessionDuration:      getDuration("SESSION_DURATION", 7*24*time.Hour),
		StaticFilesPath:      getEnv("STATIC_PATH", "./static"),
		MigrationsPath:       getEnv("MIGRATIONS_PATH", "./migrations"),
		AppBaseURL:           getEnv("APP_BASE_URL", "http://localhost:8080"),
		Debug:                getBool("DEBUG", false),
		JWTSecret:            getEnv("JWT_SECRET", "change-me-in-production"),
		CSRFSecret:           getEnv("CSRF_SECRET", "change-me-in-production"),
		TokenTTL:             getDuration("TOKEN_TTL", 12*time.Hour),
		RateLimitRPS:         getInt("RATE_LIMIT_RPS", 1),
		RateLimitBurst:       getInt("RATE_LIMIT_BURST", 5),
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:          getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		AWSRegion:            getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:         getEnv("SES_FROM_EMAIL", ""),
		SESFromName:          getEnv("SES_FROM_NAME", "LearnPlay"),
		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		OAuthRedirectBaseURL: getEnv("OAUTH_REDIRECT_BASE_URL", ""),
		AdminEmail:           getEnv("ADMIN_EMAIL", ""),
		AdminPassword:        getEnv("ADMIN_PASSWORD", ""),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return n
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return b
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return d
	}
	return defaultValue
}
