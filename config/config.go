package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerHost         string
	ServerPort         string
	CORSAllowedOrigins []string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	// Redis configuration
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret string

	// Completion provider configuration
	LLMProvider       string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAITextModel   string
	OpenAIVisionModel string
	GeminiAPIKey      string
	GeminiModel       string
	LLMTimeout        time.Duration

	// Optional integrations
	GoogleMapsAPIKey string
	S3BucketName     string
	AWSRegion        string

	// Limits
	MaxImageBytes    int64
	RateLimitPerHour int
}

// Defaults applied when neither an environment variable nor a secret is set.
const (
	DefaultServerPort       = "8080"
	DefaultMaxImageBytes    = 10 << 20
	DefaultRateLimitPerHour = 30
	DefaultLLMTimeout       = 60 * time.Second
)

// LoadConfig creates a new Config instance with values from environment
// variables, Docker secrets and defaults, in that order.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	if env.LoadsDotEnv() {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	cfg := &Config{
		Environment:        env,
		ServerHost:         lookup("SERVER_HOST", "0.0.0.0"),
		ServerPort:         lookup("SERVER_PORT", DefaultServerPort),
		CORSAllowedOrigins: splitList(lookup("CORS_ALLOWED_ORIGINS", "*")),

		DBDriver:   strings.ToLower(lookup("DB_DRIVER", "postgres")),
		DBHost:     lookup("DB_HOST", "localhost"),
		DBPort:     lookup("DB_PORT", "5432"),
		DBUser:     lookup("DB_USER", "postgres"),
		DBPassword: lookup("DB_PASSWORD", ""),
		DBName:     lookup("DB_NAME", "cravewise"),
		DBSSLMode:  lookup("DB_SSL_MODE", "disable"),
		DBPath:     lookup("DB_PATH", "cravewise.db"),

		RedisURL:      lookup("REDIS_URL", ""),
		RedisHost:     lookup("REDIS_HOST", ""),
		RedisPort:     lookup("REDIS_PORT", "6379"),
		RedisPassword: lookup("REDIS_PASSWORD", ""),

		JWTSecret: lookup("JWT_SECRET", ""),

		LLMProvider:       strings.ToLower(lookup("LLM_PROVIDER", "openai")),
		OpenAIAPIKey:      lookup("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     lookup("OPENAI_BASE_URL", ""),
		OpenAITextModel:   lookup("OPENAI_TEXT_MODEL", "gpt-4o-mini"),
		OpenAIVisionModel: lookup("OPENAI_VISION_MODEL", "gpt-4o"),
		GeminiAPIKey:      lookup("GEMINI_API_KEY", ""),
		GeminiModel:       lookup("GEMINI_MODEL", "gemini-2.0-flash"),

		GoogleMapsAPIKey: lookup("GOOGLE_MAPS_API_KEY", ""),
		S3BucketName:     lookup("S3_BUCKET_NAME", ""),
		AWSRegion:        lookup("AWS_REGION", "us-east-1"),
	}

	var problems []string
	var err error
	if cfg.RedisDB, err = strconv.Atoi(lookup("REDIS_DB", "0")); err != nil {
		problems = append(problems, "REDIS_DB must be an integer")
	}
	if cfg.LLMTimeout, err = time.ParseDuration(lookup("LLM_TIMEOUT", DefaultLLMTimeout.String())); err != nil {
		problems = append(problems, "LLM_TIMEOUT must be a duration such as 60s")
	}
	if cfg.MaxImageBytes, err = strconv.ParseInt(lookup("MAX_IMAGE_BYTES", strconv.Itoa(DefaultMaxImageBytes)), 10, 64); err != nil {
		problems = append(problems, "MAX_IMAGE_BYTES must be an integer")
	}
	if cfg.RateLimitPerHour, err = strconv.Atoi(lookup("RATE_LIMIT_PER_HOUR", strconv.Itoa(DefaultRateLimitPerHour))); err != nil {
		problems = append(problems, "RATE_LIMIT_PER_HOUR must be an integer")
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("configuration validation failed:\n%s", strings.Join(problems, "\n"))
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// RedisEnabled reports whether a Redis endpoint was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// lookup reads key from the environment, falling back to a Docker secret
// named after the lower-cased key and finally to def.
func lookup(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	if v := readSecret(strings.ToLower(key)); v != "" {
		return v
	}
	return def
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

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
