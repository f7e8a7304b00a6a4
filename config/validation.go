package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates every problem found in one pass.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return fmt.Sprintf("configuration validation failed:\n%s", strings.Join(lines, "\n"))
}

// minProductionSecretLength guards against placeholder JWT secrets.
const minProductionSecretLength = 32

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port <= 0 || port > 65535 {
		add("SERVER_PORT", "must be a valid TCP port")
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" {
			add("DB_HOST", "is required for the postgres driver")
		}
		if cfg.DBName == "" {
			add("DB_NAME", "is required for the postgres driver")
		}
		if cfg.Environment == Production && cfg.DBPassword == "" {
			add("DB_PASSWORD", "db_password secret is required")
		}
	case "sqlite":
		if cfg.DBPath == "" {
			add("DB_PATH", "is required for the sqlite driver")
		}
	default:
		add("DB_DRIVER", fmt.Sprintf("unsupported driver %q (want postgres or sqlite)", cfg.DBDriver))
	}

	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			add("OPENAI_API_KEY", "is required when LLM_PROVIDER=openai")
		}
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			add("GEMINI_API_KEY", "is required when LLM_PROVIDER=gemini")
		}
	default:
		add("LLM_PROVIDER", fmt.Sprintf("unsupported provider %q (want openai or gemini)", cfg.LLMProvider))
	}

	if cfg.LLMTimeout <= 0 {
		add("LLM_TIMEOUT", "must be positive")
	}
	if cfg.MaxImageBytes <= 0 {
		add("MAX_IMAGE_BYTES", "must be positive")
	}
	if cfg.RateLimitPerHour < 0 {
		add("RATE_LIMIT_PER_HOUR", "must not be negative")
	}

	if cfg.Environment == Production {
		if len(cfg.JWTSecret) < minProductionSecretLength {
			add("JWT_SECRET", fmt.Sprintf("must be at least %d characters in production", minProductionSecretLength))
		}
		for _, origin := range cfg.CORSAllowedOrigins {
			if origin == "*" {
				add("CORS_ALLOWED_ORIGINS", "wildcard origin is not allowed in production")
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
