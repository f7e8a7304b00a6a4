package config

import (
	"os"
	"strings"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment determines the current environment
func GetEnvironment() Environment {
	// CI environment is automatically detected
	if os.Getenv("CI") == "true" {
		return CI
	}
	return ParseEnvironment(os.Getenv("ENV"))
}

// ParseEnvironment maps an ENV value to an Environment, defaulting to development.
func ParseEnvironment(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production", "prod":
		return Production
	case "test":
		return Test
	case "ci":
		return CI
	default:
		return Development
	}
}

// LoadsDotEnv reports whether a local .env file should be honoured.
func (e Environment) LoadsDotEnv() bool {
	return e != Production
}

// IsTest returns true when running under tests or CI
func (e Environment) IsTest() bool {
	return e == Test || e == CI
}
