// Package cli provides the shared initialization used by the bilancio
// command: logging, environment, configuration and the session store.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"bilancio/internal/config"
	"bilancio/internal/log"
	"bilancio/internal/session"
)

// SetupLogger initializes structured logging and sets it as default.
func SetupLogger(level string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(level),
		Component: log.ComponentApp,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenSession opens the durable session store.
// Returns the store or exits the process on failure.
func OpenSession(logger *log.Logger, dbPath string) *session.Store {
	store, err := session.Open(dbPath)
	if err != nil {
		logger.Error("Opening session store failed", log.FieldError, err)
		os.Exit(1)
	}
	return store
}
