package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// DefaultStoreFile is the store created in the working directory
const DefaultStoreFile = ".chatvault"

// Config holds chatvault settings, read from the environment and an
// optional .env file in the working directory.
type Config struct {
	StorePath  string        `env:"CHATVAULT_PATH" envDefault:".chatvault"`
	DevMode    bool          `env:"CHATVAULT_DEV" envDefault:"false"`
	LogLevel   string        `env:"CHATVAULT_LOG_LEVEL" envDefault:"warn"`
	Cipher     string        `env:"CHATVAULT_CIPHER" envDefault:"auto"`
	DefaultURL string        `env:"CHATVAULT_DEFAULT_URL" envDefault:"https://agentrouter.org"`
	Timeout    time.Duration `env:"CHATVAULT_TIMEOUT" envDefault:"60s"`

	// APIKey is used by `add` instead of prompting
	APIKey string `env:"CHATVAULT_API_KEY"`
}

// Load reads .env (if present) and the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks and normalizes the configuration
func (c *Config) Validate() error {
	c.Cipher = strings.ToLower(strings.TrimSpace(c.Cipher))
	switch c.Cipher {
	case "auto", "simple":
	default:
		return fmt.Errorf("CHATVAULT_CIPHER must be auto or simple, got %q", c.Cipher)
	}

	if strings.TrimSpace(c.StorePath) == "" {
		c.StorePath = DefaultStoreFile
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("CHATVAULT_TIMEOUT must be positive, got %s", c.Timeout)
	}
	c.DefaultURL = strings.TrimRight(strings.TrimSpace(c.DefaultURL), "/")
	return nil
}
