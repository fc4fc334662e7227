package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"coverfetch/downloader"
	"coverfetch/pipeline"
	"coverfetch/spotify"
)

const (
	DefaultConcurrency = pipeline.DefaultConcurrency
	DefaultTimeout     = downloader.DefaultTimeout
	DefaultRetries     = downloader.DefaultMaxRetries
	DefaultLogLevel    = "INFO"
)

// Config holds all configuration values for a coverfetch run
type Config struct {
	AccessToken  string // static bearer token
	ClientID     string // refresh-token grant
	ClientSecret string
	RefreshToken string
	APIURL       string
	TokenURL     string

	ImagesDir    string        // directory thumbnails are written to
	Concurrency  int           // simultaneous downloads; <= 0 is unbounded
	Timeout      time.Duration // per-request download timeout
	Retries      int           // retries per thumbnail after the first attempt
	SkipExisting bool          // keep thumbnails already on disk

	LogLevel string // DEBUG, INFO, WARN, ERROR
	LogFile  string // optional rotated JSON log
}

// LoadConfig loads the configuration from the environment, reading a .env
// file first if one exists.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: .env file could not be loaded: %v", err)
	}

	validator := NewEnvValidator()

	if err := validator.ValidateRequired(); err != nil {
		return nil, fmt.Errorf("environment validation failed: %w", err)
	}

	concurrency, err := validator.GetInt("DOWNLOAD_CONCURRENCY", DefaultConcurrency)
	if err != nil {
		return nil, fmt.Errorf("environment validation failed: %w", err)
	}
	retries, err := validator.GetInt("DOWNLOAD_RETRIES", DefaultRetries)
	if err != nil {
		return nil, fmt.Errorf("environment validation failed: %w", err)
	}
	timeout, err := validator.GetDuration("DOWNLOAD_TIMEOUT", DefaultTimeout)
	if err != nil {
		return nil, fmt.Errorf("environment validation failed: %w", err)
	}
	skipExisting, err := validator.GetBool("SKIP_EXISTING", false)
	if err != nil {
		return nil, fmt.Errorf("environment validation failed: %w", err)
	}

	config := &Config{
		AccessToken:  validator.GetString("SPOTIFY_ACCESS_TOKEN", ""),
		ClientID:     validator.GetString("SPOTIFY_CLIENT_ID", ""),
		ClientSecret: validator.GetString("SPOTIFY_CLIENT_SECRET", ""),
		RefreshToken: validator.GetString("SPOTIFY_REFRESH_TOKEN", ""),
		APIURL:       validator.GetString("SPOTIFY_API_URL", spotify.DefaultBaseURL),
		TokenURL:     validator.GetString("SPOTIFY_TOKEN_URL", spotify.DefaultTokenURL),
		ImagesDir:    validator.GetString("IMAGES_DIR", downloader.DefaultBaseDir),
		Concurrency:  concurrency,
		Timeout:      timeout,
		Retries:      retries,
		SkipExisting: skipExisting,
		LogLevel:     strings.ToUpper(validator.GetString("LOG_LEVEL", DefaultLogLevel)),
		LogFile:      validator.GetString("LOG_FILE", ""),
	}

	return config, nil
}

// Validate performs additional validation on the loaded configuration
func (c *Config) Validate() error {
	if c.AccessToken == "" && (c.ClientID == "" || c.ClientSecret == "" || c.RefreshToken == "") {
		return fmt.Errorf("either an access token or client id, secret and refresh token are required")
	}

	if c.APIURL == "" {
		return fmt.Errorf("API URL cannot be empty")
	}

	if c.ImagesDir == "" {
		return fmt.Errorf("images directory cannot be empty")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("download timeout must be positive, got: %s", c.Timeout)
	}

	if c.Retries < 0 {
		return fmt.Errorf("download retries cannot be negative, got: %d", c.Retries)
	}

	validLogLevels := map[string]bool{
		"DEBUG": true,
		"INFO":  true,
		"WARN":  true,
		"ERROR": true,
	}

	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s. Valid levels are: DEBUG, INFO, WARN, ERROR", c.LogLevel)
	}

	return nil
}
