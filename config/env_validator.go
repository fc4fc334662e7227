package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvValidator handles validation of required environment variables
type EnvValidator struct{}

// NewEnvValidator creates a new environment validator instance
func NewEnvValidator() *EnvValidator {
	return &EnvValidator{}
}

// ValidateRequired checks that credentials are present: either a static
// access token, or all three variables of the refresh-token grant.
func (e *EnvValidator) ValidateRequired() error {
	if os.Getenv("SPOTIFY_ACCESS_TOKEN") != "" {
		return nil
	}

	refreshVars := []string{"SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET", "SPOTIFY_REFRESH_TOKEN"}

	var missingVars []string
	for _, varName := range refreshVars {
		if value := os.Getenv(varName); value == "" {
			missingVars = append(missingVars, varName)
		}
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v. Set SPOTIFY_ACCESS_TOKEN or all of the refresh-token variables in your .env file or environment", missingVars)
	}

	return nil
}

// GetString returns the variable or def when unset
func (e *EnvValidator) GetString(name, def string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return def
}

// GetInt parses an integer variable, returning def when unset
func (e *EnvValidator) GetInt(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer, got: %s", name, raw)
	}
	return value, nil
}

// GetDuration parses a duration variable such as "10s". A bare integer is
// taken as seconds.
func (e *EnvValidator) GetDuration(name string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration, got: %s", name, raw)
	}
	return value, nil
}

// GetBool parses a boolean variable such as "true" or "1"
func (e *EnvValidator) GetBool(name string, def bool) (bool, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got: %s", name, raw)
	}
	return value, nil
}
