package mediacrush

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mediacrush/mediacrush_sdk_go/internal/httpx"
)

const (
	EnvAPIURL     = "MEDIACRUSH_API_URL"
	EnvAPIVersion = "MEDIACRUSH_API_VERSION"
	EnvConfig     = "MEDIACRUSH_CONFIG"
)

// ConfigFromEnv builds a Config from an optional TOML file named by
// MEDIACRUSH_CONFIG, then applies MEDIACRUSH_API_URL and
// MEDIACRUSH_API_VERSION on top. A .env file in the working directory is
// loaded first when present; variables already set win over it.
func ConfigFromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg, err := LoadConfig(strings.TrimSpace(os.Getenv(EnvConfig)))
	if err != nil {
		return Config{}, err
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIVersion)); v != "" {
		version, err := strconv.ParseFloat(v, 64)
		if err != nil || version <= 0 {
			return Config{}, fmt.Errorf("mediacrush: invalid %s value %q", EnvAPIVersion, v)
		}
		cfg.APIVersion = version
	}
	return cfg, nil
}

// NewFromEnv initialises an HTTP client from ConfigFromEnv.
func NewFromEnv(opts ...httpx.Option) (*Client, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	client, err := NewWithConfig(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("mediacrush: init HTTP client: %w", err)
	}
	return client, nil
}
