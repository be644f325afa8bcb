package mediacrush

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	// Version is the SDK release reported in the User-Agent header.
	Version = "1.0.0"

	DefaultBaseURL    = "https://www.mediacru.sh/api/"
	DefaultAPIVersion = 2.0
	DefaultUserAgent  = "mediacrush_sdk_go/" + Version
)

// Config is the explicit client configuration. APIVersion only changes which
// response fields are decoded; request URLs are the same for every version.
type Config struct {
	BaseURL    string
	APIVersion float64
	UserAgent  string
	// Timeout bounds each round trip; zero keeps the transport default.
	Timeout time.Duration
}

// DefaultConfig returns the configuration for the public MediaCrush instance.
func DefaultConfig() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		APIVersion: DefaultAPIVersion,
		UserAgent:  DefaultUserAgent,
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = def.BaseURL
	}
	if c.APIVersion <= 0 {
		c.APIVersion = def.APIVersion
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		c.UserAgent = def.UserAgent
	}
	return c
}

// LoadConfig reads a TOML file with the keys base_url, api_version,
// user_agent and timeout. A missing file yields DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("mediacrush: open config: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("mediacrush: read config: %w", err)
	}

	var raw struct {
		BaseURL    string  `toml:"base_url"`
		APIVersion float64 `toml:"api_version"`
		UserAgent  string  `toml:"user_agent"`
		Timeout    string  `toml:"timeout"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("mediacrush: parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	if raw.APIVersion > 0 {
		cfg.APIVersion = raw.APIVersion
	}
	if v := strings.TrimSpace(raw.UserAgent); v != "" {
		cfg.UserAgent = v
	}
	if v := strings.TrimSpace(raw.Timeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("mediacrush: parse config timeout: %w", err)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}
