package crushsdk

import (
	"fmt"
	"os"
	"strings"

	"github.com/mediacrush/mediacrush_sdk_go/pkg/mediacrush"
	"github.com/mediacrush/mediacrush_sdk_go/pkg/mediacrush/mock"
)

const (
	EnvMode     = "MEDIACRUSH_MODE"
	EnvMockSeed = "MEDIACRUSH_MOCK_SEED"

	ModeAuto = "auto"
	ModeHTTP = "http"
	ModeMock = "mock"
)

// NewFromEnv initialises a client according to MEDIACRUSH_MODE and returns
// the resolved mode ("http" or "mock"). An unset mode behaves as "auto".
// opts only apply to HTTP clients.
func NewFromEnv(opts ...mediacrush.Option) (*mediacrush.Client, string, error) {
	cfg, err := mediacrush.ConfigFromEnv()
	if err != nil {
		return nil, "", err
	}
	// read after ConfigFromEnv, which may have loaded .env
	mode := strings.ToLower(strings.TrimSpace(os.Getenv(EnvMode)))
	apiURL := strings.TrimSpace(os.Getenv(mediacrush.EnvAPIURL))

	switch mode {
	case "", ModeAuto:
		if apiURL != "" {
			return newHTTPClient(cfg, opts)
		}
		return newMockClient(cfg)
	case ModeHTTP:
		if apiURL == "" {
			return nil, "", fmt.Errorf("crushsdk: HTTP mode requires %s", mediacrush.EnvAPIURL)
		}
		return newHTTPClient(cfg, opts)
	case ModeMock:
		return newMockClient(cfg)
	default:
		return nil, "", fmt.Errorf("crushsdk: unsupported %s value %q", EnvMode, mode)
	}
}

func newHTTPClient(cfg mediacrush.Config, opts []mediacrush.Option) (*mediacrush.Client, string, error) {
	client, err := mediacrush.NewWithConfig(cfg, opts...)
	if err != nil {
		return nil, "", fmt.Errorf("crushsdk: init HTTP client: %w", err)
	}
	return client, ModeHTTP, nil
}

func newMockClient(cfg mediacrush.Config) (*mediacrush.Client, string, error) {
	backend := mock.New()
	if path := strings.TrimSpace(os.Getenv(EnvMockSeed)); path != "" {
		entries, err := mock.LoadSeed(path)
		if err != nil {
			return nil, "", fmt.Errorf("crushsdk: load mock seed: %w", err)
		}
		if _, err := backend.Seed(entries); err != nil {
			return nil, "", fmt.Errorf("crushsdk: apply mock seed: %w", err)
		}
	}
	return mediacrush.NewWithBackend(backend, cfg), ModeMock, nil
}
