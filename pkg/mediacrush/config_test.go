package mediacrush

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mediacrush.toml")
	content := `
base_url = "http://localhost:8787/api/"
api_version = 1.0
user_agent = "crusher/0.1"
timeout = "5s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8787/api/", cfg.BaseURL)
	assert.Equal(t, 1.0, cfg.APIVersion)
	assert.Equal(t, "crusher/0.1", cfg.UserAgent)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	partial := filepath.Join(t.TempDir(), "partial.toml")
	require.NoError(t, os.WriteFile(partial, []byte(`api_version = 1.0`), 0o600))
	cfg, err = LoadConfig(partial)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 1.0, cfg.APIVersion)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	dir := t.TempDir()

	badTimeout := filepath.Join(dir, "timeout.toml")
	require.NoError(t, os.WriteFile(badTimeout, []byte(`timeout = "soon"`), 0o600))
	_, err := LoadConfig(badTimeout)
	assert.Error(t, err)

	badSyntax := filepath.Join(dir, "syntax.toml")
	require.NoError(t, os.WriteFile(badSyntax, []byte(`base_url = `), 0o600))
	_, err = LoadConfig(badSyntax)
	assert.Error(t, err)
}

func TestWithDefaultsFillsBlanks(t *testing.T) {
	cfg := Config{UserAgent: "  "}.withDefaults()
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultAPIVersion, cfg.APIVersion)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
}

func TestConfigFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mediacrush.toml")
	require.NoError(t, os.WriteFile(path, []byte("base_url = \"http://file.test/api/\"\ntimeout = \"2s\"\n"), 0o600))

	t.Setenv(EnvConfig, path)
	t.Setenv(EnvAPIURL, "http://env.test/api/")
	t.Setenv(EnvAPIVersion, "1")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "http://env.test/api/", cfg.BaseURL)
	assert.Equal(t, 1.0, cfg.APIVersion)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
}

func TestConfigFromEnvRejectsBadVersion(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvAPIVersion, "two")

	_, err := ConfigFromEnv()
	assert.Error(t, err)
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvAPIURL, "http://127.0.0.1:8787/api")
	t.Setenv(EnvAPIVersion, "")

	client, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8787/api/", client.BaseURL())
	assert.Equal(t, DefaultAPIVersion, client.APIVersion())

	t.Setenv(EnvAPIURL, "relative/path")
	_, err = NewFromEnv()
	assert.Error(t, err)
}
