package crushsdk_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediacrush/mediacrush_sdk_go/pkg/crushsdk"
	"github.com/mediacrush/mediacrush_sdk_go/pkg/mediacrush"
	"github.com/mediacrush/mediacrush_sdk_go/pkg/mediacrush/mock"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		crushsdk.EnvMode,
		crushsdk.EnvMockSeed,
		mediacrush.EnvAPIURL,
		mediacrush.EnvAPIVersion,
		mediacrush.EnvConfig,
	} {
		t.Setenv(key, "")
	}
}

func TestNewFromEnvHTTPMode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/abc/exists" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	clearEnv(t)
	t.Setenv(crushsdk.EnvMode, "http")
	t.Setenv(mediacrush.EnvAPIURL, srv.URL+"/api/")

	client, mode, err := crushsdk.NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, crushsdk.ModeHTTP, mode)

	ok, err := client.Exists(context.Background(), "abc")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewFromEnvHTTPModeRequiresURL(t *testing.T) {
	clearEnv(t)
	t.Setenv(crushsdk.EnvMode, "http")

	_, _, err := crushsdk.NewFromEnv()
	assert.Error(t, err)
}

func TestNewFromEnvAutoFallsBackToMock(t *testing.T) {
	clearEnv(t)

	client, mode, err := crushsdk.NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, crushsdk.ModeMock, mode)

	hash, err := client.UploadStream(context.Background(), strings.NewReader("ID3"), mediacrush.FileTypeMP3, "a.mp3")
	require.NoError(t, err)
	assert.Equal(t, mock.HashOf([]byte("ID3")), hash)
}

func TestNewFromEnvSeedsMock(t *testing.T) {
	seed := `[{"name":"seed.gif","base64":"` + base64.StdEncoding.EncodeToString([]byte("GIF89a-seed")) + `"}]`
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	clearEnv(t)
	t.Setenv(crushsdk.EnvMode, "mock")
	t.Setenv(crushsdk.EnvMockSeed, path)

	client, mode, err := crushsdk.NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, crushsdk.ModeMock, mode)

	f, err := client.GetFile(context.Background(), mock.HashOf([]byte("GIF89a-seed")))
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, mediacrush.FileTypeGIF, f.Type)
	assert.Equal(t, mediacrush.StatusDone, f.Status)
}

func TestNewFromEnvRejectsUnknownMode(t *testing.T) {
	clearEnv(t)
	t.Setenv(crushsdk.EnvMode, "carrier-pigeon")

	_, _, err := crushsdk.NewFromEnv()
	assert.Error(t, err)
}
