package main

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mediacrush/mediacrush_sdk_go/pkg/mediacrush"
	"github.com/mediacrush/mediacrush_sdk_go/pkg/mediacrush/mock"
)

func newSandbox(t *testing.T, store *mock.Mock, opts serverOptions) *mediacrush.Client {
	t.Helper()
	srv := httptest.NewServer(newRouter(store, opts, zap.NewNop()))
	t.Cleanup(srv.Close)

	client, err := mediacrush.New(srv.URL + "/api/")
	require.NoError(t, err)
	return client
}

func TestSandboxRoundTrip(t *testing.T) {
	store := mock.New(mock.WithInstantProcessing())
	client := newSandbox(t, store, serverOptions{})
	ctx := context.Background()

	hash, err := client.UploadStream(ctx, strings.NewReader("GIF89a sandbox"), mediacrush.FileTypeGIF, "loop.gif")
	require.NoError(t, err)
	assert.Equal(t, mock.HashOf([]byte("GIF89a sandbox")), hash)

	ok, err := client.Exists(ctx, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	f, err := client.GetFile(ctx, hash)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, mediacrush.StatusDone, f.Status)
	assert.Equal(t, mediacrush.FileTypeGIF, f.Type)
	assert.Len(t, f.Files, 3)

	files, err := client.GetFiles(ctx, "unknown", hash)
	require.NoError(t, err)
	assert.Nil(t, files[0])
	require.NotNil(t, files[1])
	assert.Equal(t, hash, files[1].Hash)

	_, err = client.UploadStream(ctx, strings.NewReader("GIF89a sandbox"), mediacrush.FileTypeGIF, "copy.gif")
	assert.ErrorIs(t, err, mediacrush.ErrDuplicate)

	require.NoError(t, client.Delete(ctx, hash))
	ok, err = client.Exists(ctx, hash)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, client.Delete(ctx, hash), mediacrush.ErrNotFound)
}

func TestSandboxProcessingFallsBackToInfo(t *testing.T) {
	store := mock.New()
	client := newSandbox(t, store, serverOptions{})
	ctx := context.Background()

	hash, err := client.UploadStream(ctx, strings.NewReader("ID3 tag"), mediacrush.FileTypeMP3, "song.mp3")
	require.NoError(t, err)

	f, err := client.GetFile(ctx, hash)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, mediacrush.StatusProcessing, f.Status)
	assert.Equal(t, mediacrush.FileTypeMP3, f.Type)
}

func TestSandboxDeleteRequiresUploader(t *testing.T) {
	store := mock.New()
	hashes, err := store.Seed([]mock.SeedEntry{{
		Name:   "other.png",
		Base64: base64.StdEncoding.EncodeToString([]byte("someone else")),
		Owner:  "203.0.113.7",
	}})
	require.NoError(t, err)
	client := newSandbox(t, store, serverOptions{})

	err = client.Delete(context.Background(), hashes[0])
	assert.ErrorIs(t, err, mediacrush.ErrOwnershipMismatch)
	assert.Equal(t, http.StatusUnauthorized, mediacrush.StatusCodeOf(err))
}

func TestSandboxUploadURL(t *testing.T) {
	store := mock.New()
	store.AddRemote("https://cdn.example.com/clip.ogv", "", []byte("OggS theora"))
	client := newSandbox(t, store, serverOptions{})
	ctx := context.Background()

	hash, err := client.UploadURL(ctx, "https://cdn.example.com/clip.ogv")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	_, err = client.UploadURL(ctx, "https://cdn.example.com/none.ogv")
	assert.ErrorIs(t, err, mediacrush.ErrRemoteNotFound)

	_, err = client.UploadURL(ctx, "not a url")
	assert.ErrorIs(t, err, mediacrush.ErrInvalidURL)
}

func TestSandboxRateLimitAnswers420(t *testing.T) {
	client := newSandbox(t, mock.New(), serverOptions{uploadLimit: 1, uploadWindow: time.Hour})
	ctx := context.Background()

	_, err := client.UploadStream(ctx, strings.NewReader("first"), mediacrush.FileTypePNG, "a.png")
	require.NoError(t, err)

	_, err = client.UploadStream(ctx, strings.NewReader("second"), mediacrush.FileTypePNG, "b.png")
	require.ErrorIs(t, err, mediacrush.ErrRateLimited)
	assert.Equal(t, mediacrush.StatusRateLimited, mediacrush.StatusCodeOf(err))
}

func TestSandboxEmbeddedErrors(t *testing.T) {
	store := mock.New()
	client := newSandbox(t, store, serverOptions{embedErrors: true})
	ctx := context.Background()

	_, err := client.UploadStream(ctx, strings.NewReader("same"), mediacrush.FileTypeJPEG, "a.jpg")
	require.NoError(t, err)

	_, err = client.UploadStream(ctx, strings.NewReader("same"), mediacrush.FileTypeJPEG, "b.jpg")
	require.ErrorIs(t, err, mediacrush.ErrDuplicate)
	var rej *mediacrush.RejectedError
	require.True(t, errors.As(err, &rej))
	assert.True(t, rej.Embedded)
}

func TestSandboxFailureInjection(t *testing.T) {
	client := newSandbox(t, mock.New(), serverOptions{fail: failConfig{rate: 1, code: http.StatusBadGateway}})

	_, err := client.Exists(context.Background(), "abc")
	require.ErrorIs(t, err, mediacrush.ErrUnknownServer)
	assert.Equal(t, http.StatusBadGateway, mediacrush.StatusCodeOf(err))
}

func TestParseFailConfig(t *testing.T) {
	cfg, err := parseFailConfig("rate=0.25, code=503")
	require.NoError(t, err)
	assert.Equal(t, failConfig{rate: 0.25, code: 503}, cfg)

	cfg, err = parseFailConfig("")
	require.NoError(t, err)
	assert.Equal(t, failConfig{}, cfg)

	for _, bad := range []string{"rate", "rate=x", "rate=2", "code=x", "speed=1"} {
		_, err := parseFailConfig(bad)
		assert.Error(t, err, bad)
	}
}
