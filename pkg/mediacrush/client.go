package mediacrush

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/mediacrush/mediacrush_sdk_go/internal/crushapi"
	"github.com/mediacrush/mediacrush_sdk_go/internal/httpx"
)

// Backend performs the raw operations behind a Client. Lookup methods return
// undecoded JSON so the Client can apply its schema version. The HTTP backend
// talks to a MediaCrush server; mock.Mock serves the same contract in memory.
type Backend interface {
	Exists(ctx context.Context, hash string) (bool, error)
	Info(ctx context.Context, hash string) ([]byte, error)
	Status(ctx context.Context, hash string) ([]byte, error)
	// InfoList returns a JSON object keyed by hash, or nil when the server
	// knows none of the hashes.
	InfoList(ctx context.Context, hashes []string) ([]byte, error)
	UploadFile(ctx context.Context, upload *FileUpload) (string, error)
	UploadURL(ctx context.Context, rawURL string) (string, error)
	Delete(ctx context.Context, hash string) error
}

// Client exposes the MediaCrush API. A Client is immutable and may be shared
// between goroutines.
type Client struct {
	backend Backend
	config  Config
}

// New constructs an HTTP-backed client for baseURL with default settings.
func New(baseURL string, opts ...httpx.Option) (*Client, error) {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	return NewWithConfig(cfg, opts...)
}

// NewWithConfig constructs an HTTP-backed client from cfg.
func NewWithConfig(cfg Config, opts ...httpx.Option) (*Client, error) {
	cfg = cfg.withDefaults()
	if cfg.Timeout > 0 {
		opts = append([]httpx.Option{httpx.WithTimeout(cfg.Timeout)}, opts...)
	}
	cl, err := httpx.NewClient(cfg.BaseURL, cfg.UserAgent, opts...)
	if err != nil {
		return nil, err
	}
	cfg.BaseURL = cl.BaseURL()
	return NewWithHTTPClient(cl, cfg), nil
}

// NewWithHTTPClient wraps an existing httpx.Client.
func NewWithHTTPClient(httpClient *httpx.Client, cfg Config) *Client {
	return &Client{backend: &httpBackend{client: httpClient}, config: cfg.withDefaults()}
}

// NewWithBackend allows callers to provide a custom backend (e.g., mocks).
func NewWithBackend(b Backend, cfg Config) *Client {
	return &Client{backend: b, config: cfg.withDefaults()}
}

// Config returns the client's configuration.
func (c *Client) Config() Config {
	return c.config
}

// BaseURL returns the API root requests are issued against.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// APIVersion returns the schema version used to decode responses.
func (c *Client) APIVersion() float64 {
	return c.config.APIVersion
}

// WithAPIVersion returns a copy of c that decodes responses as version v.
// The receiver is left untouched.
func (c *Client) WithAPIVersion(v float64) *Client {
	cp := *c
	if v > 0 {
		cp.config.APIVersion = v
	}
	return &cp
}

func (c *Client) ready() error {
	if c == nil || c.backend == nil {
		return errors.New("mediacrush: client is nil")
	}
	return nil
}

// Exists reports whether a file with the given hash is hosted. A missing
// file is not an error; any other failure is.
func (c *Client) Exists(ctx context.Context, hash string) (bool, error) {
	if err := requireNonEmpty(hash, "hash"); err != nil {
		return false, err
	}
	if err := c.ready(); err != nil {
		return false, err
	}
	return c.backend.Exists(ctx, hash)
}

// GetFile returns the metadata and processing status of hash, or nil with a
// nil error when no such file exists.
func (c *Client) GetFile(ctx context.Context, hash string) (*RemoteFile, error) {
	exists, err := c.Exists(ctx, hash)
	if err != nil || !exists {
		return nil, err
	}

	statusBody, err := c.backend.Status(ctx, hash)
	if err != nil {
		return nil, err
	}
	status, infoBody, err := decodeStatus(statusBody, hash)
	if err != nil {
		return nil, parseError("status", err)
	}
	if infoBody == nil {
		if infoBody, err = c.backend.Info(ctx, hash); err != nil {
			return nil, err
		}
	}

	doc, err := decodeFileDocument(infoBody, hash)
	if err != nil {
		return nil, parseError("info", err)
	}
	return newRemoteFile(doc, status, c.config.APIVersion), nil
}

// GetFileStatus is an alias of GetFile; the returned file carries its status.
func (c *Client) GetFileStatus(ctx context.Context, hash string) (*RemoteFile, error) {
	return c.GetFile(ctx, hash)
}

// GetFileInfo is the API v1 name of GetFile.
//
// Deprecated: use GetFile.
func (c *Client) GetFileInfo(ctx context.Context, hash string) (*RemoteFile, error) {
	return c.GetFile(ctx, hash)
}

// PollStatus returns only the processing status of hash. It reports
// StatusNotFound when the hash does not exist.
func (c *Client) PollStatus(ctx context.Context, hash string) (FileStatus, error) {
	exists, err := c.Exists(ctx, hash)
	if err != nil {
		return StatusUnknown, err
	}
	if !exists {
		return StatusNotFound, nil
	}
	body, err := c.backend.Status(ctx, hash)
	if err != nil {
		return StatusUnknown, err
	}
	status, _, err := decodeStatus(body, hash)
	if err != nil {
		return StatusUnknown, parseError("status", err)
	}
	return status, nil
}

// GetFiles looks up several hashes in one request. The result has one entry
// per input hash, in input order; entries for unknown hashes are nil. Batch
// entries carry no status.
func (c *Client) GetFiles(ctx context.Context, hashes ...string) ([]*RemoteFile, error) {
	if err := requirePresent(len(hashes) > 0, "hashes"); err != nil {
		return nil, err
	}
	for i, h := range hashes {
		if err := requireNonEmpty(h, fmt.Sprintf("hashes[%d]", i)); err != nil {
			return nil, err
		}
	}
	if err := c.ready(); err != nil {
		return nil, err
	}

	body, err := c.backend.InfoList(ctx, hashes)
	if err != nil {
		return nil, err
	}
	files := make([]*RemoteFile, len(hashes))
	if body == nil {
		return files, nil
	}
	members, err := crushapi.DecodeObject(body)
	if err != nil {
		return nil, parseError("info list", err)
	}
	for i, h := range hashes {
		raw, ok := members[h]
		if !ok || crushapi.IsNull(raw) {
			continue
		}
		doc, err := decodeFileDocument(raw, h)
		if err != nil {
			continue
		}
		files[i] = newRemoteFile(doc, StatusUnknown, c.config.APIVersion)
	}
	return files, nil
}

// GetFileInfos is the API v1 name of GetFiles.
//
// Deprecated: use GetFiles.
func (c *Client) GetFileInfos(ctx context.Context, hashes ...string) ([]*RemoteFile, error) {
	return c.GetFiles(ctx, hashes...)
}

// UploadURL asks the server to fetch and host the file at rawURL. The
// returned hash refers to a file that may still be processing.
func (c *Client) UploadURL(ctx context.Context, rawURL string) (string, error) {
	if err := requireNonEmpty(rawURL, "url"); err != nil {
		return "", err
	}
	if err := c.ready(); err != nil {
		return "", err
	}
	return c.backend.UploadURL(ctx, rawURL)
}

// UploadURLValue is UploadURL for an already parsed URL.
func (c *Client) UploadURLValue(ctx context.Context, u *url.URL) (string, error) {
	if err := requirePresent(u != nil, "url"); err != nil {
		return "", err
	}
	return c.UploadURL(ctx, u.String())
}

// Delete removes the file. Only the IP address that uploaded a file may
// delete it.
func (c *Client) Delete(ctx context.Context, hash string) error {
	if err := requireNonEmpty(hash, "hash"); err != nil {
		return err
	}
	if err := c.ready(); err != nil {
		return err
	}
	return c.backend.Delete(ctx, hash)
}

// DeleteFile deletes the file described by f.
func (c *Client) DeleteFile(ctx context.Context, f *RemoteFile) error {
	if err := requirePresent(f != nil, "file"); err != nil {
		return err
	}
	return c.Delete(ctx, f.Hash)
}
