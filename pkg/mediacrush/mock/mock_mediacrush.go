// Package mock provides an in-memory MediaCrush server that satisfies
// mediacrush.Backend. It backs unit tests, the sandbox server and the "mock"
// runtime mode.
package mock

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"net/url"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mediacrush/mediacrush_sdk_go/pkg/mediacrush"
)

const defaultPublicURL = "https://mediacru.sh"

var _ mediacrush.Backend = (*Mock)(nil)

type entry struct {
	hash     string
	name     string
	fileType mediacrush.FileType
	data     []byte
	status   mediacrush.FileStatus
	owner    string
	created  time.Time
}

type remoteObject struct {
	name string
	data []byte
}

// Option configures a Mock.
type Option func(*Mock)

// WithInstantProcessing marks uploads as done immediately instead of leaving
// them in StatusProcessing until Complete is called.
func WithInstantProcessing() Option {
	return func(m *Mock) {
		m.instant = true
	}
}

// WithPublicURL sets the host used for file URLs in metadata documents.
func WithPublicURL(base string) Option {
	return func(m *Mock) {
		if strings.TrimSpace(base) != "" {
			m.publicURL = strings.TrimRight(base, "/")
		}
	}
}

// Mock is an in-memory MediaCrush.
type Mock struct {
	mu        sync.RWMutex
	files     map[string]*entry
	remote    map[string]remoteObject
	instant   bool
	publicURL string
}

// New constructs an empty server.
func New(opts ...Option) *Mock {
	m := &Mock{
		files:     make(map[string]*entry),
		remote:    make(map[string]remoteObject),
		publicURL: defaultPublicURL,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type callerKey struct{}

// WithCaller tags ctx with the requester's address. Delete only succeeds for
// the address that uploaded the file.
func WithCaller(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, callerKey{}, addr)
}

func callerFrom(ctx context.Context) string {
	addr, _ := ctx.Value(callerKey{}).(string)
	return addr
}

// HashOf derives the MediaCrush hash of a payload: the first twelve
// characters of its URL-safe base64 MD5 digest.
func HashOf(data []byte) string {
	sum := md5.Sum(data)
	return base64.URLEncoding.EncodeToString(sum[:])[:12]
}

func rejected(op string, code int, err error) error {
	return &mediacrush.RejectedError{Op: op, StatusCode: code, Err: err}
}

// AddRemote registers content that UploadURL can fetch from rawURL.
func (m *Mock) AddRemote(rawURL, name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remote[rawURL] = remoteObject{name: name, data: append([]byte(nil), data...)}
}

// SetStatus forces the processing status of a stored file.
func (m *Mock) SetStatus(hash string, status mediacrush.FileStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.files[hash]
	if !ok {
		return mediacrush.ErrNotFound
	}
	e.status = status
	return nil
}

// Complete finishes processing of hash.
func (m *Mock) Complete(hash string) error {
	return m.SetStatus(hash, mediacrush.StatusDone)
}

// Pending lists, sorted, the hashes still processing that were stored at
// least olderThan ago.
func (m *Mock) Pending(olderThan time.Duration) []string {
	cutoff := time.Now().Add(-olderThan)
	m.mu.RLock()
	defer m.mu.RUnlock()
	var hashes []string
	for h, e := range m.files {
		if e.status == mediacrush.StatusProcessing && !e.created.After(cutoff) {
			hashes = append(hashes, h)
		}
	}
	sort.Strings(hashes)
	return hashes
}

// Exists implements mediacrush.Backend.
func (m *Mock) Exists(ctx context.Context, hash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[hash]
	return ok, nil
}

// Info implements mediacrush.Backend.
func (m *Mock) Info(ctx context.Context, hash string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	e, ok := m.files[hash]
	var doc map[string]any
	if ok {
		doc = m.document(e)
	}
	m.mu.RUnlock()
	if !ok {
		return nil, rejected("info", http.StatusNotFound, mediacrush.ErrNotFound)
	}
	return json.Marshal(doc)
}

// Status implements mediacrush.Backend. Finished files embed their document
// under the hash key, as the real server does.
func (m *Mock) Status(ctx context.Context, hash string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	e, ok := m.files[hash]
	var reply map[string]any
	if ok {
		reply = map[string]any{
			"status": string(e.status),
			"hash":   e.hash,
		}
		if e.status == mediacrush.StatusDone {
			reply[e.hash] = m.document(e)
		}
	}
	m.mu.RUnlock()
	if !ok {
		return nil, rejected("status", http.StatusNotFound, mediacrush.ErrNotFound)
	}
	return json.Marshal(reply)
}

// InfoList implements mediacrush.Backend.
func (m *Mock) InfoList(ctx context.Context, hashes []string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	reply := make(map[string]any, len(hashes))
	found := 0
	for _, h := range hashes {
		if e, ok := m.files[h]; ok {
			reply[h] = m.document(e)
			found++
		} else {
			reply[h] = nil
		}
	}
	m.mu.RUnlock()
	if found == 0 {
		return nil, nil
	}
	return json.Marshal(reply)
}

// UploadFile implements mediacrush.Backend.
func (m *Mock) UploadFile(ctx context.Context, upload *mediacrush.FileUpload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if upload == nil || strings.TrimSpace(upload.Name) == "" {
		return "", &mediacrush.ArgumentError{Name: "upload"}
	}
	if !upload.Type.Valid() {
		return "", rejected("upload file", http.StatusUnsupportedMediaType, mediacrush.ErrUnsupportedType)
	}
	return m.store("upload file", upload.Name, upload.Type, upload.Data, callerFrom(ctx))
}

// UploadURL implements mediacrush.Backend using content registered with
// AddRemote.
func (m *Mock) UploadURL(ctx context.Context, rawURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", rejected("upload url", http.StatusBadRequest, mediacrush.ErrInvalidURL)
	}

	m.mu.RLock()
	obj, ok := m.remote[rawURL]
	m.mu.RUnlock()
	if !ok {
		return "", rejected("upload url", http.StatusNotFound, mediacrush.ErrRemoteNotFound)
	}

	name := obj.name
	if name == "" {
		name = path.Base(u.Path)
	}
	fileType := mediacrush.FileTypeFromPath(name)
	if !fileType.Valid() {
		return "", rejected("upload url", http.StatusUnsupportedMediaType, mediacrush.ErrUnsupportedType)
	}
	return m.store("upload url", name, fileType, obj.data, callerFrom(ctx))
}

func (m *Mock) store(op, name string, fileType mediacrush.FileType, data []byte, owner string) (string, error) {
	hash := HashOf(data)
	status := mediacrush.StatusProcessing
	if m.instant {
		status = mediacrush.StatusDone
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.files[hash]; exists {
		return "", rejected(op, http.StatusConflict, mediacrush.ErrDuplicate)
	}
	m.files[hash] = &entry{
		hash:     hash,
		name:     name,
		fileType: fileType,
		data:     append([]byte(nil), data...),
		status:   status,
		owner:    owner,
		created:  time.Now(),
	}
	return hash, nil
}

// Delete implements mediacrush.Backend.
func (m *Mock) Delete(ctx context.Context, hash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.files[hash]
	if !ok {
		return rejected("delete", http.StatusNotFound, mediacrush.ErrNotFound)
	}
	if e.owner != callerFrom(ctx) {
		return rejected("delete", http.StatusUnauthorized, mediacrush.ErrOwnershipMismatch)
	}
	delete(m.files, hash)
	return nil
}

// document renders e the way GET /api/{hash} does. Callers hold m.mu.
func (m *Mock) document(e *entry) map[string]any {
	kind := e.fileType.Kind()
	original := "/" + e.hash + "." + e.fileType.Extension()

	files := []map[string]string{m.variant(original, e.fileType.MIME())}
	var extras []map[string]string
	switch {
	case e.fileType == mediacrush.FileTypeGIF:
		files = append(files,
			m.variant("/"+e.hash+".mp4", "video/mp4"),
			m.variant("/"+e.hash+".ogv", "video/ogg"),
		)
	case kind == mediacrush.KindVideo:
		extras = append(extras, m.variant("/"+e.hash+".jpg", "image/jpeg"))
	}

	metadata := map[string]any{
		"has_audio": kind == mediacrush.KindAudio || kind == mediacrush.KindVideo,
		"has_video": kind == mediacrush.KindVideo || e.fileType == mediacrush.FileTypeGIF,
	}
	if kind == mediacrush.KindImage {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(e.data)); err == nil {
			metadata["dimensions"] = map[string]int{"width": cfg.Width, "height": cfg.Height}
		}
	}

	return map[string]any{
		"hash":        e.hash,
		"type":        e.fileType.MIME(),
		"original":    original,
		"compression": 1.0,
		"files":       files,
		"blob_type":   string(kind),
		"metadata":    metadata,
		"extras":      extras,
		"flags": map[string]bool{
			"autoplay": kind == mediacrush.KindVideo,
			"loop":     kind == mediacrush.KindVideo || e.fileType == mediacrush.FileTypeGIF,
			"mute":     false,
		},
	}
}

func (m *Mock) variant(file, mime string) map[string]string {
	return map[string]string{"file": file, "url": m.publicURL + file, "type": mime}
}

// SeedEntry describes a file preloaded into the mock.
type SeedEntry struct {
	Name   string `json:"name"`
	Base64 string `json:"base64"`
	Status string `json:"status"`
	Owner  string `json:"owner"`
}

// LoadSeed reads a JSON array of SeedEntry from path.
func LoadSeed(path string) ([]SeedEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mock mediacrush: read seed: %w", err)
	}
	var entries []SeedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("mock mediacrush: decode seed: %w", err)
	}
	return entries, nil
}

// Seed stores entries and returns their hashes in order. Seeded files are
// done unless the entry names another status.
func (m *Mock) Seed(entries []SeedEntry) ([]string, error) {
	hashes := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("mock mediacrush: seed entry missing name")
		}
		fileType := mediacrush.FileTypeFromPath(e.Name)
		if !fileType.Valid() {
			return nil, fmt.Errorf("mock mediacrush: seed entry %q: %w", e.Name, mediacrush.ErrUnsupportedType)
		}
		data, err := base64.StdEncoding.DecodeString(e.Base64)
		if err != nil {
			return nil, fmt.Errorf("mock mediacrush: decode base64: %w", err)
		}
		hash, err := m.store("seed", e.Name, fileType, data, e.Owner)
		if err != nil {
			return nil, fmt.Errorf("mock mediacrush: seed entry %q: %w", e.Name, err)
		}
		status := mediacrush.StatusDone
		if strings.TrimSpace(e.Status) != "" {
			status = mediacrush.ParseFileStatus(e.Status)
		}
		if err := m.SetStatus(hash, status); err != nil {
			return nil, err
		}
		hashes = append(hashes, hash)
	}
	return hashes, nil
}
