package main

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"github.com/mediacrush/mediacrush_sdk_go/pkg/mediacrush"
	"github.com/mediacrush/mediacrush_sdk_go/pkg/mediacrush/mock"
)

// maxUploadSize caps multipart bodies accepted by /upload/file.
const maxUploadSize = 50 << 20

type serverOptions struct {
	latency time.Duration
	fail    failConfig
	// uploadLimit is the number of uploads allowed per IP and uploadWindow.
	// Zero disables rate limiting.
	uploadLimit  int
	uploadWindow time.Duration
	// embedErrors answers failed uploads with 200 and an "error" member, as
	// older MediaCrush deployments did.
	embedErrors bool
}

type server struct {
	store  *mock.Mock
	opts   serverOptions
	logger *zap.Logger
}

func newRouter(store *mock.Mock, opts serverOptions, logger *zap.Logger) http.Handler {
	s := &server{store: store, opts: opts, logger: logger}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggerMiddleware(logger))
	r.Use(recoveryMiddleware(logger))
	r.Use(chaosMiddleware(opts.latency, opts.fail))

	r.Route("/api", func(r chi.Router) {
		r.Get("/info", s.handleInfoList)
		r.Get("/{hash}", s.handleInfo)
		r.Get("/{hash}/status", s.handleStatus)
		r.Head("/{hash}/exists", s.handleExists)
		r.Get("/{hash}/exists", s.handleExists)
		r.Delete("/files/{hash}", s.handleDelete)

		r.Group(func(r chi.Router) {
			if opts.uploadLimit > 0 {
				r.Use(httprate.Limit(opts.uploadLimit, opts.uploadWindow,
					httprate.WithKeyFuncs(httprate.KeyByIP),
					httprate.WithLimitHandler(s.handleRateLimited),
				))
			}
			r.Post("/upload/file", s.handleUploadFile)
			r.Post("/upload/url", s.handleUploadURL)
		})
	})
	return r
}

func (s *server) handleExists(w http.ResponseWriter, r *http.Request) {
	ok, err := s.store.Exists(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if !ok {
		status = http.StatusNotFound
	}
	if r.Method == http.MethodHead {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, map[string]bool{"exists": ok})
}

func (s *server) handleInfo(w http.ResponseWriter, r *http.Request) {
	body, err := s.store.Info(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	body, err := s.store.Status(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

func (s *server) handleInfoList(w http.ResponseWriter, r *http.Request) {
	var hashes []string
	for _, h := range strings.Split(r.URL.Query().Get("list"), ",") {
		if h = strings.TrimSpace(h); h != "" {
			hashes = append(hashes, h)
		}
	}
	if len(hashes) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": http.StatusBadRequest})
		return
	}
	body, err := s.store.InfoList(r.Context(), hashes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if body == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": http.StatusNotFound})
		return
	}
	writeRaw(w, http.StatusOK, body)
}

func (s *server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.writeUploadError(w, http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeUploadError(w, http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeUploadError(w, http.StatusBadRequest)
		return
	}
	name := filepath.Base(header.Filename)
	fileType := mediacrush.FileTypeFromPath(name)
	if !fileType.Valid() {
		fileType = mediacrush.FileTypeFromMIME(header.Header.Get("Content-Type"))
	}

	hash, err := s.store.UploadFile(mock.WithCaller(r.Context(), callerAddr(r)), &mediacrush.FileUpload{
		Name: name,
		Type: fileType,
		Data: data,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"hash": hash})
}

func (s *server) handleUploadURL(w http.ResponseWriter, r *http.Request) {
	rawURL := strings.TrimSpace(r.FormValue("url"))
	if rawURL == "" {
		s.writeUploadError(w, http.StatusBadRequest)
		return
	}
	hash, err := s.store.UploadURL(mock.WithCaller(r.Context(), callerAddr(r)), rawURL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"hash": hash})
}

func (s *server) handleDelete(w http.ResponseWriter, r *http.Request) {
	err := s.store.Delete(mock.WithCaller(r.Context(), callerAddr(r)), chi.URLParam(r, "hash"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.writeUploadError(w, mediacrush.StatusRateLimited)
}

// writeError answers with the status carried by a mock rejection.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var rej *mediacrush.RejectedError
	switch {
	case errors.As(err, &rej):
		status = rej.StatusCode
	case errors.Is(err, mediacrush.ErrInvalidArgument):
		status = http.StatusBadRequest
	default:
		s.logger.Warn("mock backend failed",
			zap.String("request_id", requestID(r.Context())),
			zap.Error(err),
		)
	}
	if isUpload(r) {
		s.writeUploadError(w, status)
		return
	}
	writeJSON(w, status, map[string]any{"error": status})
}

// writeUploadError reports an upload failure either through the HTTP status
// or, with embedErrors, as a 200 whose body names the code.
func (s *server) writeUploadError(w http.ResponseWriter, status int) {
	if s.opts.embedErrors {
		writeJSON(w, http.StatusOK, map[string]any{"hash": nil, "error": strconv.Itoa(status)})
		return
	}
	writeJSON(w, status, map[string]any{"error": status})
}

func isUpload(r *http.Request) bool {
	return r.Method == http.MethodPost && strings.Contains(r.URL.Path, "/upload/")
}

func callerAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeRaw(w, status, body)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
