package mediacrush

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mediacrush/mediacrush_sdk_go/internal/crushapi"
	"github.com/mediacrush/mediacrush_sdk_go/internal/httpx"
)

const uploadAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

type httpBackend struct {
	client *httpx.Client
}

func (b *httpBackend) do(ctx context.Context, op string, req *httpx.Request) (*httpx.Response, error) {
	if b == nil || b.client == nil {
		return nil, errors.New("mediacrush: http backend not configured")
	}
	resp, err := b.client.Do(ctx, req)
	if err != nil {
		var tErr *httpx.TransportError
		if errors.As(err, &tErr) {
			return nil, transportError(op, err)
		}
		return nil, err
	}
	return resp, nil
}

func (b *httpBackend) Exists(ctx context.Context, hash string) (bool, error) {
	resp, err := b.do(ctx, "exists", &httpx.Request{
		Method: http.MethodHead,
		Path:   hash + "/exists",
	})
	if err != nil {
		return false, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return false, nil
	case resp.StatusCode < 400:
		return true, nil
	default:
		return false, reject("exists", resp.StatusCode, nil, false)
	}
}

func (b *httpBackend) Info(ctx context.Context, hash string) ([]byte, error) {
	return b.lookup(ctx, "info", hash)
}

func (b *httpBackend) Status(ctx context.Context, hash string) ([]byte, error) {
	return b.lookup(ctx, "status", hash+"/status")
}

func (b *httpBackend) lookup(ctx context.Context, op, path string) ([]byte, error) {
	resp, err := b.do(ctx, op, &httpx.Request{Method: http.MethodGet, Path: path})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, reject(op, resp.StatusCode, lookupRejections, false)
	}
	return resp.Body, nil
}

func (b *httpBackend) InfoList(ctx context.Context, hashes []string) ([]byte, error) {
	resp, err := b.do(ctx, "info list", &httpx.Request{
		Method:   http.MethodGet,
		Path:     "info",
		RawQuery: "list=" + joinHashes(hashes),
	})
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case !resp.OK():
		return nil, reject("info list", resp.StatusCode, nil, false)
	}
	return resp.Body, nil
}

// joinHashes comma-joins hashes in order, escaping each one on its own so
// the separators stay literal.
func joinHashes(hashes []string) string {
	var sb strings.Builder
	for i, h := range hashes {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(url.QueryEscape(h))
	}
	return sb.String()
}

func (b *httpBackend) UploadFile(ctx context.Context, upload *FileUpload) (string, error) {
	body := multipartBody(upload.Name, upload.Type.MIME(), upload.Data)
	header := http.Header{}
	header.Set("Content-Length", strconv.Itoa(len(body)))
	header.Set("Accept", uploadAccept)
	header.Set("Accept-Encoding", "gzip, deflate")
	header.Set("X-Requested-With", "XMLHttpRequest")
	header.Set("Content-Type", "multipart/form-data; boundary="+MultipartBoundary)

	resp, err := b.do(ctx, "upload file", &httpx.Request{
		Method: http.MethodPost,
		Path:   "upload/file",
		Header: header,
		Body:   body,
	})
	if err != nil {
		return "", err
	}
	return uploadHash("upload file", resp, fileUploadRejections)
}

func (b *httpBackend) UploadURL(ctx context.Context, rawURL string) (string, error) {
	body := []byte(url.Values{"url": []string{rawURL}}.Encode())
	header := http.Header{}
	header.Set("Content-Length", strconv.Itoa(len(body)))
	header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := b.do(ctx, "upload url", &httpx.Request{
		Method: http.MethodPost,
		Path:   "upload/url",
		Header: header,
		Body:   body,
	})
	if err != nil {
		return "", err
	}
	return uploadHash("upload url", resp, urlUploadRejections)
}

// uploadHash extracts the new hash from an upload reply. Only a 200 without
// an "error" member is a success; an embedded error code is mapped through
// the same table as the HTTP status.
func uploadHash(op string, resp *httpx.Response, table map[int]error) (string, error) {
	if resp.StatusCode != http.StatusOK {
		return "", reject(op, resp.StatusCode, table, false)
	}
	reply, err := crushapi.DecodeUploadReply(resp.Body)
	if err != nil {
		return "", parseError(op, err)
	}
	if reply.HasError {
		if !reply.CodeOK {
			return "", &RejectedError{
				Op:         op,
				StatusCode: resp.StatusCode,
				Embedded:   true,
				Detail:     "unrecognised error " + reply.ErrorRaw,
				Err:        ErrUnknownServer,
			}
		}
		return "", reject(op, reply.ErrorCode, table, true)
	}
	if strings.TrimSpace(reply.Hash) == "" {
		return "", parseError(op, errors.New("reply carries no hash"))
	}
	return reply.Hash, nil
}

func (b *httpBackend) Delete(ctx context.Context, hash string) error {
	resp, err := b.do(ctx, "delete", &httpx.Request{
		Method: http.MethodDelete,
		Path:   "files/" + hash,
	})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return reject("delete", resp.StatusCode, deleteRejections, false)
	}
	return nil
}
