package mediacrush

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// MultipartBoundary separates the parts of an upload body.
const MultipartBoundary = "---------------------------mediacrush7d11c2a1f0"

// UploadFile uploads the file at path. The format is taken from the file
// extension and checked before anything is sent.
func (c *Client) UploadFile(ctx context.Context, path string) (string, error) {
	if err := requireNonEmpty(path, "path"); err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("mediacrush: stat upload file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}
	fileType := FileTypeFromPath(path)
	if !fileType.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("mediacrush: open upload file: %w", err)
	}
	defer f.Close()
	return c.UploadStream(ctx, f, fileType, filepath.Base(path))
}

// UploadStream uploads the contents of r as a file called name. name should
// carry the extension matching fileType.
func (c *Client) UploadStream(ctx context.Context, r io.Reader, fileType FileType, name string) (string, error) {
	if err := requirePresent(r != nil, "data"); err != nil {
		return "", err
	}
	if err := requireNonEmpty(name, "name"); err != nil {
		return "", err
	}
	if !fileType.Valid() {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, name)
	}
	if err := c.ready(); err != nil {
		return "", err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("mediacrush: read upload payload: %w", err)
	}
	return c.backend.UploadFile(ctx, &FileUpload{Name: name, Type: fileType, Data: data})
}

// multipartBody frames data as the single "file" part of a
// multipart/form-data body delimited by MultipartBoundary.
func multipartBody(name, mime string, data []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(data) + 256)
	buf.WriteString("\r\n--" + MultipartBoundary + "\r\n")
	buf.WriteString(`Content-Disposition: form-data; name="file"; filename="` + name + "\"\r\n")
	buf.WriteString("Content-Type: " + mime + "\r\n")
	buf.WriteString("Content-Transfer-Encoding: binary\r\n")
	buf.WriteString("\r\n")
	buf.Write(data)
	buf.WriteString("\r\n--" + MultipartBoundary + "--")
	return buf.Bytes()
}
