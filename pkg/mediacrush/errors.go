package mediacrush

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusRateLimited is MediaCrush's "enhance your calm" response code.
const StatusRateLimited = 420

var (
	// ErrInvalidArgument marks a rejected call made with a missing argument.
	ErrInvalidArgument = errors.New("mediacrush: invalid argument")
	// ErrTransport marks DNS, connection and socket failures.
	ErrTransport = errors.New("mediacrush: transport failure")
	// ErrParse marks a response body that is not the expected JSON shape.
	ErrParse = errors.New("mediacrush: malformed response")

	ErrDuplicate         = errors.New("mediacrush: file was already uploaded")
	ErrRateLimited       = errors.New("mediacrush: rate limit exceeded")
	ErrUnsupportedType   = errors.New("mediacrush: unsupported file type")
	ErrInvalidURL        = errors.New("mediacrush: invalid url")
	ErrRemoteNotFound    = errors.New("mediacrush: remote file does not exist")
	ErrOwnershipMismatch = errors.New("mediacrush: requester IP does not match the uploader")
	ErrNotFound          = errors.New("mediacrush: no file with that hash")
	ErrUnknownServer     = errors.New("mediacrush: unknown server error")

	// ErrIsDirectory is returned by UploadFile for a directory path.
	ErrIsDirectory = errors.New("mediacrush: path is a directory")
)

// ArgumentError names the parameter that failed validation.
type ArgumentError struct {
	Name string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("mediacrush: invalid argument: %s is required", e.Name)
}

func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// RejectedError is a failure reported by the server, either through the HTTP
// status or through the "error" member of an upload reply.
type RejectedError struct {
	Op         string
	StatusCode int
	// Embedded is set when the code came from the response body of a 200.
	Embedded bool
	Detail   string
	Err      error
}

func (e *RejectedError) Error() string {
	if e == nil {
		return "<nil>"
	}
	src := "status"
	if e.Embedded {
		src = "embedded code"
	}
	msg := fmt.Sprintf("mediacrush: %s rejected (%s %d)", e.Op, src, e.StatusCode)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RejectedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

var (
	fileUploadRejections = map[int]error{
		http.StatusConflict:             ErrDuplicate,
		StatusRateLimited:               ErrRateLimited,
		http.StatusUnsupportedMediaType: ErrUnsupportedType,
	}
	urlUploadRejections = map[int]error{
		http.StatusBadRequest:           ErrInvalidURL,
		http.StatusNotFound:             ErrRemoteNotFound,
		http.StatusConflict:             ErrDuplicate,
		StatusRateLimited:               ErrRateLimited,
		http.StatusUnsupportedMediaType: ErrUnsupportedType,
	}
	deleteRejections = map[int]error{
		http.StatusNotFound:     ErrNotFound,
		http.StatusUnauthorized: ErrOwnershipMismatch,
	}
	lookupRejections = map[int]error{
		http.StatusNotFound: ErrNotFound,
	}
)

// reject maps a status code through table, falling back to ErrUnknownServer.
func reject(op string, code int, table map[int]error, embedded bool) *RejectedError {
	cause, ok := table[code]
	if !ok {
		cause = ErrUnknownServer
	}
	return &RejectedError{Op: op, StatusCode: code, Embedded: embedded, Err: cause}
}

// StatusCodeOf returns the HTTP status (or embedded code) behind err, or 0.
func StatusCodeOf(err error) int {
	var rej *RejectedError
	if errors.As(err, &rej) {
		return rej.StatusCode
	}
	return 0
}

func parseError(op string, err error) error {
	return fmt.Errorf("mediacrush: %s: %w: %w", op, ErrParse, err)
}

func transportError(op string, err error) error {
	return fmt.Errorf("mediacrush: %s: %w: %w", op, ErrTransport, err)
}
