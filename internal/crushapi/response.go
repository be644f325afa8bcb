package crushapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotObject is returned when a payload is valid JSON but not an object.
var ErrNotObject = errors.New("crushapi: payload is not a JSON object")

// DecodeObject splits a JSON object into its raw members. An empty body, a
// JSON null or a non-object document is rejected.
func DecodeObject(body []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("crushapi: empty body")
	}
	if trimmed[0] != '{' {
		if !json.Valid(trimmed) {
			return nil, fmt.Errorf("crushapi: malformed JSON")
		}
		return nil, ErrNotObject
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &members); err != nil {
		return nil, fmt.Errorf("crushapi: decode object: %w", err)
	}
	return members, nil
}

// IsNull reports whether a raw member is absent or a JSON null.
func IsNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// UploadReply is the decoded body of /upload/file and /upload/url.
//
// The API reports failures two ways: through the HTTP status, or through a
// 200 whose body carries an "error" member holding the real status code.
// HasError is true whenever that member is present, even when it is null.
type UploadReply struct {
	Hash     string
	HasError bool
	// ErrorCode is valid only when CodeOK is true.
	ErrorCode int
	CodeOK    bool
	// ErrorRaw is the "error" member as sent, for diagnostics.
	ErrorRaw string
}

// DecodeUploadReply parses an upload response body.
func DecodeUploadReply(body []byte) (UploadReply, error) {
	members, err := DecodeObject(body)
	if err != nil {
		return UploadReply{}, err
	}

	var reply UploadReply
	if raw, ok := members["hash"]; ok && !IsNull(raw) {
		if err := json.Unmarshal(raw, &reply.Hash); err != nil {
			return UploadReply{}, fmt.Errorf("crushapi: decode hash: %w", err)
		}
	}
	if raw, ok := members["error"]; ok {
		reply.HasError = true
		reply.ErrorRaw = string(bytes.TrimSpace(raw))
		reply.ErrorCode, reply.CodeOK = ParseErrorCode(raw)
	}
	return reply, nil
}

// ParseErrorCode reads an embedded status code sent either as a JSON number
// (409) or as a numeric string ("409").
func ParseErrorCode(raw json.RawMessage) (int, bool) {
	if IsNull(raw) {
		return 0, false
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		code, err := strconv.Atoi(strings.TrimSpace(asString))
		if err != nil {
			return 0, false
		}
		return code, true
	}
	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err != nil {
		return 0, false
	}
	code, err := strconv.Atoi(asNumber.String())
	if err != nil {
		return 0, false
	}
	return code, true
}
