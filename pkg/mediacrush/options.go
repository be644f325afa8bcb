package mediacrush

import "github.com/mediacrush/mediacrush_sdk_go/internal/httpx"

// Option tunes the HTTP transport of clients built by New, NewWithConfig and
// NewFromEnv.
type Option = httpx.Option

var (
	WithHTTPClient = httpx.WithHTTPClient
	WithHeaders    = httpx.WithHeaders
	WithUserAgent  = httpx.WithUserAgent
	WithTimeout    = httpx.WithTimeout
	// WithLogger traces every request at debug level.
	WithLogger = httpx.WithLogger
)
