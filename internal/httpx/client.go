package httpx

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a single round trip when no http.Client is supplied.
const DefaultTimeout = 30 * time.Second

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used by the helper.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
			c.ownsHTTPClient = false
		}
	}
}

// WithHeaders assigns default headers added to every request.
func WithHeaders(h http.Header) Option {
	return func(c *Client) {
		for k, values := range h {
			for _, v := range values {
				c.headers.Add(k, v)
			}
		}
	}
}

// WithUserAgent replaces the identification header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout sets the round-trip timeout of the default http.Client.
// It has no effect once WithHTTPClient supplied a custom client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger enables debug tracing of every round trip.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client issues single, non-retried requests relative to a base URL.
type Client struct {
	baseURL        *url.URL
	httpClient     *http.Client
	ownsHTTPClient bool
	timeout        time.Duration
	headers        http.Header
	userAgent      string
	logger         *zap.Logger
}

// Request describes a single outbound request. Path is resolved against the
// client's base URL and is never treated as absolute.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

// Response carries the outcome of a completed HTTP exchange, whatever its
// status code.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the status code is in the 2xx range.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode <= 299
}

// NewClient creates a Client for the provided base URL.
func NewClient(baseURL string, userAgent string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("httpx: base URL is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("httpx: invalid base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("httpx: base URL %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}

	c := &Client{
		baseURL: parsed,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		ownsHTTPClient: true,
		headers:        make(http.Header),
		userAgent:      userAgent,
		logger:         zap.NewNop(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.ownsHTTPClient && c.timeout > 0 {
		c.httpClient.Timeout = c.timeout
	}
	return c, nil
}

// BaseURL returns the normalised base URL, always ending in a slash.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Do executes the request once. A non-2xx status is not an error: the caller
// receives the status and body. Only failures below HTTP (DNS, dial, TLS,
// reading the body) are reported, as *TransportError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, errors.New("httpx: request is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if req.Method == "" {
		return nil, errors.New("httpx: HTTP method is required")
	}

	fullURL := c.buildURL(req.Path, req.RawQuery)

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("httpx: build request: %w", err)
	}

	httpReq.Header = cloneHeader(c.headers)
	for k, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug("mediacrush request failed",
			zap.String("method", req.Method),
			zap.String("url", fullURL),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, &TransportError{Method: req.Method, URL: fullURL, Err: err}
	}
	defer closeBody(resp.Body)

	data, err := readBody(resp)
	if err != nil {
		return nil, &TransportError{Method: req.Method, URL: fullURL, Err: fmt.Errorf("read response body: %w", err)}
	}

	c.logger.Debug("mediacrush request",
		zap.String("method", req.Method),
		zap.String("url", fullURL),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       data,
	}, nil
}

func (c *Client) buildURL(path string, rawQuery string) string {
	ref := &url.URL{
		Path:     strings.TrimPrefix(path, "/"),
		RawQuery: rawQuery,
	}
	return c.baseURL.ResolveReference(ref).String()
}

// readBody drains the body, undoing gzip or deflate content coding. net/http
// only decompresses transparently when it set Accept-Encoding itself.
func readBody(resp *http.Response) ([]byte, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return raw, nil
	}

	var decoder io.ReadCloser
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip", "x-gzip":
		decoder, err = gzip.NewReader(bytes.NewReader(raw))
	case "deflate":
		decoder, err = zlib.NewReader(bytes.NewReader(raw))
	default:
		return raw, nil
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s body: %w", resp.Header.Get("Content-Encoding"), err)
	}
	defer closeBody(decoder)
	return io.ReadAll(decoder)
}

func closeBody(rc io.ReadCloser) {
	if rc != nil {
		_ = rc.Close()
	}
}

func cloneHeader(src http.Header) http.Header {
	dst := make(http.Header, len(src))
	for k, values := range src {
		vCopy := make([]string, len(values))
		copy(vCopy, values)
		dst[k] = vCopy
	}
	return dst
}
