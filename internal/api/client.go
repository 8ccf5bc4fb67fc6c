// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Configuration constants for the backend client.
const (
	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize bounds decoded JSON and error bodies.
	MaxResponseSize = 10 * 1024 * 1024

	// CSRFCookie is the cookie the backend stores the CSRF token in.
	CSRFCookie = "csrf_access_token"

	// CSRFHeader is the header the token is echoed in.
	CSRFHeader = "X-CSRF-TOKEN"

	userAgent = "genstudio-tui/1.0"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the backend origin, e.g. https://app.example.com
	BaseURL string

	// Timeout applies per request. Zero means DefaultTimeout.
	Timeout time.Duration

	// Jar holds session cookies. Nil creates an empty jar.
	Jar http.CookieJar

	// RequestsPerSecond paces outgoing requests. Zero disables pacing.
	RequestsPerSecond float64
	Burst             int

	// Logger receives debug lines for every request. Nil discards them.
	Logger *slog.Logger

	// HTTPClient overrides the transport. Its Jar is replaced by Jar.
	HTTPClient *http.Client
}

// Client issues credentialed requests against the backend.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	jar        http.CookieJar
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// New creates a client from opts.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, ErrNoBaseURL
	}
	base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", opts.BaseURL)
	}

	jar := opts.Jar
	if jar == nil {
		jar, err = cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	hc := &http.Client{}
	if opts.HTTPClient != nil {
		copied := *opts.HTTPClient
		hc = &copied
	}
	hc.Jar = jar
	if hc.Timeout == 0 {
		hc.Timeout = timeout
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		baseURL:    base,
		httpClient: hc,
		jar:        jar,
		limiter:    limiter,
		logger:     logger,
	}, nil
}

// BaseURL returns the backend origin.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// Jar returns the cookie jar shared by all requests.
func (c *Client) Jar() http.CookieJar {
	return c.jar
}

// CSRFToken returns the current CSRF cookie value, or "".
func (c *Client) CSRFToken() string {
	for _, ck := range c.jar.Cookies(c.baseURL) {
		if ck.Name == CSRFCookie {
			return ck.Value
		}
	}
	return ""
}

// =============================================================================
// REQUEST PRIMITIVES
// =============================================================================

// Request issues a single request and returns the raw response for 2xx
// statuses. Any other status is read and returned as *Error; the body is
// closed in that case. The caller closes the body on success.
func (c *Client) Request(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	target := c.resolve(path)
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.CSRFToken(); token != "" {
		req.Header.Set(CSRFHeader, token)
	}

	c.logRequest(req)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Debug("api request failed", "method", method, "path", req.URL.Path, "error", err)
		return nil, fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	c.logResponse(req, resp, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		text, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
		return nil, &Error{
			Method: method,
			Path:   req.URL.Path,
			Status: resp.StatusCode,
			Body:   string(text),
		}
	}
	return resp, nil
}

// DoJSON sends in (if non-nil) as a JSON body and decodes a JSON response
// into out (if non-nil). Non-JSON 2xx responses are drained and ignored.
func (c *Client) DoJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	resp, err := c.Request(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeJSON(resp, out)
}

// Download returns the body of a binary endpoint and the file name to save
// it under. The name comes from Content-Disposition; without one it is
// fallback plus an extension for the Content-Type. The caller closes the
// body.
func (c *Client) Download(ctx context.Context, path, fallback string) (io.ReadCloser, string, error) {
	resp, err := c.Request(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, "", err
	}
	return resp.Body, downloadName(resp.Header, fallback), nil
}

// downloadName picks a local file name for a download. Directory parts of
// the server's name are dropped.
func downloadName(h http.Header, fallback string) string {
	if _, params, err := mime.ParseMediaType(h.Get("Content-Disposition")); err == nil {
		name := strings.TrimSpace(params["filename"])
		if i := strings.LastIndexAny(name, `/\`); i >= 0 {
			name = name[i+1:]
		}
		if name != "" && name != "." && name != ".." {
			return name
		}
	}
	if mt, _, err := mime.ParseMediaType(h.Get("Content-Type")); err == nil {
		if ext, ok := commonExts[mt]; ok {
			return fallback + ext
		}
		if exts, err := mime.ExtensionsByType(mt); err == nil && len(exts) > 0 {
			return fallback + exts[0]
		}
	}
	return fallback
}

// commonExts fixes the extension for media types whose system mime table
// entries vary, such as .jfif for image/jpeg.
var commonExts = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"video/mp4":       ".mp4",
	"text/plain":      ".txt",
	"application/pdf": ".pdf",
}

func decodeJSON(resp *http.Response, out any) error {
	if out == nil || !isJSON(resp.Header.Get("Content-Type")) {
		io.Copy(io.Discard, io.LimitReader(resp.Body, MaxResponseSize))
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(resp.Body, MaxResponseSize))
	if err := dec.Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL.String() + path
}

// =============================================================================
// REQUEST LOGGING
// =============================================================================

// logRequest never records headers or bodies; both may carry credentials.
func (c *Client) logRequest(req *http.Request) {
	c.logger.Debug("api request", "method", req.Method, "path", req.URL.Path)
}

func (c *Client) logResponse(req *http.Request, resp *http.Response, d time.Duration) {
	c.logger.Debug("api response",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", d.Round(time.Millisecond),
	)
}
