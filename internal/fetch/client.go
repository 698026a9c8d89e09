// Package fetch retrieves remote catalogs, feature data and pack files over
// HTTP with size limits.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrTooLarge is returned when a response body exceeds the configured limit.
var ErrTooLarge = errors.New("response too large")

// ErrHostNotAllowed is returned when an allowlist is set and the URL host is
// not on it.
var ErrHostNotAllowed = errors.New("host not allowed")

// ErrUnsupportedURL is returned for anything that is not an absolute http(s) URL.
var ErrUnsupportedURL = errors.New("unsupported url")

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status fetching %s: %s", e.URL, e.Status)
}

// Options configures a Client.
type Options struct {
	Timeout      time.Duration
	MaxBytes     int64 // limit for Get
	MaxFileBytes int64 // limit for Download
	UserAgent    string
	Transport    http.RoundTripper

	// AllowedHosts restricts requests to these hosts and their subdomains.
	// Empty allows any host.
	AllowedHosts []string
}

// Client performs size-limited GET requests.
type Client struct {
	http         *http.Client
	maxBytes     int64
	maxFileBytes int64
	userAgent    string
	allowedHosts []string
}

// NewClient creates a Client. Zero limits fall back to 20MB for Get and
// unlimited for Download.
func NewClient(opts Options) *Client {
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 20 << 20
	}

	var allowed []string
	for _, h := range opts.AllowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			allowed = append(allowed, h)
		}
	}

	c := &Client{
		maxBytes:     maxBytes,
		maxFileBytes: opts.MaxFileBytes,
		userAgent:    opts.UserAgent,
		allowedHosts: allowed,
	}
	c.http = &http.Client{
		Timeout:   opts.Timeout,
		Transport: opts.Transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return errors.New("stopped after 10 redirects")
			}
			return c.checkHost(req.URL)
		},
	}
	return c
}

// HostAllowed reports whether host passes the allowlist.
func (c *Client) HostAllowed(host string) bool {
	if len(c.allowedHosts) == 0 {
		return true
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for _, h := range c.allowedHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

func (c *Client) checkHost(u *url.URL) error {
	if !c.HostAllowed(u.Hostname()) {
		return fmt.Errorf("%w: %s", ErrHostNotAllowed, u.Hostname())
	}
	return nil
}

// ValidateURL parses raw and checks that it is an absolute http(s) URL.
func ValidateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, raw)
	}
	return u, nil
}

// Get fetches rawURL and returns the whole body.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.do(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.ContentLength > c.maxBytes {
		return nil, fmt.Errorf("%w: %s declares %d bytes", ErrTooLarge, rawURL, resp.ContentLength)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, rawURL, c.maxBytes)
	}
	return body, nil
}

// Download streams rawURL into w and returns the number of bytes written.
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	resp, err := c.do(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if c.maxFileBytes > 0 {
		if resp.ContentLength > c.maxFileBytes {
			return 0, fmt.Errorf("%w: %s declares %d bytes", ErrTooLarge, rawURL, resp.ContentLength)
		}
		body = io.LimitReader(resp.Body, c.maxFileBytes+1)
	}

	n, err := io.Copy(w, body)
	if err != nil {
		return n, fmt.Errorf("download %s: %w", rawURL, err)
	}
	if c.maxFileBytes > 0 && n > c.maxFileBytes {
		return n, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, rawURL, c.maxFileBytes)
	}
	return n, nil
}

func (c *Client) do(ctx context.Context, rawURL string) (*http.Response, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}
	if err := c.checkHost(u); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return resp, nil
}
