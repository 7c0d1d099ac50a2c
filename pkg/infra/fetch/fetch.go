package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

const defaultMaxSize = 512 << 20 // 512 MiB

// Client downloads remote package archives. It exists so a user can hand the
// viewer a URL instead of a local file; the downloaded bytes feed the same
// extract-then-install pipeline as an upload.
type Client struct {
	http       *http.Client
	maxSize    int64
	authHeader string
}

// Option configures a Client.
type Option func(*Client)

// WithMaxSize caps the accepted archive size in bytes.
func WithMaxSize(n int64) Option {
	return func(c *Client) {
		c.maxSize = n
	}
}

// WithAuthHeader sets an Authorization header value sent with every
// download, for packages hosted behind access control.
func WithAuthHeader(value string) Option {
	return func(c *Client) {
		c.authHeader = value
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a download client.
func New(opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: 5 * time.Minute},
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch downloads rawURL and returns the body bytes. Only http and https
// URLs are accepted.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid package URL", goerr.V("url", rawURL))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, goerr.New("package URL must be http or https",
			goerr.V("url", rawURL),
			goerr.V("scheme", u.Scheme),
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create download request")
	}
	if c.authHeader != "" {
		req.Header.Set("Authorization", c.authHeader)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download package", goerr.V("url", rawURL))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected status downloading package",
			goerr.V("url", rawURL),
			goerr.V("status", resp.StatusCode),
		)
	}
	if resp.ContentLength > c.maxSize {
		return nil, goerr.New("package is too large",
			goerr.V("url", rawURL),
			goerr.V("content_length", resp.ContentLength),
			goerr.V("max_bytes", c.maxSize),
		)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxSize+1))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read package body", goerr.V("url", rawURL))
	}
	if int64(len(data)) > c.maxSize {
		return nil, goerr.New("package is too large",
			goerr.V("url", rawURL),
			goerr.V("max_bytes", c.maxSize),
		)
	}

	return data, nil
}
