// Package network fetches documents over HTTP, from the filesystem and from
// data: URLs.
package network

import (
	"compress/gzip"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// DefaultUserAgent is sent when no WithUserAgent option is given.
const DefaultUserAgent = "domkit/1.0"

// Client is an HTTP client with cookie support and configurable behavior.
type Client struct {
	httpClient   *http.Client
	timeout      time.Duration
	maxRedirects int
	userAgent    string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the request timeout. Zero means no timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithMaxRedirects sets the maximum number of redirects to follow. Zero
// disables following: the redirect response itself is returned.
func WithMaxRedirects(n int) ClientOption {
	return func(c *Client) {
		c.maxRedirects = n
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a new HTTP client with the given options.
func NewClient(opts ...ClientOption) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{
		PublicSuffixList: publicsuffix.List,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		timeout:      30 * time.Second,
		maxRedirects: 10,
		userAgent:    DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}

	c.httpClient = &http.Client{
		Transport: transport,
		Jar:       jar,
		Timeout:   c.timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if c.maxRedirects == 0 {
				return http.ErrUseLastResponse
			}
			if len(via) >= c.maxRedirects {
				return fmt.Errorf("stopped after %d redirects", c.maxRedirects)
			}
			return nil
		},
	}
	return c, nil
}

// UserAgent returns the User-Agent header the client sends.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// Response is an HTTP response whose body has not been read yet. The caller
// must close Body.
type Response struct {
	StatusCode  int
	Status      string
	Header      http.Header
	ContentType string
	URL         *url.URL // final URL after redirects
	Body        io.ReadCloser
}

// StatusError is returned by Loader.Open for a response outside 2xx.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %s", e.URL, e.Status)
}

// ContentTypeError is returned by Loader.Open for a response that is not an
// HTML document.
type ContentTypeError struct {
	URL         string
	ContentType string
}

func (e *ContentTypeError) Error() string {
	return fmt.Sprintf("GET %s: not an HTML document (Content-Type %q)", e.URL, e.ContentType)
}

// Get performs an HTTP GET request. Gzip-encoded bodies are decoded.
func (c *Client) Get(ctx context.Context, urlStr string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	body := resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		body = &gzipBody{Reader: gz, raw: resp.Body}
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		Status:      resp.Status,
		Header:      resp.Header,
		ContentType: resp.Header.Get("Content-Type"),
		URL:         resp.Request.URL,
		Body:        body,
	}, nil
}

// gzipBody closes the decoder and the underlying response body.
type gzipBody struct {
	*gzip.Reader
	raw io.ReadCloser
}

func (b *gzipBody) Close() error {
	return errors.Join(b.Reader.Close(), b.raw.Close())
}

// ParseContentType parses a Content-Type header and returns the media type and charset.
func ParseContentType(contentType string) (mediaType string, charset string) {
	if contentType == "" {
		return "application/octet-stream", ""
	}

	parts := strings.Split(contentType, ";")
	mediaType = strings.ToLower(strings.TrimSpace(parts[0]))

	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(strings.ToLower(part), "charset=") {
			charset = strings.Trim(part[8:], "\"")
			charset = strings.ToLower(charset)
			break
		}
	}
	return mediaType, charset
}

// IsHTMLContentType returns true if the content type indicates HTML.
func IsHTMLContentType(contentType string) bool {
	mediaType, _ := ParseContentType(contentType)
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
