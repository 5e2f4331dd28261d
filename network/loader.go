package network

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Loader opens document sources: http(s) URLs, file:// URLs, data: URLs and
// bare filesystem paths.
type Loader struct {
	client  *Client
	baseURL string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithBaseURL makes relative sources resolve against base.
func WithBaseURL(base string) LoaderOption {
	return func(l *Loader) {
		l.baseURL = base
	}
}

// NewLoader creates a loader that fetches http(s) sources with client. A nil
// client gets NewClient's defaults on first use.
func NewLoader(client *Client, opts ...LoaderOption) *Loader {
	l := &Loader{client: client}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Resolve returns the absolute source ref names. Without a base URL, or when
// ref already carries a scheme, ref is returned unchanged.
func (l *Loader) Resolve(ref string) (string, error) {
	if l.baseURL == "" {
		return ref, nil
	}
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" && !isDriveLetter(u.Scheme) {
		return ref, nil
	}
	if filepath.IsAbs(ref) {
		return ref, nil
	}
	return ResolveURL(l.baseURL, filepath.ToSlash(ref))
}

// Open returns the content of ref. The caller must close it. A response
// outside 2xx is a *StatusError and one that is not HTML is a
// *ContentTypeError.
func (l *Loader) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	ref, err := l.Resolve(ref)
	if err != nil {
		return nil, err
	}
	if IsDataURL(ref) {
		data, err := ParseDataURL(ref)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data.Data)), nil
	}

	u, err := url.Parse(ref)
	if err != nil || u.Scheme == "" || isDriveLetter(u.Scheme) {
		return openFile(ref)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		return openFile(filepath.FromSlash(u.Path))
	case "http", "https":
		return l.openHTTP(ctx, ref)
	}
	return nil, fmt.Errorf("network: unsupported scheme %q in %s", u.Scheme, ref)
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (l *Loader) openHTTP(ctx context.Context, ref string) (io.ReadCloser, error) {
	if l.client == nil {
		c, err := NewClient()
		if err != nil {
			return nil, err
		}
		l.client = c
	}

	resp, err := l.client.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{URL: ref, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	// A missing Content-Type is left to the parser.
	if resp.ContentType != "" && !IsHTMLContentType(resp.ContentType) {
		resp.Body.Close()
		return nil, &ContentTypeError{URL: ref, ContentType: resp.ContentType}
	}
	return resp.Body, nil
}

// DocumentURL returns the address a document loaded from ref should report:
// ref itself for URLs and a file:// URL for bare paths.
func DocumentURL(ref string) string {
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" && !isDriveLetter(u.Scheme) {
		return ref
	}
	abs, err := filepath.Abs(ref)
	if err != nil {
		return ref
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

// isDriveLetter reports whether a parsed scheme is really a Windows drive,
// as in C:\pages\index.html.
func isDriveLetter(scheme string) bool {
	return len(scheme) == 1
}
