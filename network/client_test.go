package network

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func readBody(t *testing.T, resp *Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return string(b)
}

func TestNewClient(t *testing.T) {
	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if client.timeout != 30*time.Second {
		t.Errorf("default timeout = %v, want %v", client.timeout, 30*time.Second)
	}
	if client.maxRedirects != 10 {
		t.Errorf("default maxRedirects = %v, want %v", client.maxRedirects, 10)
	}
	if client.UserAgent() != DefaultUserAgent {
		t.Errorf("default userAgent = %q, want %q", client.UserAgent(), DefaultUserAgent)
	}
}

func TestClientOptions(t *testing.T) {
	client, err := NewClient(
		WithTimeout(60*time.Second),
		WithMaxRedirects(5),
		WithUserAgent("TestAgent/1.0"),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if client.timeout != 60*time.Second {
		t.Errorf("timeout = %v, want %v", client.timeout, 60*time.Second)
	}
	if client.maxRedirects != 5 {
		t.Errorf("maxRedirects = %v, want %v", client.maxRedirects, 5)
	}
	if client.userAgent != "TestAgent/1.0" {
		t.Errorf("userAgent = %v, want %v", client.userAgent, "TestAgent/1.0")
	}
}

func TestClientGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "TestAgent/1.0" {
			t.Errorf("User-Agent = %q", got)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<p>Hello</p>"))
	}))
	defer server.Close()

	client, err := NewClient(WithUserAgent("TestAgent/1.0"))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("StatusCode = %v, want 200", resp.StatusCode)
	}
	if !IsHTMLContentType(resp.ContentType) {
		t.Errorf("ContentType = %q, want HTML", resp.ContentType)
	}
	if body := readBody(t, resp); body != "<p>Hello</p>" {
		t.Errorf("Body = %q", body)
	}
}

func TestClientGzip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		gz.Write([]byte("compressed"))
		gz.Close()
	}))
	defer server.Close()

	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if body := readBody(t, resp); body != "compressed" {
		t.Errorf("Body = %q, want %q", body, "compressed")
	}
}

func TestClientRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/final" {
			w.Write([]byte("Final destination"))
			return
		}
		http.Redirect(w, r, "/final", http.StatusFound)
	}))
	defer server.Close()

	client, err := NewClient(WithMaxRedirects(5))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	resp, err := client.Get(context.Background(), server.URL+"/start")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if resp.URL.Path != "/final" {
		t.Errorf("final URL = %v, want /final", resp.URL)
	}
	if body := readBody(t, resp); body != "Final destination" {
		t.Errorf("Body = %q, want %q", body, "Final destination")
	}
}

func TestClientTooManyRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	}))
	defer server.Close()

	client, err := NewClient(WithMaxRedirects(3))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if _, err := client.Get(context.Background(), server.URL+"/loop"); err == nil {
		t.Error("expected error for too many redirects")
	}
}

func TestClientNoFollowRedirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/other", http.StatusFound)
	}))
	defer server.Close()

	client, err := NewClient(WithMaxRedirects(0))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Errorf("StatusCode = %v, want %v", resp.StatusCode, http.StatusFound)
	}
}

func TestClientCookies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/set" {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc123"})
			return
		}
		cookie, err := r.Cookie("session")
		if err != nil {
			w.Write([]byte("No cookie"))
			return
		}
		w.Write([]byte("Cookie: " + cookie.Value))
	}))
	defer server.Close()

	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	resp, err := client.Get(context.Background(), server.URL+"/set")
	if err != nil {
		t.Fatalf("Get(/set) error = %v", err)
	}
	resp.Body.Close()

	resp, err = client.Get(context.Background(), server.URL+"/get")
	if err != nil {
		t.Fatalf("Get(/get) error = %v", err)
	}
	if body := readBody(t, resp); body != "Cookie: abc123" {
		t.Errorf("Body = %q, want %q", body, "Cookie: abc123")
	}
}

func TestParseContentType(t *testing.T) {
	tests := []struct {
		contentType string
		wantMedia   string
		wantCharset string
	}{
		{"text/html", "text/html", ""},
		{"text/html; charset=utf-8", "text/html", "utf-8"},
		{"text/html; charset=UTF-8", "text/html", "utf-8"},
		{"text/html; charset=\"utf-8\"", "text/html", "utf-8"},
		{"Application/XHTML+XML", "application/xhtml+xml", ""},
		{"", "application/octet-stream", ""},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			media, charset := ParseContentType(tt.contentType)
			if media != tt.wantMedia {
				t.Errorf("media = %q, want %q", media, tt.wantMedia)
			}
			if charset != tt.wantCharset {
				t.Errorf("charset = %q, want %q", charset, tt.wantCharset)
			}
		})
	}
}

func TestIsHTMLContentType(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"text/html", true},
		{"text/html; charset=utf-8", true},
		{"application/xhtml+xml", true},
		{"text/css", false},
		{"application/json", false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			if got := IsHTMLContentType(tt.contentType); got != tt.want {
				t.Errorf("IsHTMLContentType() = %v, want %v", got, tt.want)
			}
		})
	}
}
