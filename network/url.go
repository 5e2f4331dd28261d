package network

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// ResolveURL resolves a reference URL against a base URL.
// If ref is already absolute, it is returned as-is.
func ResolveURL(base, ref string) (string, error) {
	if ref == "" {
		return base, nil
	}
	if IsDataURL(ref) {
		return ref, nil
	}

	refURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid reference URL: %w", err)
	}
	if refURL.IsAbs() {
		return refURL.String(), nil
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	return baseURL.ResolveReference(refURL).String(), nil
}

// IsDataURL returns true if the URL is a data URL.
func IsDataURL(urlStr string) bool {
	return strings.HasPrefix(strings.ToLower(urlStr), "data:")
}

// DataURL represents a parsed data URL.
type DataURL struct {
	MediaType string
	Charset   string
	Base64    bool
	Data      []byte
}

// ParseDataURL parses a data URL and returns its components.
// Format: data:[<mediatype>][;base64],<data>
func ParseDataURL(urlStr string) (*DataURL, error) {
	if !IsDataURL(urlStr) {
		return nil, fmt.Errorf("not a data URL")
	}

	content := urlStr[5:]
	commaIdx := strings.Index(content, ",")
	if commaIdx == -1 {
		return nil, fmt.Errorf("invalid data URL: missing comma")
	}
	metadata := content[:commaIdx]
	data := content[commaIdx+1:]

	result := &DataURL{
		MediaType: "text/plain",
		Charset:   "US-ASCII",
	}
	for i, part := range strings.Split(metadata, ";") {
		switch {
		case part == "base64":
			result.Base64 = true
		case strings.HasPrefix(strings.ToLower(part), "charset="):
			result.Charset = part[8:]
		case i == 0 && part != "" && !strings.Contains(part, "="):
			result.MediaType = part
		}
	}

	if result.Base64 {
		decoded, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 data: %w", err)
		}
		result.Data = decoded
		return result, nil
	}
	decoded, err := url.PathUnescape(data)
	if err != nil {
		return nil, fmt.Errorf("failed to URL-decode data: %w", err)
	}
	result.Data = []byte(decoded)
	return result, nil
}
