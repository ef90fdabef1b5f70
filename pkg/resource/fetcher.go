package resource

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/url"
	"strings"

	stdnet "dynhtml/std/net"

	"golang.org/x/net/html/charset"
)

// ScriptLoader retrieves script source text by URI. charsetHint is the
// script element's charset attribute and may be empty.
type ScriptLoader interface {
	LoadScript(uri, charsetHint string) (string, error)
}

// Fetcher loads scripts over HTTP/HTTPS or from data: URIs, resolving
// relative URIs against a base URL.
type Fetcher struct {
	baseURL string
}

// NewFetcher creates a Fetcher with the given base URL. Relative URIs
// passed to LoadScript will be resolved against this base.
func NewFetcher(baseURL string) *Fetcher {
	return &Fetcher{baseURL: baseURL}
}

// LoadScript retrieves the script at uri and returns its source decoded to
// UTF-8. The charset attribute from the script element takes precedence
// over the server's Content-Type charset.
func (f *Fetcher) LoadScript(uri, charsetHint string) (string, error) {
	uri = strings.TrimSpace(uri)
	if strings.HasPrefix(uri, "data:") {
		return decodeDataURI(uri)
	}

	resolved := uri
	if !stdnet.IsNetworkURL(uri) && f.baseURL != "" {
		resolved = stdnet.ResolveURL(f.baseURL, uri)
	}
	if !stdnet.IsNetworkURL(resolved) {
		return "", fmt.Errorf("cannot fetch non-network script URI: %s", resolved)
	}

	body, contentType, err := stdnet.Fetch(resolved)
	if err != nil {
		return "", err
	}
	return decodeScript(body, contentType, charsetHint)
}

// decodeScript converts raw script bytes to UTF-8 text. Label lookup goes
// through the WHATWG encoding tables, so names like "latin1" or
// "iso-8859-1" both work.
func decodeScript(body []byte, contentType, charsetHint string) (string, error) {
	label := strings.TrimSpace(charsetHint)
	if label == "" {
		label = charsetFromContentType(contentType)
	}
	if label == "" || strings.EqualFold(label, "utf-8") {
		return string(body), nil
	}

	r, err := charset.NewReaderLabel(label, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("charset %q: %w", label, err)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decoding script as %q: %w", label, err)
	}
	return string(decoded), nil
}

func charsetFromContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

// decodeDataURI extracts the payload of a data: URI, e.g.
// data:text/javascript,document.write('x'). Base64 payloads are not
// supported; scripts in tests and fixtures use the plain form.
func decodeDataURI(uri string) (string, error) {
	rest := uri[len("data:"):]
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return "", fmt.Errorf("malformed data URI: %s", uri)
	}
	meta, payload := rest[:comma], rest[comma+1:]
	if strings.HasSuffix(meta, ";base64") {
		return "", fmt.Errorf("base64 data URIs not supported: %s", uri)
	}
	decoded, err := url.PathUnescape(payload)
	if err != nil {
		return payload, nil
	}
	return decoded, nil
}
