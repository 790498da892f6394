package lsp

import (
	"net/url"
	"path/filepath"
	"strings"
)

func uriToPath(uri string) string {
	if uri == "" {
		return ""
	}
	parsed, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	if parsed.Scheme != "" && parsed.Scheme != "file" {
		return ""
	}
	path := parsed.Path
	if parsed.Scheme == "" {
		path = uri
	}
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	path = filepath.FromSlash(path)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path
}

func pathToURI(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// canonicalURI rewrites file URIs into one spelling so a document opened as
// file:///a/./b.erb and file:///a/b.erb shares state. Other schemes pass through.
func canonicalURI(uri string) string {
	if uri == "" {
		return ""
	}
	if !strings.HasPrefix(uri, "file:") {
		return uri
	}
	path := uriToPath(uri)
	if path == "" {
		return ""
	}
	return pathToURI(filepath.Clean(path))
}
