package sift

import (
	"net/url"
	"strings"
)

// NormalizeURL returns the canonical crawl form of rawURL: lowercase scheme
// and host, no query, no fragment, no trailing slash. Two URLs with the same
// canonical form are treated as the same crawl target.
//
// Normalization is best-effort; input that cannot be parsed is returned
// unchanged.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return rawURL
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	u.User = nil
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = strings.TrimRight(u.RawPath, "/")
	return u.String()
}

// Hostname returns the lowercase host of rawURL without port, or an empty
// string when rawURL cannot be parsed.
func Hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// Origin returns scheme://host of rawURL, or an empty string when rawURL
// has no scheme or host.
func Origin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
}

// DomainSlug turns a host into a filename-safe token by replacing dots and
// colons with underscores.
func DomainSlug(host string) string {
	return strings.NewReplacer(".", "_", ":", "_").Replace(strings.ToLower(host))
}
