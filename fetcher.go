package sift

import (
	"context"
	"mime"
	"strings"
)

// Response is the result of fetching a single URL.
type Response struct {
	// URL is the final URL after redirects.
	URL string

	StatusCode  int
	ContentType string
	Body        string
}

// IsHTML reports whether the response declares an HTML content type.
func (r *Response) IsHTML() bool {
	mediaType, _, err := mime.ParseMediaType(r.ContentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(r.ContentType))
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// Fetcher retrieves pages over the network.
type Fetcher interface {
	// Fetch requests the URL, following redirects, and returns the final
	// response regardless of its status code. Transport failures and
	// timeouts are returned as errors.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (*Response, error)

	// Close releases pooled connections.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}
