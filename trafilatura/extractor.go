// Package trafilatura provides the first extraction tier using
// github.com/markusmobius/go-trafilatura.
package trafilatura

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/fwojciec/sift"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// StrategyName identifies this tier in page records.
const StrategyName = "trafilatura"

// Ensure Strategy implements sift.ContentStrategy at compile time.
var _ sift.ContentStrategy = (*Strategy)(nil)

// Strategy extracts the main content of article-like pages.
type Strategy struct {
	converter sift.Converter
}

// NewStrategy creates a Strategy. When conv is non-nil the extracted
// content node is rendered through it; otherwise plain text is returned.
func NewStrategy(conv sift.Converter) *Strategy {
	return &Strategy{converter: conv}
}

func (s *Strategy) Name() string { return StrategyName }

// ExtractContent returns the main content of rawHTML.
func (s *Strategy) ExtractContent(rawHTML, pageURL string) (string, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return "", sift.Errorf(sift.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		opts.OriginalURL = u
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return "", sift.Errorf(sift.ENOTFOUND, "trafilatura: %v", err)
	}

	if s.converter != nil && result.ContentNode != nil {
		contentHTML, err := renderNode(result.ContentNode)
		if err == nil {
			if md, err := s.converter.Convert(contentHTML); err == nil && md != "" {
				return md, nil
			}
		}
	}
	return strings.TrimSpace(result.ContentText), nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
