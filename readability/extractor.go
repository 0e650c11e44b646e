// Package readability provides an alternative first extraction tier using
// github.com/go-shiori/go-readability.
package readability

import (
	"net/url"
	"strings"

	"github.com/fwojciec/sift"
	"github.com/go-shiori/go-readability"
)

// StrategyName identifies this tier in page records.
const StrategyName = "readability"

// Ensure Strategy implements sift.ContentStrategy at compile time.
var _ sift.ContentStrategy = (*Strategy)(nil)

// Strategy extracts the readable article of a page.
type Strategy struct {
	converter sift.Converter
}

// NewStrategy creates a Strategy. When conv is non-nil the article HTML is
// rendered through it; otherwise the article text is returned.
func NewStrategy(conv sift.Converter) *Strategy {
	return &Strategy{converter: conv}
}

func (s *Strategy) Name() string { return StrategyName }

// ExtractContent returns the readable article of rawHTML.
func (s *Strategy) ExtractContent(rawHTML, pageURL string) (string, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return "", sift.Errorf(sift.EINVALID, "empty HTML input")
	}

	var base *url.URL
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		base = u
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), base)
	if err != nil {
		return "", sift.Errorf(sift.ENOTFOUND, "readability: %v", err)
	}

	if s.converter != nil && strings.TrimSpace(article.Content) != "" {
		if md, err := s.converter.Convert(article.Content); err == nil && md != "" {
			return md, nil
		}
	}
	return strings.TrimSpace(article.TextContent), nil
}
