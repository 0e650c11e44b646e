// Package extract implements sift.Extractor as an ordered cascade of
// content strategies.
package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/sift"
	"github.com/fwojciec/sift/goquery"
	"github.com/fwojciec/sift/htmltomarkdown"
	"github.com/fwojciec/sift/readability"
	"github.com/fwojciec/sift/trafilatura"
)

// Engines selectable for the first cascade tier.
const (
	EngineTrafilatura = "trafilatura"
	EngineReadability = "readability"
)

// Ensure Extractor implements sift.Extractor at compile time.
var _ sift.Extractor = (*Extractor)(nil)

// Extractor tries each strategy in order and keeps the first result that
// is long enough. Metadata and links are always read from the raw HTML.
type Extractor struct {
	strategies []sift.ContentStrategy
	metadata   sift.MetadataExtractor
	links      sift.LinkExtractor
	minLength  int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMinContentLength sets the minimum rune length a strategy result must
// reach. Defaults to sift.DefaultMinContentLength.
func WithMinContentLength(n int) Option {
	return func(e *Extractor) {
		e.minLength = n
	}
}

// NewExtractor creates a cascade over strategies.
func NewExtractor(strategies []sift.ContentStrategy, metadata sift.MetadataExtractor, links sift.LinkExtractor, opts ...Option) *Extractor {
	e := &Extractor{
		strategies: strategies,
		metadata:   metadata,
		links:      links,
		minLength:  sift.DefaultMinContentLength,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewDefaultExtractor builds the standard cascade: engine first, then the
// structural and body-text strategies.
func NewDefaultExtractor(engine string, opts ...Option) (*Extractor, error) {
	conv := htmltomarkdown.NewConverter()

	var first sift.ContentStrategy
	switch strings.ToLower(engine) {
	case "", EngineTrafilatura:
		first = trafilatura.NewStrategy(nil)
	case EngineReadability:
		first = readability.NewStrategy(nil)
	default:
		return nil, sift.Errorf(sift.EINVALID, "unknown extraction engine %q", engine)
	}

	strategies := []sift.ContentStrategy{
		first,
		goquery.NewStructuralStrategy(conv),
		goquery.NewBodyTextStrategy(),
	}
	return NewExtractor(strategies, goquery.NewMetadataExtractor(), goquery.NewLinkExtractor(), opts...), nil
}

// Extract runs the cascade over rawHTML.
func (e *Extractor) Extract(rawHTML, pageURL, targetDomain string) (*sift.Extraction, error) {
	content, strategy, err := e.extractContent(rawHTML, pageURL)
	if err != nil {
		return nil, err
	}

	meta, err := e.metadata.ExtractMetadata(rawHTML)
	if err != nil {
		meta = sift.PageMetadata{Title: sift.UntitledPage, Language: goquery.DefaultLanguage}
	}

	links, err := e.links.ExtractLinks(rawHTML, pageURL, targetDomain)
	if err != nil {
		links = nil
	}

	return &sift.Extraction{
		Content:  content,
		Strategy: strategy,
		Metadata: meta,
		Links:    links,
	}, nil
}

func (e *Extractor) extractContent(rawHTML, pageURL string) (string, string, error) {
	var tried []string
	for _, s := range e.strategies {
		tried = append(tried, s.Name())
		text, err := s.ExtractContent(rawHTML, pageURL)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if utf8.RuneCountInString(text) < e.minLength {
			continue
		}
		return text, s.Name(), nil
	}
	return "", "", sift.Errorf(sift.EINVALID, "insufficient content (tried %s)", strings.Join(tried, ", "))
}

// String describes the cascade order.
func (e *Extractor) String() string {
	names := make([]string, len(e.strategies))
	for i, s := range e.strategies {
		names[i] = s.Name()
	}
	return fmt.Sprintf("cascade(%s)", strings.Join(names, " > "))
}
