// Package goquery implements HTML parsing pieces of the extraction cascade
// with github.com/PuerkitoBio/goquery: structural and body-text content
// strategies, metadata, and link extraction.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sift"
	"golang.org/x/net/html"
)

// Strategy names.
const (
	StructuralStrategyName = "structural"
	BodyTextStrategyName   = "body_text"
)

// ContentSelectors are tried in order for the main content container.
var ContentSelectors = []string{
	"main",
	"article",
	".content",
	"#content",
	".post",
	".entry",
	".documentation",
	".docs",
	".page-content",
	".main-content",
}

// boilerplate elements are removed before any content is read.
const boilerplate = "script, style, nav, footer, header, aside"

var (
	_ sift.ContentStrategy = (*StructuralStrategy)(nil)
	_ sift.ContentStrategy = (*BodyTextStrategy)(nil)
)

// StructuralStrategy picks the first known content container and converts
// it to markdown.
type StructuralStrategy struct {
	converter sift.Converter
}

// NewStructuralStrategy creates a StructuralStrategy using conv to render
// the chosen container.
func NewStructuralStrategy(conv sift.Converter) *StructuralStrategy {
	return &StructuralStrategy{converter: conv}
}

func (s *StructuralStrategy) Name() string { return StructuralStrategyName }

// ExtractContent returns the markdown of the first matching container.
func (s *StructuralStrategy) ExtractContent(rawHTML, _ string) (string, error) {
	doc, err := parse(rawHTML)
	if err != nil {
		return "", err
	}

	for _, selector := range ContentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		html, err := goquery.OuterHtml(sel)
		if err != nil {
			return "", sift.Errorf(sift.EINVALID, "failed to render %s: %v", selector, err)
		}
		text, err := s.converter.Convert(html)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			return text, nil
		}
	}
	return "", sift.Errorf(sift.ENOTFOUND, "no content container found")
}

// BodyTextStrategy returns the visible text of the body, one line per
// non-blank line of text.
type BodyTextStrategy struct{}

// NewBodyTextStrategy creates a new BodyTextStrategy.
func NewBodyTextStrategy() *BodyTextStrategy {
	return &BodyTextStrategy{}
}

func (s *BodyTextStrategy) Name() string { return BodyTextStrategyName }

// ExtractContent returns the cleaned body text.
func (s *BodyTextStrategy) ExtractContent(rawHTML, _ string) (string, error) {
	doc, err := parse(rawHTML)
	if err != nil {
		return "", err
	}

	root := doc.Find("body").First()
	if root.Length() == 0 {
		root = doc.Selection
	}
	var parts []string
	for _, n := range root.Nodes {
		parts = appendText(parts, n)
	}
	return cleanLines(strings.Join(parts, "\n")), nil
}

// appendText collects the text nodes under n in document order.
func appendText(parts []string, n *html.Node) []string {
	if n.Type == html.TextNode {
		return append(parts, n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		parts = appendText(parts, c)
	}
	return parts
}

// parse builds a document with boilerplate elements already removed.
func parse(rawHTML string) (*goquery.Document, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, sift.Errorf(sift.EINVALID, "empty HTML input")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, sift.Errorf(sift.EINVALID, "failed to parse HTML: %v", err)
	}
	doc.Find(boilerplate).Remove()
	return doc, nil
}

// cleanLines trims every line and drops blank ones.
func cleanLines(text string) string {
	var lines []string
	for line := range strings.Lines(text) {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
