package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sift"
)

// DefaultLanguage is reported when a page does not declare one.
const DefaultLanguage = "en"

// Ensure MetadataExtractor implements sift.MetadataExtractor at compile time.
var _ sift.MetadataExtractor = (*MetadataExtractor)(nil)

// MetadataExtractor reads title, description, keywords and language.
type MetadataExtractor struct{}

// NewMetadataExtractor creates a new MetadataExtractor.
func NewMetadataExtractor() *MetadataExtractor {
	return &MetadataExtractor{}
}

// ExtractMetadata parses rawHTML and returns its metadata.
func (e *MetadataExtractor) ExtractMetadata(rawHTML string) (sift.PageMetadata, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return sift.PageMetadata{}, sift.Errorf(sift.EINVALID, "failed to parse HTML: %v", err)
	}

	meta := sift.PageMetadata{
		Title:       firstText(doc, "title", "h1"),
		Description: metaContent(doc, `meta[name="description"]`, `meta[property="og:description"]`),
		Keywords:    splitKeywords(metaContent(doc, `meta[name="keywords"]`)),
		Language:    DefaultLanguage,
	}
	if meta.Title == "" {
		meta.Title = sift.UntitledPage
	}
	if lang, ok := doc.Find("html").First().Attr("lang"); ok && strings.TrimSpace(lang) != "" {
		meta.Language = strings.TrimSpace(lang)
	}
	return meta, nil
}

func firstText(doc *goquery.Document, selectors ...string) string {
	for _, s := range selectors {
		if text := strings.Join(strings.Fields(doc.Find(s).First().Text()), " "); text != "" {
			return text
		}
	}
	return ""
}

func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, s := range selectors {
		if v, ok := doc.Find(s).First().Attr("content"); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

func splitKeywords(s string) []string {
	var out []string
	for _, kw := range strings.Split(s, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
