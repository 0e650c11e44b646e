package mock

import "github.com/fwojciec/sift"

var _ sift.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of sift.Extractor.
type Extractor struct {
	ExtractFn func(rawHTML, pageURL, targetDomain string) (*sift.Extraction, error)
}

func (e *Extractor) Extract(rawHTML, pageURL, targetDomain string) (*sift.Extraction, error) {
	return e.ExtractFn(rawHTML, pageURL, targetDomain)
}

var _ sift.ContentStrategy = (*ContentStrategy)(nil)

// ContentStrategy is a mock implementation of sift.ContentStrategy.
type ContentStrategy struct {
	NameFn           func() string
	ExtractContentFn func(rawHTML, pageURL string) (string, error)
}

func (s *ContentStrategy) Name() string {
	return s.NameFn()
}

func (s *ContentStrategy) ExtractContent(rawHTML, pageURL string) (string, error) {
	return s.ExtractContentFn(rawHTML, pageURL)
}

var _ sift.MetadataExtractor = (*MetadataExtractor)(nil)

// MetadataExtractor is a mock implementation of sift.MetadataExtractor.
type MetadataExtractor struct {
	ExtractMetadataFn func(rawHTML string) (sift.PageMetadata, error)
}

func (e *MetadataExtractor) ExtractMetadata(rawHTML string) (sift.PageMetadata, error) {
	return e.ExtractMetadataFn(rawHTML)
}

var _ sift.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of sift.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(rawHTML, pageURL, targetDomain string) ([]string, error)
}

func (e *LinkExtractor) ExtractLinks(rawHTML, pageURL, targetDomain string) ([]string, error) {
	return e.ExtractLinksFn(rawHTML, pageURL, targetDomain)
}
