package sift

// Extraction holds everything pulled out of one HTML page.
type Extraction struct {
	// Content is the clean text of the page.
	Content string

	// Strategy names the cascade tier that produced Content.
	Strategy string

	Metadata PageMetadata

	// Links are canonical same-domain outbound links in document order.
	Links []string
}

// Extractor turns raw HTML into clean text, metadata, and outbound links.
type Extractor interface {
	// Extract processes rawHTML fetched from pageURL. Links are restricted
	// to the registered domain of targetDomain.
	// Returns EINVALID when no strategy yields enough content.
	Extract(rawHTML, pageURL, targetDomain string) (*Extraction, error)
}

// ContentStrategy is one tier of the extraction cascade.
type ContentStrategy interface {
	// Name identifies the strategy in records and logs.
	Name() string

	// ExtractContent returns the main text of rawHTML. Implementations
	// return an error, or short text, when they cannot find content;
	// the cascade then moves to the next tier.
	ExtractContent(rawHTML, pageURL string) (string, error)
}

// MetadataExtractor extracts document metadata from HTML.
type MetadataExtractor interface {
	ExtractMetadata(rawHTML string) (PageMetadata, error)
}

// LinkExtractor extracts outbound links from HTML.
type LinkExtractor interface {
	// ExtractLinks returns canonical links found in rawHTML, resolved
	// against pageURL and restricted to the registered domain of
	// targetDomain.
	ExtractLinks(rawHTML, pageURL, targetDomain string) ([]string, error)
}
