package sift

// Converter converts an HTML fragment into lightly structured text.
type Converter interface {
	// Convert transforms HTML content into Markdown-flavored text.
	// The input is usually a content container picked by a structural
	// extraction strategy.
	Convert(html string) (string, error)
}
