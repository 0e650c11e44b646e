package goquery

import (
	"net/netip"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sift"
	"golang.org/x/net/publicsuffix"
)

// DefaultMaxLinks caps the outbound links kept per page.
const DefaultMaxLinks = 50

// Ensure LinkExtractor implements sift.LinkExtractor at compile time.
var _ sift.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor collects same-site links from anchors.
type LinkExtractor struct {
	// MaxLinks caps the number of links returned. Zero means DefaultMaxLinks.
	MaxLinks int
}

// NewLinkExtractor creates a new LinkExtractor.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{MaxLinks: DefaultMaxLinks}
}

// ExtractLinks resolves every a[href] against pageURL and keeps the links
// whose registered domain matches targetDomain. Links are canonicalized,
// deduplicated in document order, and capped.
func (e *LinkExtractor) ExtractLinks(rawHTML, pageURL, targetDomain string) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, sift.Errorf(sift.EINVALID, "invalid page URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, sift.Errorf(sift.EINVALID, "failed to parse HTML: %v", err)
	}

	limit := e.MaxLinks
	if limit <= 0 {
		limit = DefaultMaxLinks
	}
	target := registeredDomain(targetDomain)

	seen := make(map[string]bool)
	links := []string{}
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if href == "" || isNonHTTPLink(href) {
			return true
		}

		resolved := resolveURL(base, href)
		if resolved == nil {
			return true
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return true
		}
		if registeredDomain(resolved.Hostname()) != target {
			return true
		}

		canonical := sift.NormalizeURL(resolved.String())
		if seen[canonical] {
			return true
		}
		seen[canonical] = true
		links = append(links, canonical)
		return len(links) < limit
	})

	return links, nil
}

// registeredDomain returns the eTLD+1 of host. Hosts without one, such as
// IP addresses and localhost, are returned lowercased. host carries no port.
func registeredDomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if _, err := netip.ParseAddr(host); err == nil {
		return host
	}
	d, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return d
}

// resolveURL resolves a relative URL against a base URL.
// Fragments are stripped from the resolved URL for deduplication purposes.
func resolveURL(base *url.URL, href string) *url.URL {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	return resolved
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") ||
		strings.HasPrefix(href, "#")
}
