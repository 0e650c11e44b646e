package sift

import (
	"log/slog"
	"net/netip"
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// Validator limits and cache sizing.
const (
	MaxURLLength = 2048

	validatorCacheSize  = 1000
	validatorCacheEvict = 100
)

// URLValidator decides whether a caller-supplied URL may be fetched.
type URLValidator interface {
	// Validate returns nil for acceptable URLs and an EINVALID error whose
	// message is the rejection reason otherwise.
	Validate(rawURL string) error
}

var (
	allowedPorts = map[int]bool{80: true, 443: true, 8080: true, 8443: true}

	localhostAliases = map[string]bool{
		"localhost": true,
		"127.0.0.1": true,
		"::1":       true,
		"0.0.0.0":   true,
		"local":     true,
		"internal":  true,
		"intranet":  true,
	}

	// Hosts matching these are suspicious but still allowed.
	privateHostPatterns = []string{
		".local", ".internal", ".corp", ".lan", ".home",
		"test.", "dev.", "staging.", "beta.",
	}

	suspiciousChars = []string{"<", ">", "\"", "'", "&", "\n", "\r", "\t"}
)

// Ensure Validator implements URLValidator at compile time.
var _ URLValidator = (*Validator)(nil)

// Validator rejects URLs that could be used for server-side request forgery
// before any network call is made. Results are cached per URL string.
// It is safe for concurrent use.
type Validator struct {
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]error
	order []string
}

// NewValidator creates a Validator. A nil logger discards warnings.
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Validator{
		logger: logger,
		cache:  make(map[string]error),
	}
}

// Validate implements URLValidator.
func (v *Validator) Validate(rawURL string) error {
	v.mu.RLock()
	err, ok := v.cache[rawURL]
	v.mu.RUnlock()
	if ok {
		return err
	}

	err = v.validate(rawURL)

	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.cache[rawURL]; !ok {
		if len(v.cache) >= validatorCacheSize {
			for _, key := range v.order[:validatorCacheEvict] {
				delete(v.cache, key)
			}
			v.order = append(v.order[:0], v.order[validatorCacheEvict:]...)
		}
		v.cache[rawURL] = err
		v.order = append(v.order, rawURL)
	}
	return err
}

// CacheLen returns the number of cached validation results.
func (v *Validator) CacheLen() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.cache)
}

func (v *Validator) validate(rawURL string) error {
	if len(rawURL) > MaxURLLength {
		return Errorf(EINVALID, "URL is too long (max %d characters)", MaxURLLength)
	}
	for _, c := range suspiciousChars {
		if strings.Contains(rawURL, c) {
			return Errorf(EINVALID, "URL contains suspicious character %q", c)
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Errorf(EINVALID, "invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Errorf(EINVALID, "invalid scheme %q: only http and https are allowed", u.Scheme)
	}
	if u.Host == "" {
		return Errorf(EINVALID, "URL must include a hostname")
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return Errorf(EINVALID, "invalid hostname")
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		if addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast() ||
			addr.IsLinkLocalMulticast() || addr.IsUnspecified() {
			return Errorf(EINVALID, "access to private or local IP addresses is not allowed: %s", host)
		}
	}
	if localhostAliases[host] {
		return Errorf(EINVALID, "access to localhost or internal addresses is not allowed: %s", host)
	}
	for _, pattern := range privateHostPatterns {
		if strings.Contains(host, pattern) {
			v.logger.Warn("potentially private host", "host", host, "pattern", pattern)
			break
		}
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || !allowedPorts[port] {
			return Errorf(EINVALID, "port %s is not allowed (allowed: 80, 443, 8080, 8443)", p)
		}
	}
	return nil
}
