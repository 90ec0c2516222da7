package scraper

import (
	"net/url"
	"strings"
)

// UnknownDomain is recorded when a URL's host cannot be determined.
const UnknownDomain = "unknown"

// DomainOf extracts the host of a URL for per-domain grouping, lowercased
// and with a leading "www." stripped. URLs without a parseable host map to
// UnknownDomain.
func DomainOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return UnknownDomain
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return UnknownDomain
	}
	return strings.TrimPrefix(host, "www.")
}
