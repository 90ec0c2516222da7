package scraper

import (
	"fmt"
	"strings"
)

// DefaultSkipPatterns lists URL path fragments for non-article sections:
// photo galleries, video hubs, live blogs, and sponsored placements.
var DefaultSkipPatterns = []string{
	"/foto/",
	"/photo/",
	"/gallery/",
	"/infografis/",
	"/video/",
	"/live/",
	"/breaking-news-live/",
	"/snippet/",
	"/opini-singkat/",
	"/sponsored/",
	"/advertorial/",
	"/promosi/",
}

type skipPattern struct {
	match   string // lowercased for case-insensitive matching
	display string
}

// PatternClassifier skips URLs containing any of a set of substrings,
// matched case-insensitively against the whole URL.
type PatternClassifier struct {
	patterns []skipPattern
}

// NewPatternClassifier builds a classifier from the given patterns. A nil
// slice selects DefaultSkipPatterns; an empty one disables skipping.
func NewPatternClassifier(patterns []string) *PatternClassifier {
	if patterns == nil {
		patterns = DefaultSkipPatterns
	}
	c := &PatternClassifier{patterns: make([]skipPattern, 0, len(patterns))}
	for _, p := range patterns {
		if strings.TrimSpace(p) == "" {
			continue
		}
		c.patterns = append(c.patterns, skipPattern{
			match:   strings.ToLower(p),
			display: p,
		})
	}
	return c
}

// ShouldSkip reports whether rawURL matches a skip pattern, returning a
// reason that names the first matching pattern as configured.
func (c *PatternClassifier) ShouldSkip(rawURL string) (bool, string) {
	lower := strings.ToLower(rawURL)
	for _, p := range c.patterns {
		if strings.Contains(lower, p.match) {
			return true, fmt.Sprintf("matched skip pattern: %s", p.display)
		}
	}
	return false, ""
}
