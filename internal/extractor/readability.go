// Package extractor turns fetched HTML into clean article text and
// metadata using the readability algorithm.
package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"

	"newsharvest/internal/metrics"
	"newsharvest/internal/scraper"
)

// DefaultMinLength is the minimum article length in characters below which
// a page is treated as boilerplate rather than an article.
const DefaultMinLength = 200

// ErrTooShort reports that a page yielded readable text below the
// configured minimum.
var ErrTooShort = errors.New("article text too short")

// Readability extracts articles with go-readability. The zero minimum
// length falls back to DefaultMinLength.
type Readability struct {
	minLength int
}

// NewReadability returns an extractor enforcing the given minimum length.
func NewReadability(minLength int) *Readability {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	return &Readability{minLength: minLength}
}

// Extract parses the document and returns its readable content. Pages whose
// text is shorter than the minimum fail with ErrTooShort; length is counted
// in runes so multibyte scripts are not penalized.
func (r *Readability) Extract(content []byte, rawURL string) (scraper.Article, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return scraper.Article{}, fmt.Errorf("parse url %q: %w", rawURL, err)
	}

	doc, err := readability.FromReader(bytes.NewReader(content), pageURL)
	if err != nil {
		return scraper.Article{}, fmt.Errorf("readability: %w", err)
	}

	text := strings.TrimSpace(doc.TextContent)
	chars := utf8.RuneCountInString(text)
	if chars < r.minLength {
		return scraper.Article{}, fmt.Errorf("%w: %d < %d chars", ErrTooShort, chars, r.minLength)
	}
	metrics.ObserveArticleLength(chars)

	article := scraper.Article{
		Text:        text,
		Title:       strings.TrimSpace(doc.Title),
		Author:      strings.TrimSpace(doc.Byline),
		Description: strings.TrimSpace(doc.Excerpt),
	}
	if doc.PublishedTime != nil {
		article.Date = doc.PublishedTime.Format(time.RFC3339)
	}
	return article, nil
}
