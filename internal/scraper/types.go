package scraper

import "time"

// Status is the terminal disposition of a single URL.
type Status string

const (
	// StatusPending marks a URL that has not been processed yet.
	StatusPending Status = "pending"
	// StatusSuccess marks a URL whose article text was extracted and stored.
	StatusSuccess Status = "success"
	// StatusFailed marks a URL that could not be fetched or extracted.
	StatusFailed Status = "failed"
	// StatusSkipped marks a URL filtered out before any network traffic.
	StatusSkipped Status = "skipped"
)

// Failure reasons recorded on Record.Error. Skip reasons are produced by the
// classifier and name the matched pattern.
const (
	ReasonFetchFailed   = "failed to fetch"
	ReasonExtractFailed = "extraction failed or content too short"
)

// Article holds the readable content pulled out of one fetched page.
type Article struct {
	Text        string
	Title       string
	Author      string
	Date        string
	Description string
}

// Record is one row of pipeline output: the URL, its terminal status, and
// the extracted fields when extraction succeeded. The csv tags fix the
// column order of the output and checkpoint files.
type Record struct {
	URL         string    `csv:"url" json:"url"`
	Status      Status    `csv:"status" json:"status"`
	Domain      string    `csv:"domain" json:"domain"`
	ScrapedAt   time.Time `csv:"scraped_at" json:"scraped_at"`
	Text        string    `csv:"text" json:"text"`
	Title       string    `csv:"title" json:"title"`
	Author      string    `csv:"author" json:"author"`
	Date        string    `csv:"date" json:"date"`
	Description string    `csv:"description" json:"description"`
	Error       string    `csv:"error" json:"error"`
}
