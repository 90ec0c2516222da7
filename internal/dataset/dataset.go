// Package dataset reads URL lists from CSV input files.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
)

// ErrNoURLs reports an input file without any usable url column values.
var ErrNoURLs = errors.New("dataset: no urls found")

type row struct {
	URL string `csv:"url"`
}

// LoadURLs reads the url column of a CSV dataset, preserving row order and
// dropping blank cells. Columns other than url are ignored.
func LoadURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	var rows []row
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", path, err)
	}

	urls := make([]string, 0, len(rows))
	for _, r := range rows {
		u := strings.TrimSpace(r.URL)
		if u == "" {
			continue
		}
		urls = append(urls, u)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoURLs, path)
	}
	return urls, nil
}
