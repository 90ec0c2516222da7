package scraper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDomainOf(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"strips www prefix", "https://www.news.example/politics/a1", "news.example"},
		{"plain host", "https://news.example/a1", "news.example"},
		{"subdomain kept", "https://en.news.example/a1", "en.news.example"},
		{"host lowercased", "https://WWW.News.Example/a1", "news.example"},
		{"port dropped", "http://news.example:8080/a1", "news.example"},
		{"scheme-less url", "news.example/a1", "unknown"},
		{"empty string", "", "unknown"},
		{"garbage", "::::not a url::::", "unknown"},
		{"whitespace trimmed", "  https://news.example/a1  ", "news.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, DomainOf(tt.url))
		})
	}
}
