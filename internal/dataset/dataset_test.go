package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadURLs(t *testing.T) {
	t.Run("reads urls in order", func(t *testing.T) {
		path := writeDataset(t, "url\nhttps://news.example/a\nhttps://news.example/b\n")

		urls, err := LoadURLs(path)

		require.NoError(t, err)
		require.Equal(t, []string{"https://news.example/a", "https://news.example/b"}, urls)
	})

	t.Run("ignores extra columns", func(t *testing.T) {
		path := writeDataset(t, "title,url,category\nFirst,https://news.example/a,politics\n")

		urls, err := LoadURLs(path)

		require.NoError(t, err)
		require.Equal(t, []string{"https://news.example/a"}, urls)
	})

	t.Run("skips blank cells", func(t *testing.T) {
		path := writeDataset(t, "url\nhttps://news.example/a\n\"\"\n   \nhttps://news.example/b\n")

		urls, err := LoadURLs(path)

		require.NoError(t, err)
		require.Equal(t, []string{"https://news.example/a", "https://news.example/b"}, urls)
	})

	t.Run("missing url column yields ErrNoURLs", func(t *testing.T) {
		path := writeDataset(t, "link\nhttps://news.example/a\n")

		_, err := LoadURLs(path)

		require.ErrorIs(t, err, ErrNoURLs)
	})

	t.Run("header-only file yields ErrNoURLs", func(t *testing.T) {
		path := writeDataset(t, "url\n")

		_, err := LoadURLs(path)

		require.ErrorIs(t, err, ErrNoURLs)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadURLs(filepath.Join(t.TempDir(), "absent.csv"))
		require.Error(t, err)
	})

	t.Run("empty file is a decode error", func(t *testing.T) {
		path := writeDataset(t, "")

		_, err := LoadURLs(path)

		require.Error(t, err)
		require.NotErrorIs(t, err, ErrNoURLs)
	})
}
