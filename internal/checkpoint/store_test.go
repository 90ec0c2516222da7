package checkpoint

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"newsharvest/internal/scraper"
)

func testRecord(url string, status scraper.Status) scraper.Record {
	return scraper.Record{
		URL:       url,
		Status:    status,
		Domain:    "news.example",
		ScrapedAt: time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC),
		Text:      "body text with, comma\nand a newline",
	}
}

func TestCheckpointPath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"plain csv", "scraped_articles.csv", "scraped_articles_checkpoint.csv"},
		{"nested path", filepath.Join("data", "out.csv"), filepath.Join("data", "out_checkpoint.csv")},
		{"no extension", "results", "results_checkpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CheckpointPath(tt.output))
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("rejects empty output path", func(t *testing.T) {
		_, err := New("", 10, nil)
		require.Error(t, err)

		_, err = New("   ", 10, nil)
		require.Error(t, err)
	})

	t.Run("non-positive interval falls back to default", func(t *testing.T) {
		s, err := New("out.csv", 0, nil)
		require.NoError(t, err)
		require.Equal(t, DefaultInterval, s.interval)
	})
}

func TestStore_Append(t *testing.T) {
	t.Run("flushes at the interval", func(t *testing.T) {
		dir := t.TempDir()
		out := filepath.Join(dir, "out.csv")
		s, err := New(out, 2, nil)
		require.NoError(t, err)

		require.NoError(t, s.Append(testRecord("https://news.example/a", scraper.StatusSuccess)))
		require.NoFileExists(t, CheckpointPath(out))

		require.NoError(t, s.Append(testRecord("https://news.example/b", scraper.StatusFailed)))
		require.FileExists(t, CheckpointPath(out))

		require.NoError(t, s.Append(testRecord("https://news.example/c", scraper.StatusSkipped)))

		fresh, err := New(out, 2, nil)
		require.NoError(t, err)
		records, _, err := fresh.Load()
		require.NoError(t, err)
		require.Len(t, records, 2, "third record must wait for the next flush")
	})
}

func TestStore_Load(t *testing.T) {
	t.Run("missing checkpoint is not an error", func(t *testing.T) {
		s, err := New(filepath.Join(t.TempDir(), "out.csv"), 10, nil)
		require.NoError(t, err)

		records, processed, err := s.Load()
		require.NoError(t, err)
		require.Empty(t, records)
		require.Empty(t, processed)
	})

	t.Run("empty checkpoint file is not an error", func(t *testing.T) {
		dir := t.TempDir()
		out := filepath.Join(dir, "out.csv")
		require.NoError(t, os.WriteFile(CheckpointPath(out), nil, 0o600))

		s, err := New(out, 10, nil)
		require.NoError(t, err)

		records, processed, err := s.Load()
		require.NoError(t, err)
		require.Empty(t, records)
		require.Empty(t, processed)
	})

	t.Run("round-trips records and builds the processed set", func(t *testing.T) {
		dir := t.TempDir()
		out := filepath.Join(dir, "out.csv")

		writer, err := New(out, 10, nil)
		require.NoError(t, err)
		want := testRecord("https://news.example/a", scraper.StatusSuccess)
		want.Title = "Committee Reaches Decision"
		want.Error = ""
		require.NoError(t, writer.Append(want))
		require.NoError(t, writer.Flush())

		reader, err := New(out, 10, nil)
		require.NoError(t, err)
		records, processed, err := reader.Load()
		require.NoError(t, err)
		require.Len(t, records, 1)
		require.Equal(t, want.URL, records[0].URL)
		require.Equal(t, want.Status, records[0].Status)
		require.Equal(t, want.Domain, records[0].Domain)
		require.Equal(t, want.Text, records[0].Text)
		require.Equal(t, want.Title, records[0].Title)
		require.True(t, want.ScrapedAt.Equal(records[0].ScrapedAt))
		require.Contains(t, processed, want.URL)
	})

	t.Run("records after the last flush are lost on resume", func(t *testing.T) {
		dir := t.TempDir()
		out := filepath.Join(dir, "out.csv")

		first, err := New(out, 2, nil)
		require.NoError(t, err)
		require.NoError(t, first.Append(testRecord("https://news.example/a", scraper.StatusSuccess)))
		require.NoError(t, first.Append(testRecord("https://news.example/b", scraper.StatusSuccess)))
		require.NoError(t, first.Append(testRecord("https://news.example/c", scraper.StatusSuccess)))
		// no flush after c: simulate an interrupt here

		second, err := New(out, 2, nil)
		require.NoError(t, err)
		records, processed, err := second.Load()
		require.NoError(t, err)
		require.Len(t, records, 2)
		require.Contains(t, processed, "https://news.example/a")
		require.Contains(t, processed, "https://news.example/b")
		require.NotContains(t, processed, "https://news.example/c")
	})
}

func TestStore_Finalize(t *testing.T) {
	t.Run("writes output and removes the checkpoint", func(t *testing.T) {
		dir := t.TempDir()
		out := filepath.Join(dir, "out.csv")

		s, err := New(out, 100, nil)
		require.NoError(t, err)
		require.NoError(t, s.Append(testRecord("https://news.example/a", scraper.StatusSuccess)))
		require.NoError(t, s.Finalize())

		require.FileExists(t, out)
		require.NoFileExists(t, CheckpointPath(out))

		// A finished run leaves nothing to resume from.
		next, err := New(out, 100, nil)
		require.NoError(t, err)
		records, processed, err := next.Load()
		require.NoError(t, err)
		require.Empty(t, records)
		require.Empty(t, processed)
	})

	t.Run("finalize with no records writes a header-only file", func(t *testing.T) {
		dir := t.TempDir()
		out := filepath.Join(dir, "out.csv")

		s, err := New(out, 100, nil)
		require.NoError(t, err)
		require.NoError(t, s.Finalize())

		require.FileExists(t, out)
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		require.Contains(t, string(data), "url,status,domain,scraped_at")
	})

	t.Run("creates missing output directories", func(t *testing.T) {
		dir := t.TempDir()
		out := filepath.Join(dir, "nested", "deeper", "out.csv")

		s, err := New(out, 100, nil)
		require.NoError(t, err)
		require.NoError(t, s.Append(testRecord("https://news.example/a", scraper.StatusSuccess)))
		require.NoError(t, s.Finalize())

		require.FileExists(t, out)
	})
}

func TestStore_Records(t *testing.T) {
	t.Run("returns an independent copy", func(t *testing.T) {
		s, err := New(filepath.Join(t.TempDir(), "out.csv"), 100, nil)
		require.NoError(t, err)
		require.NoError(t, s.Append(testRecord("https://news.example/a", scraper.StatusSuccess)))

		records := s.Records()
		require.Len(t, records, 1)
		records[0].URL = "mutated"

		require.Equal(t, "https://news.example/a", s.Records()[0].URL)
	})
}
