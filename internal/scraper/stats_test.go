package scraper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunStats_Observe(t *testing.T) {
	t.Run("counts every status per domain", func(t *testing.T) {
		stats := NewRunStats(4)

		stats.Observe(Record{Domain: "news.example", Status: StatusSuccess})
		stats.Observe(Record{Domain: "news.example", Status: StatusFailed})
		stats.Observe(Record{Domain: "news.example", Status: StatusSkipped})
		stats.Observe(Record{Domain: "other.example", Status: StatusSuccess})

		require.Equal(t, 4, stats.Total)
		require.Equal(t, 2, stats.Success)
		require.Equal(t, 1, stats.Failed)
		require.Equal(t, 1, stats.Skipped)
		require.Equal(t, 4, stats.Processed())
		require.Equal(t, DomainStats{Success: 1, Failed: 1, Skipped: 1}, stats.ByDomain["news.example"])
		require.Equal(t, DomainStats{Success: 1}, stats.ByDomain["other.example"])
	})

	t.Run("pending records are not counted", func(t *testing.T) {
		stats := NewRunStats(1)
		stats.Observe(Record{Domain: "news.example", Status: StatusPending})

		require.Equal(t, 0, stats.Processed())
		require.Empty(t, stats.ByDomain)
	})

	t.Run("observe on zero value allocates the map", func(t *testing.T) {
		var stats RunStats
		stats.Observe(Record{Domain: "news.example", Status: StatusSuccess})
		require.Equal(t, 1, stats.ByDomain["news.example"].Success)
	})
}
