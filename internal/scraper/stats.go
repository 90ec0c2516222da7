package scraper

// DomainStats counts terminal outcomes for a single domain.
type DomainStats struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// RunStats aggregates outcomes across one run. Total is the number of URLs
// the run set out to process after resume filtering, so Processed() < Total
// means the run was interrupted.
type RunStats struct {
	Total    int                    `json:"total"`
	Success  int                    `json:"success"`
	Failed   int                    `json:"failed"`
	Skipped  int                    `json:"skipped"`
	ByDomain map[string]DomainStats `json:"by_domain"`
}

// NewRunStats returns empty counters for a run over total URLs.
func NewRunStats(total int) RunStats {
	return RunStats{Total: total, ByDomain: make(map[string]DomainStats)}
}

// Observe folds one record into the counters.
func (s *RunStats) Observe(rec Record) {
	if s.ByDomain == nil {
		s.ByDomain = make(map[string]DomainStats)
	}
	d := s.ByDomain[rec.Domain]
	switch rec.Status {
	case StatusSuccess:
		s.Success++
		d.Success++
	case StatusFailed:
		s.Failed++
		d.Failed++
	case StatusSkipped:
		s.Skipped++
		d.Skipped++
	default:
		return
	}
	s.ByDomain[rec.Domain] = d
}

// Processed returns how many URLs reached a terminal status.
func (s RunStats) Processed() int {
	return s.Success + s.Failed + s.Skipped
}

func (s RunStats) clone() RunStats {
	out := s
	out.ByDomain = make(map[string]DomainStats, len(s.ByDomain))
	for domain, counts := range s.ByDomain {
		out.ByDomain[domain] = counts
	}
	return out
}
