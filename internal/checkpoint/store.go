// Package checkpoint persists pipeline records to CSV with periodic
// sidecar checkpoints, letting an interrupted run resume from the last
// flush instead of starting over.
package checkpoint

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"newsharvest/internal/metrics"
	"newsharvest/internal/scraper"
)

// DefaultInterval is the number of appended records between checkpoint
// writes.
const DefaultInterval = 100

// Store accumulates records in memory and mirrors them to a sidecar
// checkpoint file every interval appends. Finalize promotes the full record
// set to the output path and then removes the sidecar, so a checkpoint on
// disk always means an unfinished run.
type Store struct {
	outputPath     string
	checkpointPath string
	interval       int
	log            *zap.Logger

	mu       sync.Mutex
	records  []scraper.Record
	appended int
}

// New creates a store writing to outputPath. A non-positive interval falls
// back to DefaultInterval; the logger may be nil.
func New(outputPath string, interval int, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(outputPath) == "" {
		return nil, errors.New("checkpoint: output path is empty")
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		outputPath:     outputPath,
		checkpointPath: CheckpointPath(outputPath),
		interval:       interval,
		log:            logger,
	}, nil
}

// CheckpointPath derives the sidecar path for an output file, for example
// scraped.csv becomes scraped_checkpoint.csv.
func CheckpointPath(outputPath string) string {
	ext := filepath.Ext(outputPath)
	return strings.TrimSuffix(outputPath, ext) + "_checkpoint" + ext
}

// OutputPath returns the final output destination.
func (s *Store) OutputPath() string {
	return s.outputPath
}

// Load reads the sidecar checkpoint if one exists and returns its records
// plus the set of URLs they cover. A missing or empty checkpoint yields no
// records and no error.
func (s *Store) Load() ([]scraper.Record, map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.checkpointPath)
	if err != nil {
		if os.IsNotExist(err) {
			s.records = nil
			return nil, map[string]struct{}{}, nil
		}
		return nil, nil, fmt.Errorf("open checkpoint %s: %w", s.checkpointPath, err)
	}
	defer f.Close()

	var records []scraper.Record
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			s.records = nil
			return nil, map[string]struct{}{}, nil
		}
		return nil, nil, fmt.Errorf("decode checkpoint %s: %w", s.checkpointPath, err)
	}

	s.records = records
	processed := make(map[string]struct{}, len(records))
	for _, rec := range records {
		processed[rec.URL] = struct{}{}
	}

	s.log.Info("loaded checkpoint",
		zap.String("path", s.checkpointPath),
		zap.Int("records", len(records)),
	)
	metrics.SetCheckpointRecords(len(records))
	return records, processed, nil
}

// Append adds one record and flushes the checkpoint when the configured
// interval of new records is reached.
func (s *Store) Append(rec scraper.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	s.appended++
	metrics.SetCheckpointRecords(len(s.records))

	if s.appended%s.interval == 0 {
		return s.flushLocked()
	}
	return nil
}

// Flush writes every record to the sidecar checkpoint regardless of the
// interval.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

// Finalize flushes the checkpoint one last time, writes the full record set
// to the output path, and removes the sidecar. The checkpoint is deleted
// only after the output write succeeds.
func (s *Store) Finalize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.flushLocked(); err != nil {
		return err
	}
	if err := s.writeAtomic(s.outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", s.outputPath, err)
	}
	s.log.Info("final output saved",
		zap.String("path", s.outputPath),
		zap.Int("records", len(s.records)),
	)
	if err := os.Remove(s.checkpointPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove checkpoint %s: %w", s.checkpointPath, err)
	}
	return nil
}

// Records returns a copy of everything loaded or appended so far.
func (s *Store) Records() []scraper.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]scraper.Record, len(s.records))
	copy(out, s.records)
	return out
}

func (s *Store) flushLocked() error {
	if err := s.writeAtomic(s.checkpointPath); err != nil {
		return fmt.Errorf("write checkpoint %s: %w", s.checkpointPath, err)
	}
	metrics.ObserveCheckpointFlush()
	s.log.Info("checkpoint saved",
		zap.String("path", s.checkpointPath),
		zap.Int("records", len(s.records)),
	)
	return nil
}

// writeAtomic marshals the records to a temp file in the destination
// directory and renames it into place, so readers never see a torn file.
func (s *Store) writeAtomic(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := gocsv.MarshalFile(&s.records, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
