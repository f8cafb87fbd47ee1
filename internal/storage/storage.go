// Package storage persists scan history as JSON files, one per scan.
// A flat file per record keeps the history durable and trivially
// exportable; there is no database to corrupt or migrate.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/HueCodes/Scuttle/internal/errors"
	"github.com/HueCodes/Scuttle/internal/logging"
	"github.com/HueCodes/Scuttle/internal/scanning"
	"github.com/google/uuid"
)

const (
	storeDirPerm  = 0750
	storeFilePerm = 0600
)

// Record is a persisted scan: the report plus identity and timing.
type Record struct {
	// ID uniquely identifies the scan.
	ID string `json:"id"`
	// StartedAt is when the scan began.
	StartedAt time.Time `json:"started_at"`
	// CompletedAt is when the scan finished.
	CompletedAt time.Time `json:"completed_at"`

	scanning.Report
}

// NewRecord wraps a completed report into a record with a fresh ID.
func NewRecord(report *scanning.Report) *Record {
	now := time.Now().UTC()
	return &Record{
		ID:          uuid.NewString(),
		StartedAt:   now.Add(-time.Duration(report.DurationMs) * time.Millisecond),
		CompletedAt: now,
		Report:      *report,
	}
}

// ShortID returns the first eight characters of the record ID, enough
// to address a scan from the command line.
func (r *Record) ShortID() string {
	if len(r.ID) < 8 {
		return r.ID
	}
	return r.ID[:8]
}

// Store is a JSON file-based scan store rooted at a base directory.
type Store struct {
	scansDir string
}

// NewStore creates a store under baseDir, creating the scans directory
// if needed.
func NewStore(baseDir string) (*Store, error) {
	scansDir := filepath.Join(baseDir, "scans")
	if err := os.MkdirAll(scansDir, storeDirPerm); err != nil {
		return nil, errors.Wrap(errors.CodeStorage, "failed to create scan store directory", err)
	}
	return &Store{scansDir: scansDir}, nil
}

// DefaultBaseDir returns the per-user data directory for scuttle.
func DefaultBaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.CodeStorage, "failed to locate home directory", err)
	}
	return filepath.Join(home, ".scuttle"), nil
}

// Save writes a record to disk.
func (s *Store) Save(record *Record) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return errors.Wrap(errors.CodeStorage, "failed to encode scan record", err)
	}
	path := s.recordPath(record.ID)
	if err := os.WriteFile(path, data, storeFilePerm); err != nil {
		return errors.Wrap(errors.CodeStorage, "failed to save scan record", err)
	}
	logging.Debug("scan record saved", "id", record.ID, "path", path)
	return nil
}

// Load reads a record by its full ID.
func (s *Store) Load(id string) (*Record, error) {
	path := s.recordPath(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.CodeScanNotFound, "scan not found: %s", id)
		}
		return nil, errors.Wrap(errors.CodeStorage, "failed to read scan record", err)
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.Wrap(errors.CodeStorage, "failed to decode scan record", err)
	}
	return &record, nil
}

// FindByPrefix loads the unique record whose ID starts with prefix.
// Zero matches is a not-found error; multiple matches are reported as
// ambiguous so the caller can ask for a longer prefix.
func (s *Store) FindByPrefix(prefix string) (*Record, error) {
	ids, err := s.ListIDs()
	if err != nil {
		return nil, err
	}
	var matches []string
	for _, id := range ids {
		if strings.HasPrefix(id, prefix) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return nil, errors.Newf(errors.CodeScanNotFound, "scan not found: %s", prefix)
	case 1:
		return s.Load(matches[0])
	default:
		return nil, errors.Newf(errors.CodeStorage,
			"ambiguous scan ID prefix %q: %d matches", prefix, len(matches))
	}
}

// ListIDs returns all stored scan IDs.
func (s *Store) ListIDs() ([]string, error) {
	entries, err := os.ReadDir(s.scansDir)
	if err != nil {
		return nil, errors.Wrap(errors.CodeStorage, "failed to read scan store directory", err)
	}
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		if _, err := uuid.Parse(id); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// List returns all records sorted newest-first.
func (s *Store) List() ([]*Record, error) {
	ids, err := s.ListIDs()
	if err != nil {
		return nil, err
	}
	records := make([]*Record, 0, len(ids))
	for _, id := range ids {
		record, err := s.Load(id)
		if err != nil {
			logging.Warn("skipping unreadable scan record", "id", id, "error", err)
			continue
		}
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CompletedAt.After(records[j].CompletedAt)
	})
	return records, nil
}

// Delete removes a record by its full ID.
func (s *Store) Delete(id string) error {
	path := s.recordPath(id)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return errors.Newf(errors.CodeScanNotFound, "scan not found: %s", id)
		}
		return errors.Wrap(errors.CodeStorage, "failed to delete scan record", err)
	}
	return nil
}

// Prune deletes all but the newest keep records. Returns how many were
// removed.
func (s *Store) Prune(keep int) (int, error) {
	if keep < 0 {
		return 0, errors.Newf(errors.CodeValidation, "keep count must be non-negative, got %d", keep)
	}
	records, err := s.List()
	if err != nil {
		return 0, err
	}
	if len(records) <= keep {
		return 0, nil
	}
	removed := 0
	for _, record := range records[keep:] {
		if err := s.Delete(record.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (s *Store) recordPath(id string) string {
	return filepath.Join(s.scansDir, fmt.Sprintf("%s.json", id))
}
