package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"claimpilot/internal/model"
)

const recordFileName = "claim.json"

// DiskStore persists one JSON file per claim under a root directory, with an
// in-memory read-through cache in front of Get.
type DiskStore struct {
	dir   string
	cache *gocache.Cache
}

// NewDiskStore creates the root directory if needed and returns a disk store.
func NewDiskStore(dir string, cacheTTL time.Duration) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create claim storage dir: %w", err)
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DiskStore{
		dir:   dir,
		cache: gocache.New(cacheTTL, 2*cacheTTL),
	}, nil
}

// Save writes the record to <dir>/<claim_id>/claim.json and refreshes the cache.
func (s *DiskStore) Save(_ context.Context, rec *model.ClaimRecord) error {
	claimDir := filepath.Join(s.dir, rec.ClaimID)
	if err := os.MkdirAll(claimDir, 0o755); err != nil {
		return fmt.Errorf("create claim dir: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal claim record: %w", err)
	}

	if err := os.WriteFile(filepath.Join(claimDir, recordFileName), data, 0o644); err != nil {
		return fmt.Errorf("write claim record: %w", err)
	}

	s.cache.Set(rec.ClaimID, rec, gocache.DefaultExpiration)
	return nil
}

// Get returns the cached record if present, otherwise reads it from disk.
func (s *DiskStore) Get(_ context.Context, claimID string) (*model.ClaimRecord, error) {
	if v, found := s.cache.Get(claimID); found {
		return v.(*model.ClaimRecord), nil
	}

	rec, err := s.read(filepath.Join(s.dir, claimID, recordFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.cache.Set(claimID, rec, gocache.DefaultExpiration)
	return rec, nil
}

// List walks the storage directory and returns every readable claim record.
func (s *DiskStore) List(_ context.Context) ([]*model.ClaimRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read claim storage dir: %w", err)
	}

	records := make([]*model.ClaimRecord, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		rec, err := s.read(filepath.Join(s.dir, e.Name(), recordFileName))
		if err != nil {
			// Skip partially-written or foreign directories.
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Close flushes the cache.
func (s *DiskStore) Close() error {
	s.cache.Flush()
	return nil
}

func (s *DiskStore) read(path string) (*model.ClaimRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec model.ClaimRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse claim record: %w", err)
	}
	return &rec, nil
}
