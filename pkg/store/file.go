package store

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/netforce/pkg/errors"
	"github.com/matzehuels/netforce/pkg/graph"
)

const backendFile = "file"

// FileStore keeps each snapshot in <dir>/<id>.json.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based store rooted at baseDir.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "store directory is empty")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) snapshotPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

// Get reads the snapshot with the given ID.
func (s *FileStore) Get(ctx context.Context, id string) (snap *graph.Snapshot, err error) {
	defer func(start time.Time) { observe(ctx, backendFile, "get", start, err) }(time.Now())

	if err := errors.ValidateSnapshotID(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.snapshotPath(id))
	if os.IsNotExist(err) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", id, err)
	}
	defer f.Close()

	snap, err = graph.ReadSnapshot(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read snapshot %s", id)
	}
	return snap, nil
}

// Put writes snap to disk atomically.
func (s *FileStore) Put(ctx context.Context, snap *graph.Snapshot) (err error) {
	defer func(start time.Time) { observe(ctx, backendFile, "put", start, err) }(time.Now())

	if err := checkPut(snap); err != nil {
		return err
	}
	data, err := graph.MarshalSnapshot(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.snapshotPath(snap.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write snapshot file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write snapshot file: %w", err)
	}
	return nil
}

// Delete removes the snapshot file.
func (s *FileStore) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { observe(ctx, backendFile, "delete", start, err) }(time.Now())

	if err := errors.ValidateSnapshotID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.snapshotPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove snapshot file: %w", err)
	}
	return nil
}

// List summarizes every readable snapshot. Files that fail to parse are
// skipped.
func (s *FileStore) List(ctx context.Context) (out []graph.Summary, err error) {
	defer func(start time.Time) { observe(ctx, backendFile, "list", start, err) }(time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}
	out = []graph.Summary{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		if errors.ValidateSnapshotID(strings.TrimSuffix(name, ".json")) != nil {
			continue
		}
		snap, err := graph.ReadSnapshotFile(filepath.Join(s.baseDir, name))
		if err != nil {
			continue
		}
		out = append(out, snap.Summarize())
	}
	sortSummaries(out)
	return out, nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

// Path returns the base directory for snapshot files.
func (s *FileStore) Path() string {
	return s.baseDir
}

// sortSummaries orders newest first, then by ID.
func sortSummaries(s []graph.Summary) {
	slices.SortFunc(s, func(a, b graph.Summary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

var _ Store = (*FileStore)(nil)
