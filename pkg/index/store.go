package index

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"schematch/pkg/models"
)

// PathStore is the persisted flat list of absolute file paths known under
// the configured reference root. Placement and update operations append to
// it incrementally after each copy; concurrent appenders from separate
// operations are serialized by an in-process mutex plus a cross-process
// file lock. Every write is a full read-modify-write replaced atomically
// via temp file and rename, so a reader never observes a partial list.
type PathStore struct {
	path string

	mu   sync.Mutex
	lock *flock.Flock
}

// NewPathStore creates a store backed by the given JSON file. The file is
// created on first write.
func NewPathStore(path string) *PathStore {
	return &PathStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the backing file path.
func (s *PathStore) Path() string {
	return s.path
}

// Load returns the current path list. A missing or corrupt file yields an
// empty list, not an error: the store is a cache that can always be rebuilt.
func (s *PathStore) Load() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return nil, fmt.Errorf("failed to acquire index lock: %w", err)
	}
	defer s.lock.Unlock()

	return s.read()
}

// Add ensures a single absolute path exists in the list. Returns true if
// the path was appended, false if it was already present.
func (s *PathStore) Add(path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return false, fmt.Errorf("failed to acquire index lock: %w", err)
	}
	defer s.lock.Unlock()

	paths, err := s.read()
	if err != nil {
		return false, err
	}

	for _, p := range paths {
		if p == abs {
			return false, nil
		}
	}

	paths = append(paths, abs)
	if err := s.write(paths); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes a single path from the list, including any duplicates.
// Returns true if at least one occurrence was removed.
func (s *PathStore) Remove(path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return false, fmt.Errorf("failed to acquire index lock: %w", err)
	}
	defer s.lock.Unlock()

	paths, err := s.read()
	if err != nil {
		return false, err
	}

	kept := paths[:0]
	removed := false
	for _, p := range paths {
		if p == abs {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	if !removed {
		return false, nil
	}
	if err := s.write(kept); err != nil {
		return false, err
	}
	return true, nil
}

// Rebuild replaces the whole list with every file found under root,
// checking for cancellation between directories. The partial walk result
// is discarded on cancellation; the old list stays in place.
func (s *PathStore) Rebuild(ctx context.Context, root string, onProgress ProgressFunc) (int, error) {
	resolvedRoot, err := resolveDir(root)
	if err != nil {
		return 0, &models.InputError{Field: "root", Message: err.Error()}
	}

	var paths []string
	err = filepath.WalkDir(resolvedRoot, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.IsDir() {
			return nil
		}
		paths = append(paths, p)
		if onProgress != nil && len(paths)%2000 == 0 {
			onProgress(len(paths))
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to walk root: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return 0, fmt.Errorf("failed to acquire index lock: %w", err)
	}
	defer s.lock.Unlock()

	if err := s.write(paths); err != nil {
		return 0, err
	}
	return len(paths), nil
}

func (s *PathStore) read() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read index file: %w", err)
	}

	var paths []string
	if err := json.Unmarshal(data, &paths); err != nil {
		// Corrupt index is treated as empty; the next write repairs it.
		return nil, nil
	}
	return paths, nil
}

func (s *PathStore) write(paths []string) error {
	if paths == nil {
		paths = []string{}
	}
	data, err := json.Marshal(paths)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".index-*")
	if err != nil {
		return fmt.Errorf("failed to create temp index file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp index file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp index file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize index file: %w", err)
	}
	return nil
}
