package experiment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var (
	// ErrNotFound is returned when no output for the given run / name pair
	// exists in the underlying store.
	ErrNotFound = fmt.Errorf("output not found")
)

// OutputStore persists the named outputs of experiment runs (transcripts,
// analyses, reports).
type OutputStore interface {
	// Save stores (or overwrites) the output bytes for the given run and name.
	Save(runID, name string, data []byte) error
	// Get returns the stored output bytes or ErrNotFound.
	Get(runID, name string) ([]byte, error)
	// List returns the output names stored for the run.
	List(runID string) ([]string, error)
}

// MemoryStore is a trivial in-process OutputStore implementation useful for
// tests, examples and single-process prototypes. It keeps all outputs in a
// nested map guarded by an RWMutex. Data is copied on save / retrieval to
// avoid accidental external mutation of internal buffers.
//
// Layout: runID -> name -> raw bytes
type MemoryStore struct {
	mu      sync.RWMutex
	outputs map[string]map[string][]byte // runID -> name -> data
}

// NewMemoryStore returns an empty in-memory output store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{outputs: make(map[string]map[string][]byte)}
}

// Save stores (or overwrites) the output bytes for the given run and name.
// The input slice is copied before storage.
func (s *MemoryStore) Save(runID, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.outputs[runID]; !exists {
		s.outputs[runID] = make(map[string][]byte)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	s.outputs[runID][name] = cp
	return nil
}

// Get returns a copy of the stored output bytes or ErrNotFound.
func (s *MemoryStore) Get(runID, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.outputs[runID]
	if !ok {
		return nil, ErrNotFound
	}
	data, ok := m[name]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// List returns the output names stored for the run. The slice is a
// snapshot and safe for caller mutation.
func (s *MemoryStore) List(runID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.outputs[runID]
	if !ok {
		return []string{}, nil
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	return names, nil
}

// DirStore is a durable OutputStore that writes each output below
// root/<runID>/<name>, creating run directories on demand.
type DirStore struct {
	root string
}

// NewDirStore returns a store rooted at the given directory.
func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

// Root returns the directory the store writes below.
func (s *DirStore) Root() string {
	return s.root
}

// Save writes the output bytes to root/<runID>/<name>.
func (s *DirStore) Save(runID, name string, data []byte) error {
	dir := filepath.Join(s.root, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create run dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Get returns the stored output bytes or ErrNotFound.
func (s *DirStore) Get(runID, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.root, runID, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read output: %w", err)
	}
	return data, nil
}

// List returns the output names stored for the run, in directory order.
func (s *DirStore) List(runID string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, runID))
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list outputs: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}
