package sections

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
)

// FileStore keeps sections in a JSON array on disk. Writes go to a temp
// file that is renamed over the original.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file-backed store at path. The file is created on
// first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

// List returns all sections in display order.
func (f *FileStore) List(_ context.Context) ([]*storage.ReportSection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

// Get returns one section.
func (f *FileStore) Get(_ context.Context, id int64) (*storage.ReportSection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.load()
	if err != nil {
		return nil, err
	}
	for _, s := range all {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, notFound(id)
}

// Create validates s, assigns the next ID and appends it.
func (f *FileStore) Create(_ context.Context, s *storage.ReportSection) error {
	if err := Validate(s); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.load()
	if err != nil {
		return err
	}
	var maxID int64
	for _, existing := range all {
		if existing.SectionKey == s.SectionKey {
			return duplicateKey(s.SectionKey)
		}
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}

	now := time.Now().UTC()
	s.ID = maxID + 1
	s.CreatedAt, s.UpdatedAt = now, now
	return f.save(append(all, s))
}

// Update validates and replaces the section with s.ID.
func (f *FileStore) Update(_ context.Context, s *storage.ReportSection) error {
	if err := Validate(s); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.load()
	if err != nil {
		return err
	}
	idx := -1
	for i, existing := range all {
		if existing.SectionKey == s.SectionKey && existing.ID != s.ID {
			return duplicateKey(s.SectionKey)
		}
		if existing.ID == s.ID {
			idx = i
		}
	}
	if idx < 0 {
		return notFound(s.ID)
	}

	s.CreatedAt = all[idx].CreatedAt
	s.UpdatedAt = time.Now().UTC()
	all[idx] = s
	return f.save(all)
}

// Delete removes the section with id.
func (f *FileStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.load()
	if err != nil {
		return err
	}
	for i, s := range all {
		if s.ID == id {
			return f.save(append(all[:i], all[i+1:]...))
		}
	}
	return notFound(id)
}

func (f *FileStore) load() ([]*storage.ReportSection, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return []*storage.ReportSection{}, nil
	}
	if err != nil {
		return nil, domain.PersistenceError("failed to read sections file", err)
	}

	var all []*storage.ReportSection
	if len(data) > 0 {
		if err := json.Unmarshal(data, &all); err != nil {
			return nil, domain.PersistenceError("sections file is corrupt", err)
		}
	}
	for _, s := range all {
		if err := s.DataSources.Validate(); err != nil {
			return nil, domain.PersistenceError(fmt.Sprintf("section %q has invalid data_sources", s.SectionKey), err)
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].DisplayOrder != all[j].DisplayOrder {
			return all[i].DisplayOrder < all[j].DisplayOrder
		}
		return all[i].ID < all[j].ID
	})
	if all == nil {
		all = []*storage.ReportSection{}
	}
	return all, nil
}

func (f *FileStore) save(all []*storage.ReportSection) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return domain.PersistenceError("failed to encode sections", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.PersistenceError("failed to create sections directory", err)
	}
	tmp, err := os.CreateTemp(dir, ".sections-*.json")
	if err != nil {
		return domain.PersistenceError("failed to write sections file", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return domain.PersistenceError("failed to write sections file", err)
	}
	if err := tmp.Close(); err != nil {
		return domain.PersistenceError("failed to write sections file", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return domain.PersistenceError("failed to replace sections file", err)
	}
	return nil
}
