package qute

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStorage is an in-memory TemplateStorage, mainly for tests and
// development. All data is lost when the process terminates.
type MemoryStorage struct {
	mu        sync.RWMutex
	templates map[string]*StoredTemplate
	closed    bool
}

// MemoryStorageDriver is the driver for creating MemoryStorage instances.
type MemoryStorageDriver struct{}

func init() {
	RegisterStorageDriver(StorageDriverNameMemory, &MemoryStorageDriver{})
}

// Open creates a new MemoryStorage. The connection string is ignored.
func (d *MemoryStorageDriver) Open(string) (TemplateStorage, error) {
	return NewMemoryStorage(), nil
}

// NewMemoryStorage creates a new in-memory template storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{templates: make(map[string]*StoredTemplate)}
}

// Get implements TemplateStorage.
func (s *MemoryStorage) Get(ctx context.Context, id string) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}
	tmpl, ok := s.templates[id]
	if !ok {
		return nil, NewTemplateNotFoundError(id)
	}
	return copyStoredTemplate(tmpl), nil
}

// Save implements TemplateStorage.
func (s *MemoryStorage) Save(ctx context.Context, tmpl *StoredTemplate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if tmpl.ID == "" {
		return NewInvalidTemplateIDError(tmpl.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	version := 1
	if prev, ok := s.templates[tmpl.ID]; ok {
		version = prev.Version + 1
	}
	tmpl.Version = version
	tmpl.UpdatedAt = time.Now()
	s.templates[tmpl.ID] = copyStoredTemplate(tmpl)
	return nil
}

// Delete implements TemplateStorage.
func (s *MemoryStorage) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}
	if _, ok := s.templates[id]; !ok {
		return NewTemplateNotFoundError(id)
	}
	delete(s.templates, id)
	return nil
}

// List implements TemplateStorage.
func (s *MemoryStorage) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}
	ids := make([]string, 0, len(s.templates))
	for id := range s.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ModTime implements ModTimeSource with the time of the last Save.
func (s *MemoryStorage) ModTime(ctx context.Context, id string) (time.Time, error) {
	tmpl, err := s.Get(ctx, id)
	if err != nil {
		return time.Time{}, err
	}
	return tmpl.UpdatedAt, nil
}

// Close implements TemplateStorage.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.templates = nil
	return nil
}
