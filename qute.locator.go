package qute

import (
	"context"
	"sync"
)

// Locator finds template sources by id for Engine.GetTemplate. Locate
// returns false, without an error, when it has no template for id.
type Locator interface {
	Locate(ctx context.Context, id string) (string, bool, error)
}

// LocatorFunc adapts a function to the Locator interface.
type LocatorFunc func(ctx context.Context, id string) (string, bool, error)

// Locate implements Locator.
func (f LocatorFunc) Locate(ctx context.Context, id string) (string, bool, error) {
	return f(ctx, id)
}

// StorageLocator locates templates in a storage backend.
type StorageLocator struct {
	storage TemplateStorage
}

// NewStorageLocator creates a locator reading from storage.
func NewStorageLocator(storage TemplateStorage) *StorageLocator {
	return &StorageLocator{storage: storage}
}

// Name returns the locator name used in logs.
func (l *StorageLocator) Name() string {
	return ResolverNameStorage
}

// Storage returns the underlying storage.
func (l *StorageLocator) Storage() TemplateStorage {
	return l.storage
}

// Locate implements Locator. A missing template is not an error.
func (l *StorageLocator) Locate(ctx context.Context, id string) (string, bool, error) {
	tmpl, err := l.storage.Get(ctx, id)
	if err != nil {
		if IsStorageNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return tmpl.Source, true, nil
}

// MapLocator serves templates from a fixed set of sources.
type MapLocator struct {
	mu      sync.RWMutex
	sources map[string]string
}

// NewMapLocator creates a locator over a copy of sources.
func NewMapLocator(sources map[string]string) *MapLocator {
	l := &MapLocator{sources: make(map[string]string, len(sources))}
	for id, src := range sources {
		l.sources[id] = src
	}
	return l
}

// Set adds or replaces a source.
func (l *MapLocator) Set(id, source string) {
	l.mu.Lock()
	l.sources[id] = source
	l.mu.Unlock()
}

// Locate implements Locator.
func (l *MapLocator) Locate(_ context.Context, id string) (string, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	src, ok := l.sources[id]
	return src, ok, nil
}
