package qute

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// CachedStorage wraps any TemplateStorage with an in-memory cache of Get
// results, bounded by TTL and entry count. Not-found results are cached
// separately for NegativeCacheTTL.
type CachedStorage struct {
	storage TemplateStorage
	config  CacheConfig
	logger  *zap.Logger

	mu     sync.RWMutex
	cache  map[string]*cacheEntry
	closed bool
}

// CacheConfig configures the caching behavior.
type CacheConfig struct {
	// TTL is how long cached entries remain valid.
	// Default: 5 minutes.
	TTL time.Duration `yaml:"ttl"`

	// MaxEntries is the maximum number of cached templates. The least
	// recently accessed entry is evicted when it is exceeded.
	// Default: 1000.
	MaxEntries int `yaml:"max_entries"`

	// NegativeCacheTTL is how long "not found" results are cached.
	// Set to 0 to disable negative caching.
	// Default: 30 seconds.
	NegativeCacheTTL time.Duration `yaml:"negative_ttl"`
}

// DefaultCacheConfig returns the default caching configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:              DefaultCacheTTL,
		MaxEntries:       DefaultCacheMaxEntries,
		NegativeCacheTTL: DefaultNegativeCacheTTL,
	}
}

type cacheEntry struct {
	template   *StoredTemplate
	notFound   bool
	cachedAt   time.Time
	accessedAt atomic.Int64 // unix nanos
	key        string
}

// NewCachedStorage wraps a storage with caching. A nil logger disables logging.
func NewCachedStorage(storage TemplateStorage, config CacheConfig, logger *zap.Logger) *CachedStorage {
	if config.TTL == 0 {
		config.TTL = DefaultCacheTTL
	}
	if config.MaxEntries == 0 {
		config.MaxEntries = DefaultCacheMaxEntries
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedStorage{
		storage: storage,
		config:  config,
		logger:  logger,
		cache:   make(map[string]*cacheEntry),
	}
}

// Get implements TemplateStorage, serving from the cache when possible.
func (s *CachedStorage) Get(ctx context.Context, id string) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, NewStorageClosedError()
	}
	entry, ok := s.cache[id]
	if ok && s.isValid(entry) {
		entry.accessedAt.Store(time.Now().UnixNano())
		s.mu.RUnlock()

		s.logger.Debug(LogMsgStorageCacheHit, zap.String(LogFieldTemplateID, id))
		if entry.notFound {
			return nil, NewTemplateNotFoundError(id)
		}
		return copyStoredTemplate(entry.template), nil
	}
	s.mu.RUnlock()

	tmpl, err := s.storage.Get(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}
	if err != nil {
		if IsStorageNotFound(err) && s.config.NegativeCacheTTL > 0 {
			s.addEntry(id, nil, true)
		}
		return nil, err
	}
	s.addEntry(id, tmpl, false)
	return copyStoredTemplate(tmpl), nil
}

// Save implements TemplateStorage and invalidates the id.
func (s *CachedStorage) Save(ctx context.Context, tmpl *StoredTemplate) error {
	if err := s.storage.Save(ctx, tmpl); err != nil {
		return err
	}
	s.Invalidate(tmpl.ID)
	return nil
}

// Delete implements TemplateStorage and invalidates the id.
func (s *CachedStorage) Delete(ctx context.Context, id string) error {
	if err := s.storage.Delete(ctx, id); err != nil {
		return err
	}
	s.Invalidate(id)
	return nil
}

// List implements TemplateStorage. It bypasses the cache.
func (s *CachedStorage) List(ctx context.Context) ([]string, error) {
	return s.storage.List(ctx)
}

// ModTime forwards to the wrapped storage when it is a ModTimeSource.
func (s *CachedStorage) ModTime(ctx context.Context, id string) (time.Time, error) {
	if src, ok := s.storage.(ModTimeSource); ok {
		return src.ModTime(ctx, id)
	}
	tmpl, err := s.storage.Get(ctx, id)
	if err != nil {
		return time.Time{}, err
	}
	return tmpl.UpdatedAt, nil
}

// Close closes the cache and the wrapped storage.
func (s *CachedStorage) Close() error {
	s.mu.Lock()
	s.closed = true
	s.cache = nil
	s.mu.Unlock()
	return s.storage.Close()
}

// Invalidate removes an id from the cache.
func (s *CachedStorage) Invalidate(id string) {
	s.mu.Lock()
	delete(s.cache, id)
	s.mu.Unlock()
}

// InvalidateAll clears the cache.
func (s *CachedStorage) InvalidateAll() {
	s.mu.Lock()
	s.cache = make(map[string]*cacheEntry)
	s.mu.Unlock()
}

// CacheStats contains cache statistics.
type CacheStats struct {
	Entries         int
	ValidEntries    int
	NegativeEntries int
}

// Stats returns cache statistics.
func (s *CachedStorage) Stats() CacheStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := CacheStats{Entries: len(s.cache)}
	for _, entry := range s.cache {
		if !s.isValid(entry) {
			continue
		}
		if entry.notFound {
			stats.NegativeEntries++
		} else {
			stats.ValidEntries++
		}
	}
	return stats
}

func (s *CachedStorage) isValid(entry *cacheEntry) bool {
	ttl := s.config.TTL
	if entry.notFound {
		ttl = s.config.NegativeCacheTTL
	}
	return time.Since(entry.cachedAt) < ttl
}

// addEntry caches a result, evicting the least recently accessed entry when
// full. Caller must hold the write lock.
func (s *CachedStorage) addEntry(id string, tmpl *StoredTemplate, notFound bool) {
	if _, exists := s.cache[id]; !exists && len(s.cache) >= s.config.MaxEntries {
		s.evictOldest()
	}

	now := time.Now()
	entry := &cacheEntry{
		template: tmpl,
		notFound: notFound,
		cachedAt: now,
		key:      id,
	}
	entry.accessedAt.Store(now.UnixNano())
	s.cache[id] = entry
}

// evictOldest removes the least recently accessed entry. Caller must hold
// the write lock.
func (s *CachedStorage) evictOldest() {
	var oldest *cacheEntry
	for _, entry := range s.cache {
		if oldest == nil || entry.accessedAt.Load() < oldest.accessedAt.Load() {
			oldest = entry
		}
	}
	if oldest != nil {
		delete(s.cache, oldest.key)
		s.logger.Debug(LogMsgStorageCacheEvicted, zap.String(LogFieldTemplateID, oldest.key))
	}
}
