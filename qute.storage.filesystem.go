package qute

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FilesystemStorage keeps template sources as plain files below a root
// directory. The id "mail/welcome" maps to <root>/mail/welcome.html, trying
// each configured suffix in order; an id that already carries a suffix maps
// to that file directly.
//
// Files carry no history: Version is always 1 and UpdatedAt is the file
// modification time. Metadata is not persisted.
type FilesystemStorage struct {
	mu       sync.RWMutex
	root     string
	suffixes []string
	closed   bool
}

// Filesystem storage error messages
const (
	ErrMsgInvalidStorageRoot    = "storage root directory is required"
	ErrMsgCreateStorageDir      = "failed to create storage directory"
	ErrMsgReadTemplateFile      = "failed to read template file"
	ErrMsgWriteTemplateFile     = "failed to write template file"
	ErrMsgPathTraversalDetected = "path traversal detected in template id"
)

// FilesystemStorageDriver is the driver for creating FilesystemStorage instances.
type FilesystemStorageDriver struct{}

func init() {
	RegisterStorageDriver(StorageDriverNameFilesystem, &FilesystemStorageDriver{})
}

// Open creates a FilesystemStorage. The connection string is the root directory.
func (d *FilesystemStorageDriver) Open(connectionString string) (TemplateStorage, error) {
	return NewFilesystemStorage(connectionString)
}

// NewFilesystemStorage creates a storage rooted at root, creating the
// directory if needed. Without suffixes DefaultTemplateSuffixes apply.
func NewFilesystemStorage(root string, suffixes ...string) (*FilesystemStorage, error) {
	if root == "" {
		return nil, &StorageError{Message: ErrMsgInvalidStorageRoot}
	}
	if err := os.MkdirAll(root, FilesystemDirPermissions); err != nil {
		return nil, &StorageError{Message: ErrMsgCreateStorageDir, ID: root, Cause: err}
	}
	if len(suffixes) == 0 {
		suffixes = DefaultTemplateSuffixes
	}
	return &FilesystemStorage{root: root, suffixes: suffixes}, nil
}

// Root returns the root directory.
func (s *FilesystemStorage) Root() string {
	return s.root
}

// Get implements TemplateStorage.
func (s *FilesystemStorage) Get(ctx context.Context, id string) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateTemplateID(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	file, info, err := s.find(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, &StorageError{Message: ErrMsgReadTemplateFile, ID: id, Cause: err}
	}
	return &StoredTemplate{
		ID:        id,
		Source:    string(data),
		Version:   1,
		UpdatedAt: info.ModTime(),
	}, nil
}

// Save implements TemplateStorage. An existing file for id is overwritten.
func (s *FilesystemStorage) Save(ctx context.Context, tmpl *StoredTemplate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateTemplateID(tmpl.ID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	file, _, err := s.find(tmpl.ID)
	if err != nil {
		if !IsStorageNotFound(err) {
			return err
		}
		file = s.path(tmpl.ID)
		if !s.hasSuffix(tmpl.ID) {
			file += s.suffixes[0]
		}
	}

	if err := os.MkdirAll(filepath.Dir(file), FilesystemDirPermissions); err != nil {
		return &StorageError{Message: ErrMsgCreateStorageDir, ID: tmpl.ID, Cause: err}
	}
	if err := os.WriteFile(file, []byte(tmpl.Source), FilesystemFilePermissions); err != nil {
		return &StorageError{Message: ErrMsgWriteTemplateFile, ID: tmpl.ID, Cause: err}
	}

	tmpl.Version = 1
	tmpl.UpdatedAt = time.Now()
	return nil
}

// Delete implements TemplateStorage.
func (s *FilesystemStorage) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateTemplateID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	file, _, err := s.find(id)
	if err != nil {
		return err
	}
	if err := os.Remove(file); err != nil {
		return &StorageError{Message: ErrMsgWriteTemplateFile, ID: id, Cause: err}
	}
	return nil
}

// List implements TemplateStorage. Ids are slash separated paths relative
// to the root, without suffix.
func (s *FilesystemStorage) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	seen := make(map[string]bool)
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		for _, suffix := range s.suffixes {
			if strings.HasSuffix(rel, suffix) {
				seen[strings.TrimSuffix(rel, suffix)] = true
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, &StorageError{Message: ErrMsgReadTemplateFile, ID: s.root, Cause: err}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ModTime implements ModTimeSource with the file modification time.
func (s *FilesystemStorage) ModTime(ctx context.Context, id string) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	if err := validateTemplateID(id); err != nil {
		return time.Time{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return time.Time{}, NewStorageClosedError()
	}
	_, info, err := s.find(id)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// Close implements TemplateStorage.
func (s *FilesystemStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// find returns the file backing id. Callers hold the lock.
func (s *FilesystemStorage) find(id string) (string, os.FileInfo, error) {
	base := s.path(id)
	candidates := []string{base}
	if !s.hasSuffix(id) {
		candidates = candidates[:0]
		for _, suffix := range s.suffixes {
			candidates = append(candidates, base+suffix)
		}
	}

	for _, file := range candidates {
		info, err := os.Stat(file)
		if err == nil && !info.IsDir() {
			return file, info, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", nil, &StorageError{Message: ErrMsgReadTemplateFile, ID: id, Cause: err}
		}
	}
	return "", nil, NewTemplateNotFoundError(id)
}

func (s *FilesystemStorage) path(id string) string {
	return filepath.Join(s.root, filepath.FromSlash(id))
}

func (s *FilesystemStorage) hasSuffix(id string) bool {
	ext := path.Ext(id)
	for _, suffix := range s.suffixes {
		if ext == suffix {
			return true
		}
	}
	return false
}

// validateTemplateID rejects ids that could escape the storage root.
func validateTemplateID(id string) error {
	if id == "" {
		return NewInvalidTemplateIDError(id)
	}
	if strings.HasPrefix(id, "/") || strings.ContainsAny(id, "\\:*?\"<>|") {
		return NewInvalidTemplateIDError(id)
	}
	for _, seg := range strings.Split(id, "/") {
		if seg == ".." {
			return &StorageError{Message: ErrMsgPathTraversalDetected, ID: id}
		}
		if seg == "" || seg == "." {
			return NewInvalidTemplateIDError(id)
		}
	}
	return nil
}
