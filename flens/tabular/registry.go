package tabular

import (
	"path/filepath"
	"sort"
	"strings"
)

// Constructor builds the File variant for one path.
type Constructor func(path string, cache *RowCache) File

// Registry maps file extensions to the File variant able to read them.
// Registration happens at start-up; lookups are read-only afterwards.
type Registry struct {
	constructors map[string]Constructor
	cache        *RowCache
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithRowCache makes every File opened through the registry share c.
func WithRowCache(c *RowCache) RegistryOption {
	return func(r *Registry) {
		r.cache = c
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{constructors: make(map[string]Constructor)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefaultRegistry knows .csv, .tsv and .parquet.
func DefaultRegistry(opts ...RegistryOption) *Registry {
	r := NewRegistry(opts...)
	r.Register(".csv", NewCSVFile)
	r.Register(".tsv", NewTSVFile)
	r.Register(".parquet", NewParquetFile)
	return r
}

// Register binds ext (case-insensitive, leading dot optional) to c.
func (r *Registry) Register(ext string, c Constructor) {
	r.constructors[normalizeExt(ext)] = c
}

// Resolve finds the constructor for ext or reports UnsupportedFormatError.
func (r *Registry) Resolve(name, ext, path string) (Constructor, error) {
	if c, ok := r.constructors[normalizeExt(ext)]; ok && ext != "" {
		return c, nil
	}
	return nil, &UnsupportedFormatError{FileName: name, Extension: ext, Path: path}
}

// Open resolves path by its extension and builds the File.
func (r *Registry) Open(path string) (File, error) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	c, err := r.Resolve(strings.TrimSuffix(base, ext), ext, path)
	if err != nil {
		return nil, err
	}
	return c(path, r.cache), nil
}

// Cache returns the row cache shared by opened files, if any.
func (r *Registry) Cache() *RowCache {
	return r.cache
}

// Extensions lists the registered extensions in order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.constructors))
	for ext := range r.constructors {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
