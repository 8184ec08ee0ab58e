package tabular

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// File is a format-specific reader bound to one file on disk. Every call goes
// back to storage unless a RowCache is attached.
type File interface {
	Path() string
	ReadAll() (*Table, error)
	Columns() ([]string, error)
	DistinctValues(column string) (mapset.Set[Value], error)
	Filter(spec FilterSpec, comb Combinator) (*Table, error)
}

type fileBase struct {
	path  string
	cache *RowCache
}

func (b fileBase) Path() string { return b.path }

func (b fileBase) load(decode func() (*Table, error)) (*Table, error) {
	if b.cache == nil {
		return decode()
	}
	return b.cache.Load(b.path, decode)
}
