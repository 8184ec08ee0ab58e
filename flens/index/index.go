package index

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

// Index is an immutable snapshot of the indexed tree. Entries keep the
// filesystem walk order.
type Index struct {
	id      uuid.UUID
	root    string
	builtAt time.Time
	entries []Entry
	paths   *pathIndex
	skipped *multierror.Error
}

// ID identifies this snapshot; every build gets a fresh one.
func (idx *Index) ID() uuid.UUID { return idx.id }

// Root is the absolute directory the index was built from.
func (idx *Index) Root() string { return idx.root }

func (idx *Index) BuiltAt() time.Time { return idx.builtAt }

func (idx *Index) Len() int { return len(idx.entries) }

// Entries returns the indexed files in walk order.
func (idx *Index) Entries() []Entry {
	return slices.Clone(idx.entries)
}

// Descriptors returns the metadata of every indexed file in walk order.
func (idx *Index) Descriptors() []Descriptor {
	out := make([]Descriptor, len(idx.entries))
	for i, e := range idx.entries {
		out[i] = e.Descriptor
	}
	return out
}

// Lookup finds the entry whose path equals path once cleaned.
func (idx *Index) Lookup(path string) (Entry, bool) {
	pos, ok := idx.paths.lookup(path)
	if !ok {
		return Entry{}, false
	}
	return idx.entries[pos], true
}

// Under returns every entry below dir, in walk order.
func (idx *Index) Under(dir string) []Entry {
	positions := idx.paths.under(dir)
	out := make([]Entry, len(positions))
	for i, pos := range positions {
		out[i] = idx.entries[pos]
	}
	return out
}

// DirectoryKey is the root-relative parent directory of d.
func (idx *Index) DirectoryKey(d Descriptor) string {
	return DirectoryKey(idx.root, d.Dir)
}

// Skipped reports the files left out under PolicySkip, or nil.
func (idx *Index) Skipped() error {
	return idx.skipped.ErrorOrNil()
}
