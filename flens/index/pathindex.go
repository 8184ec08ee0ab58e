package index

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/armon/go-radix"
)

// pathIndex maps absolute file paths to their position in the entry list.
// It is filled once during a build and read-only afterwards.
type pathIndex struct {
	tree *radix.Tree
}

func newPathIndex() *pathIndex {
	return &pathIndex{tree: radix.New()}
}

func (idx *pathIndex) insert(path string, pos int) {
	idx.tree.Insert(normalizePath(path), pos)
}

func (idx *pathIndex) lookup(path string) (int, bool) {
	v, ok := idx.tree.Get(normalizePath(path))
	if !ok {
		return 0, false
	}
	return v.(int), true
}

// under returns the positions of every path below dir, ascending. The prefix
// walk is segment aware so /data does not match /database.
func (idx *pathIndex) under(dir string) []int {
	prefix := normalizePath(dir)
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var positions []int
	idx.tree.WalkPrefix(prefix, func(_ string, v interface{}) bool {
		positions = append(positions, v.(int))
		return false
	})
	sort.Ints(positions)
	return positions
}

// normalizePath cleans path and uses forward slashes, without a trailing slash
// except for the filesystem root.
func normalizePath(path string) string {
	if path == "" {
		return ""
	}
	return filepath.ToSlash(filepath.Clean(path))
}
