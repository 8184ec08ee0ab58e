package index

import (
	"path/filepath"
	"time"

	"github.com/ZanzyTHEbar/file-lens/flens/tabular"
)

// Descriptor is the immutable metadata of one indexed file.
type Descriptor struct {
	Name       string    `json:"name"`      // base name without extension
	Extension  string    `json:"extension"` // as found on disk, with the dot
	Path       string    `json:"path"`      // absolute and cleaned, unique in an index
	Dir        string    `json:"dir"`       // absolute parent directory
	SizeBytes  int64     `json:"sizeBytes"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// Entry pairs a descriptor with the reader for its format.
type Entry struct {
	Descriptor
	File tabular.File `json:"-"`
}

// DirectoryKey renders dir relative to root with forward slashes and a
// leading slash. The root itself is "/".
func DirectoryKey(root, dir string) string {
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." {
		return "/"
	}
	return "/" + filepath.ToSlash(rel)
}
