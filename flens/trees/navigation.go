package trees

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// NavNode is one entry of the navigation tree. Value is an absolute path and
// Title its base name. Directory nodes always serialize a children list.
type NavNode struct {
	Value    string    `json:"value"`
	Title    string    `json:"title"`
	Children []NavNode `json:"children,omitempty"`
	Dir      bool      `json:"-"`
}

func (n NavNode) MarshalJSON() ([]byte, error) {
	if !n.Dir {
		return json.Marshal(struct {
			Value string `json:"value"`
			Title string `json:"title"`
		}{n.Value, n.Title})
	}
	children := n.Children
	if children == nil {
		children = []NavNode{}
	}
	return json.Marshal(struct {
		Value    string    `json:"value"`
		Title    string    `json:"title"`
		Children []NavNode `json:"children"`
	}{n.Value, n.Title, children})
}

type navEntry struct {
	value      string
	title      string
	dir        bool
	holdsFiles bool
	children   []*navEntry
	dirs       map[string]*navEntry
}

func newNavDir(path, title string) *navEntry {
	return &navEntry{value: path, title: title, dir: true, dirs: make(map[string]*navEntry)}
}

// NavBuilder assembles the navigation tree from indexed file paths. Only
// directories that lead to an indexed file appear.
type NavBuilder struct {
	root   *navEntry
	live   bool
	logger zerolog.Logger
}

type NavOption func(*NavBuilder)

// WithLiveListing replaces the children of every directory holding indexed
// files with a fresh recursive listing of that directory on disk.
func WithLiveListing(live bool) NavOption {
	return func(b *NavBuilder) {
		b.live = live
	}
}

func WithNavLogger(logger zerolog.Logger) NavOption {
	return func(b *NavBuilder) {
		b.logger = logger
	}
}

func NewNavBuilder(root string, opts ...NavOption) *NavBuilder {
	b := &NavBuilder{
		root:   newNavDir(filepath.Clean(root), filepath.Base(root)),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddFile places path under its directory chain, creating directory nodes
// on first sight.
func (b *NavBuilder) AddFile(path string) {
	dir := filepath.Dir(path)
	rel, err := filepath.Rel(b.root.value, dir)
	if err != nil {
		b.logger.Warn().Err(err).Str("path", path).Msg("File outside navigation root")
		return
	}

	current := b.root
	for _, seg := range splitPathSegments(rel) {
		next, ok := current.dirs[seg]
		if !ok {
			next = newNavDir(filepath.Join(current.value, seg), seg)
			current.dirs[seg] = next
			current.children = append(current.children, next)
		}
		current = next
	}
	current.holdsFiles = true
	current.children = append(current.children, &navEntry{value: path, title: filepath.Base(path)})
}

// Build returns the children of the root.
func (b *NavBuilder) Build() []NavNode {
	return b.convert(b.root).Children
}

func (b *NavBuilder) convert(e *navEntry) NavNode {
	if !e.dir {
		return NavNode{Value: e.value, Title: e.title}
	}
	if b.live && e.holdsFiles {
		return b.listLive(e.value)
	}
	node := NavNode{Value: e.value, Title: e.title, Dir: true, Children: make([]NavNode, 0, len(e.children))}
	for _, c := range e.children {
		node.Children = append(node.Children, b.convert(c))
	}
	return node
}

// listLive reads dir from disk. Symlinked directories are listed as plain
// entries so cycles cannot recurse. Unreadable directories are logged and
// returned empty.
func (b *NavBuilder) listLive(dir string) NavNode {
	node := NavNode{Value: dir, Title: filepath.Base(dir), Dir: true, Children: []NavNode{}}

	entries, err := os.ReadDir(dir)
	if err != nil {
		b.logger.Warn().Err(err).Str("dir", dir).Msg("Skipping unreadable directory")
		return node
	}

	for _, de := range entries {
		path := filepath.Join(dir, de.Name())
		if de.IsDir() && de.Type()&fs.ModeSymlink == 0 {
			node.Children = append(node.Children, b.listLive(path))
			continue
		}
		node.Children = append(node.Children, NavNode{Value: path, Title: de.Name()})
	}
	return node
}
