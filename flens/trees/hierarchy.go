package trees

import (
	"path/filepath"
	"strings"
)

// RootKey names the top-level node that counts files sitting directly in the
// indexed root.
const RootKey = "/"

// Node is one path component of the directory hierarchy. Count is the number
// of files whose parent directory resolves exactly to this node.
type Node struct {
	Name     string
	Count    int
	Children []*Node

	index map[string]*Node
}

// NewHierarchy returns an unnamed root to which directory keys are added.
func NewHierarchy() *Node {
	return &Node{index: make(map[string]*Node)}
}

// Child returns the direct child called name, if any.
func (n *Node) Child(name string) (*Node, bool) {
	c, ok := n.index[name]
	return c, ok
}

// AddChild appends a child called name, or returns the existing one.
func (n *Node) AddChild(name string) *Node {
	if c, ok := n.index[name]; ok {
		return c
	}
	if n.index == nil {
		n.index = make(map[string]*Node)
	}
	c := &Node{Name: name, index: make(map[string]*Node)}
	n.index[name] = c
	n.Children = append(n.Children, c)
	return c
}

// FindOrCreatePath walks the components of path from n, creating missing
// nodes in insertion order.
func (n *Node) FindOrCreatePath(path []string) *Node {
	current := n
	for _, name := range path {
		current = current.AddChild(name)
	}
	return current
}

// AddDirectoryKey counts one file under key, a root-relative directory such
// as "/a/b". The root itself ("/" or "") counts on the RootKey node.
func (n *Node) AddDirectoryKey(key string) *Node {
	segments := splitPathSegments(key)
	if len(segments) == 0 {
		segments = []string{RootKey}
	}
	leaf := n.FindOrCreatePath(segments)
	leaf.Count++
	return leaf
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Total sums the counts of n and every descendant.
func (n *Node) Total() int {
	total := n.Count
	for _, c := range n.Children {
		total += c.Total()
	}
	return total
}

// Depth is the number of levels below n.
func (n *Node) Depth() int {
	depth := 0
	for _, c := range n.Children {
		if d := c.Depth() + 1; d > depth {
			depth = d
		}
	}
	return depth
}

func splitPathSegments(p string) []string {
	slashed := filepath.ToSlash(filepath.Clean(p))
	parts := strings.Split(slashed, "/")
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		if s == "" || s == "." {
			continue
		}
		out = append(out, s)
	}
	return out
}
