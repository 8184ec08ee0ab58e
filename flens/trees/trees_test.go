package trees

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestHierarchy(t *testing.T) {
	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{"AccumulatesSharedPaths", testHierarchyAccumulates},
		{"RootLevelFiles", testHierarchyRootLevel},
		{"InsertionOrder", testHierarchyInsertionOrder},
		{"FlattenPreservesCount", testHierarchyFlatten},
		{"DeepTree", testHierarchyDeep},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.test)
	}
}

func testHierarchyAccumulates(t *testing.T) {
	h := NewHierarchy()
	h.AddDirectoryKey("/a/b")
	h.AddDirectoryKey("/a/b")
	h.AddDirectoryKey("/a/c")

	a, ok := h.Child("a")
	require.True(t, ok)
	assert.Equal(t, 0, a.Count)
	b, ok := a.Child("b")
	require.True(t, ok)
	assert.Equal(t, 2, b.Count)
	assert.Equal(t, 3, h.Total())
	assert.Equal(t, 2, h.Depth())
}

func testHierarchyRootLevel(t *testing.T) {
	h := NewHierarchy()
	h.AddDirectoryKey("/")
	h.AddDirectoryKey("")

	root, ok := h.Child(RootKey)
	require.True(t, ok)
	assert.Equal(t, 2, root.Count)
	assert.True(t, root.IsLeaf())
}

func testHierarchyInsertionOrder(t *testing.T) {
	h := NewHierarchy()
	for _, key := range []string{"/z", "/a", "/m", "/a"} {
		h.AddDirectoryKey(key)
	}

	names := make([]string, 0, len(h.Children))
	for _, c := range h.Children {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"z", "a", "m"}, names)
}

func testHierarchyFlatten(t *testing.T) {
	h := NewHierarchy()
	for _, key := range []string{"/a/b", "/a", "/a/b", "/c", "/"} {
		h.AddDirectoryKey(key)
	}

	nodes := Flatten(h)
	assert.Equal(t, []NamedNode{
		{Name: "a", Value: intPtr(1), Children: []NamedNode{
			{Name: "b", Value: intPtr(2)},
		}},
		{Name: "c", Value: intPtr(1)},
		{Name: "/", Value: intPtr(1)},
	}, nodes)
	assert.Equal(t, h.Total(), SumValues(nodes))

	out, err := json.Marshal(nodes[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"a","value":1,"children":[{"name":"b","value":2}]}`, string(out))

	interior := NewHierarchy()
	interior.AddDirectoryKey("/x/y")
	out, err = json.Marshal(Flatten(interior))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"x","children":[{"name":"y","value":1}]}]`, string(out))

	assert.Empty(t, Flatten(nil))
}

func testHierarchyDeep(t *testing.T) {
	h := NewHierarchy()
	key := ""
	for i := 0; i < 500; i++ {
		key += "/d"
	}
	h.AddDirectoryKey(key)

	assert.Equal(t, 500, h.Depth())
	assert.Equal(t, 1, SumValues(Flatten(h)))
}

func TestNavigation(t *testing.T) {
	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{"Snapshot", testNavigationSnapshot},
		{"Live", testNavigationLive},
		{"LiveUnreadable", testNavigationLiveUnreadable},
		{"JSON", testNavigationJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.test)
	}
}

func testNavigationSnapshot(t *testing.T) {
	root := filepath.FromSlash("/work")
	b := NewNavBuilder(root)
	b.AddFile(filepath.Join(root, "b", "y.csv"))
	b.AddFile(filepath.Join(root, "a", "deep", "x.csv"))
	b.AddFile(filepath.Join(root, "top.csv"))
	b.AddFile(filepath.Join(root, "b", "z.csv"))

	assert.Equal(t, []NavNode{
		{Value: filepath.Join(root, "b"), Title: "b", Dir: true, Children: []NavNode{
			{Value: filepath.Join(root, "b", "y.csv"), Title: "y.csv"},
			{Value: filepath.Join(root, "b", "z.csv"), Title: "z.csv"},
		}},
		{Value: filepath.Join(root, "a"), Title: "a", Dir: true, Children: []NavNode{
			{Value: filepath.Join(root, "a", "deep"), Title: "deep", Dir: true, Children: []NavNode{
				{Value: filepath.Join(root, "a", "deep", "x.csv"), Title: "x.csv"},
			}},
		}},
		{Value: filepath.Join(root, "top.csv"), Title: "top.csv"},
	}, b.Build())
}

func testNavigationLive(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "x.csv"), []byte("k\n1\n"), 0o644))

	b := NewNavBuilder(root, WithLiveListing(true))
	b.AddFile(filepath.Join(root, "a", "x.csv"))

	// Created after indexing; only the live listing sees it.
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "sub", "new.txt"), []byte("n"), 0o644))

	assert.Equal(t, []NavNode{
		{Value: filepath.Join(root, "a"), Title: "a", Dir: true, Children: []NavNode{
			{Value: filepath.Join(root, "a", "sub"), Title: "sub", Dir: true, Children: []NavNode{
				{Value: filepath.Join(root, "a", "sub", "new.txt"), Title: "new.txt"},
			}},
			{Value: filepath.Join(root, "a", "x.csv"), Title: "x.csv"},
		}},
	}, b.Build())

	snapshot := NewNavBuilder(root)
	snapshot.AddFile(filepath.Join(root, "a", "x.csv"))
	nodes := snapshot.Build()
	require.Len(t, nodes, 1)
	assert.Len(t, nodes[0].Children, 1)
}

func testNavigationLiveUnreadable(t *testing.T) {
	root := t.TempDir()
	b := NewNavBuilder(root, WithLiveListing(true))
	b.AddFile(filepath.Join(root, "gone", "x.csv"))

	nodes := b.Build()
	require.Len(t, nodes, 1)
	assert.Equal(t, "gone", nodes[0].Title)
	assert.Empty(t, nodes[0].Children)
}

func testNavigationJSON(t *testing.T) {
	nodes := []NavNode{
		{Value: "/r/a", Title: "a", Dir: true},
		{Value: "/r/f.csv", Title: "f.csv"},
	}
	out, err := json.Marshal(nodes)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"value":"/r/a","title":"a","children":[]},{"value":"/r/f.csv","title":"f.csv"}]`, string(out))
}
