package index

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/file-lens/flens/tabular"
)

var fixtureTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func writeFixture(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, fixtureTime, fixtureTime))
	return path
}

func buildFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFixture(t, root, "a/x.csv", "k,v\n1,p\n2,q\n")
	writeFixture(t, root, "b/y.csv", "k,v\n3,r\n")
	writeFixture(t, root, "top.tsv", "k\tv\n4\ts\n")
	return root
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{"DescriptorsInWalkOrder", testBuildDescriptors},
		{"Lookup", testBuildLookup},
		{"Under", testBuildUnder},
		{"AbortOnUnsupported", testBuildAbortOnUnsupported},
		{"SkipPolicy", testBuildSkipPolicy},
		{"IgnoreFile", testBuildIgnoreFile},
		{"InvalidRoot", testBuildInvalidRoot},
		{"Deterministic", testBuildDeterministic},
		{"Cancelled", testBuildCancelled},
		{"Symlinks", testBuildSymlinks},
		{"EmptyRoot", testBuildEmptyRoot},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.test)
	}
}

func testBuildDescriptors(t *testing.T) {
	root := buildFixture(t)

	idx, err := Build(context.Background(), root, tabular.DefaultRegistry(), WithWorkers(2))
	require.NoError(t, err)
	require.Equal(t, 3, idx.Len())
	assert.Equal(t, root, idx.Root())
	assert.NotEmpty(t, idx.ID().String())
	assert.NoError(t, idx.Skipped())

	descs := idx.Descriptors()
	assert.Equal(t, filepath.Join(root, "a", "x.csv"), descs[0].Path)
	assert.Equal(t, filepath.Join(root, "b", "y.csv"), descs[1].Path)
	assert.Equal(t, filepath.Join(root, "top.tsv"), descs[2].Path)

	x := descs[0]
	assert.Equal(t, "x", x.Name)
	assert.Equal(t, ".csv", x.Extension)
	assert.Equal(t, filepath.Join(root, "a"), x.Dir)
	assert.Equal(t, int64(len("k,v\n1,p\n2,q\n")), x.SizeBytes)
	assert.True(t, fixtureTime.Equal(x.ModifiedAt))

	assert.Equal(t, "/a", idx.DirectoryKey(descs[0]))
	assert.Equal(t, "/", idx.DirectoryKey(descs[2]))

	entries := idx.Entries()
	assert.IsType(t, &tabular.CSVFile{}, entries[0].File)
	assert.Equal(t, descs[0].Path, entries[0].File.Path())
}

func testBuildLookup(t *testing.T) {
	root := buildFixture(t)
	idx, err := Build(context.Background(), root, tabular.DefaultRegistry())
	require.NoError(t, err)

	path := filepath.Join(root, "a", "x.csv")
	entry, ok := idx.Lookup(path)
	require.True(t, ok)
	assert.Equal(t, path, entry.Path)

	tbl, err := entry.File.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())

	entry, ok = idx.Lookup(filepath.Join(root, "b", "..", "a", "x.csv"))
	require.True(t, ok, "lookup cleans its input")
	assert.Equal(t, path, entry.Path)

	for _, miss := range []string{"a/x.csv", filepath.Join(root, "a"), filepath.Join(root, "a", "x"), ""} {
		_, ok := idx.Lookup(miss)
		assert.False(t, ok, "path %q should not resolve", miss)
	}
}

func testBuildUnder(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "data/one.csv", "a\n1\n")
	writeFixture(t, root, "data/deep/two.csv", "a\n2\n")
	writeFixture(t, root, "database/three.csv", "a\n3\n")

	idx, err := Build(context.Background(), root, tabular.DefaultRegistry())
	require.NoError(t, err)

	under := idx.Under(filepath.Join(root, "data"))
	require.Len(t, under, 2)
	assert.Equal(t, filepath.Join(root, "data", "deep", "two.csv"), under[0].Path)
	assert.Equal(t, filepath.Join(root, "data", "one.csv"), under[1].Path)

	assert.Len(t, idx.Under(root), 3)
	assert.Empty(t, idx.Under(filepath.Join(root, "missing")))
}

func testBuildAbortOnUnsupported(t *testing.T) {
	root := buildFixture(t)
	notes := writeFixture(t, root, "b/notes.txt", "hello")

	idx, err := Build(context.Background(), root, tabular.DefaultRegistry())
	require.Error(t, err)
	assert.Nil(t, idx)
	assert.True(t, errors.Is(err, tabular.ErrUnsupportedFormat))

	var uerr *tabular.UnsupportedFormatError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "notes", uerr.FileName)
	assert.Equal(t, ".txt", uerr.Extension)
	assert.Equal(t, notes, uerr.Path)
}

func testBuildSkipPolicy(t *testing.T) {
	root := buildFixture(t)
	writeFixture(t, root, "b/notes.txt", "hello")
	writeFixture(t, root, "README", "no extension")

	idx, err := Build(context.Background(), root, tabular.DefaultRegistry(), WithOnError(PolicySkip))
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())

	skipped := idx.Skipped()
	require.Error(t, skipped)
	assert.True(t, errors.Is(skipped, tabular.ErrUnsupportedFormat))
	assert.Contains(t, skipped.Error(), "notes.txt")
	assert.Contains(t, skipped.Error(), "README")
}

func testBuildIgnoreFile(t *testing.T) {
	root := buildFixture(t)
	writeFixture(t, root, ".flensignore", ".flensignore\ntmp/\n*.txt\n")
	writeFixture(t, root, "tmp/scratch.csv", "a\n1\n")
	writeFixture(t, root, "a/notes.txt", "hello")

	idx, err := Build(context.Background(), root, tabular.DefaultRegistry(), WithIgnoreFile(".flensignore"))
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())
	_, ok := idx.Lookup(filepath.Join(root, "tmp", "scratch.csv"))
	assert.False(t, ok)

	_, err = Build(context.Background(), root, tabular.DefaultRegistry(), WithIgnoreFile("missing-ignore"))
	assert.True(t, errors.Is(err, tabular.ErrIO))
}

func testBuildInvalidRoot(t *testing.T) {
	dir := t.TempDir()

	_, err := Build(context.Background(), filepath.Join(dir, "nope"), tabular.DefaultRegistry())
	assert.True(t, errors.Is(err, tabular.ErrIO))

	file := writeFixture(t, dir, "file.csv", "a\n1\n")
	_, err = Build(context.Background(), file, tabular.DefaultRegistry())
	assert.True(t, errors.Is(err, tabular.ErrIO))
	assert.True(t, errors.Is(err, errNotDirectory))
}

func testBuildDeterministic(t *testing.T) {
	root := buildFixture(t)

	first, err := Build(context.Background(), root, tabular.DefaultRegistry())
	require.NoError(t, err)
	second, err := Build(context.Background(), root, tabular.DefaultRegistry(), WithWorkers(1))
	require.NoError(t, err)

	assert.Equal(t, first.Descriptors(), second.Descriptors())
	assert.NotEqual(t, first.ID(), second.ID())
}

func testBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, buildFixture(t), tabular.DefaultRegistry())
	assert.ErrorIs(t, err, context.Canceled)
}

func testBuildSymlinks(t *testing.T) {
	root := buildFixture(t)
	target := filepath.Join(root, "a", "x.csv")
	if err := os.Symlink(target, filepath.Join(root, "link.csv")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(root, "b"), filepath.Join(root, "linkdir.csv")))

	idx, err := Build(context.Background(), root, tabular.DefaultRegistry())
	require.NoError(t, err)

	// The file link is indexed with the target's size; the directory link is not a regular file.
	entry, ok := idx.Lookup(filepath.Join(root, "link.csv"))
	require.True(t, ok)
	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), entry.SizeBytes)
	_, ok = idx.Lookup(filepath.Join(root, "linkdir.csv"))
	assert.False(t, ok)
	assert.Equal(t, 4, idx.Len())
}

func testBuildEmptyRoot(t *testing.T) {
	idx, err := Build(context.Background(), t.TempDir(), tabular.DefaultRegistry())
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.Descriptors())
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("SKIP")
	require.NoError(t, err)
	assert.Equal(t, PolicySkip, p)

	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyAbort, p)
	assert.Equal(t, "abort", p.String())

	_, err = ParsePolicy("retry")
	assert.Error(t, err)
}

func TestDirectoryKey(t *testing.T) {
	root := filepath.FromSlash("/work")
	assert.Equal(t, "/", DirectoryKey(root, root))
	assert.Equal(t, "/a", DirectoryKey(root, filepath.Join(root, "a")))
	assert.Equal(t, "/a/b", DirectoryKey(root, filepath.Join(root, "a", "b")))
}
