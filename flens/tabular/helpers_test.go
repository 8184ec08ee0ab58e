package tabular

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func columnOf(t *testing.T, tbl *Table, column string) []Value {
	t.Helper()
	values, ok := tbl.Column(column)
	require.True(t, ok, "column %s should exist", column)
	return values
}
