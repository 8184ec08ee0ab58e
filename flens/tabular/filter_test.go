package tabular

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture rows: (1,x) (2,y) (3,x) (4,z)
func filterFixture() *Table {
	return &Table{
		Columns: []string{"a", "b"},
		Rows: []Row{
			{Int(1), String("x")},
			{Int(2), String("y")},
			{Int(3), String("x")},
			{Int(4), String("z")},
		},
	}
}

func TestFilterTable(t *testing.T) {
	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{"EmptyFilterReturnsAllRows", testFilterEmptyFilter},
		{"EmptyValueListIsNoConstraint", testFilterEmptyValueList},
		{"SingleColumnAndEqualsOr", testFilterSingleColumn},
		{"DisjointColumns", testFilterDisjointColumns},
		{"IntersectingColumns", testFilterIntersectingColumns},
		{"KeepsSourceOrder", testFilterKeepsSourceOrder},
		{"StringsNeverMatchNumbers", testFilterStringsNeverMatchNumbers},
		{"NumericKindsMatchByValue", testFilterNumericKinds},
		{"UnmatchedColumn", testFilterUnmatchedColumn},
		{"MissingColumn", testFilterMissingColumn},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.test)
	}
}

func testFilterEmptyFilter(t *testing.T) {
	tbl := filterFixture()
	for _, comb := range []Combinator{And, Or} {
		got, err := FilterTable(tbl, FilterSpec{}, comb, "fixture")
		require.NoError(t, err)
		assert.Equal(t, tbl.Rows, got.Rows, "combinator %s", comb)

		got, err = FilterTable(tbl, nil, comb, "fixture")
		require.NoError(t, err)
		assert.Equal(t, tbl.Rows, got.Rows, "combinator %s", comb)
	}
}

func testFilterEmptyValueList(t *testing.T) {
	tbl := filterFixture()

	got, err := FilterTable(tbl, FilterSpec{"a": {}, "b": {String("y")}}, And, "fixture")
	require.NoError(t, err)
	assert.Equal(t, []Row{{Int(2), String("y")}}, got.Rows)

	// A column that does not exist but carries no values is ignored.
	got, err = FilterTable(tbl, FilterSpec{"nope": nil}, And, "fixture")
	require.NoError(t, err)
	assert.Len(t, got.Rows, 4)
}

func testFilterSingleColumn(t *testing.T) {
	tbl := filterFixture()
	spec := FilterSpec{"b": {String("x"), String("z")}}

	and, err := FilterTable(tbl, spec, And, "fixture")
	require.NoError(t, err)
	or, err := FilterTable(tbl, spec, Or, "fixture")
	require.NoError(t, err)

	assert.Equal(t, and.Rows, or.Rows)
	assert.Len(t, and.Rows, 3)
}

func testFilterDisjointColumns(t *testing.T) {
	tbl := filterFixture()
	// a matches rows 0,1; b matches row 3.
	spec := FilterSpec{
		"a": {Int(1), Int(2)},
		"b": {String("z")},
	}

	and, err := FilterTable(tbl, spec, And, "fixture")
	require.NoError(t, err)
	assert.Empty(t, and.Rows)
	assert.Equal(t, tbl.Columns, and.Columns)

	or, err := FilterTable(tbl, spec, Or, "fixture")
	require.NoError(t, err)
	assert.Equal(t, []Row{
		{Int(1), String("x")},
		{Int(2), String("y")},
		{Int(4), String("z")},
	}, or.Rows)
}

func testFilterIntersectingColumns(t *testing.T) {
	tbl := filterFixture()
	spec := FilterSpec{
		"a": {Int(1), Int(2), Int(3)},
		"b": {String("x")},
	}

	and, err := FilterTable(tbl, spec, And, "fixture")
	require.NoError(t, err)
	assert.Equal(t, []Row{{Int(1), String("x")}, {Int(3), String("x")}}, and.Rows)

	or, err := FilterTable(tbl, spec, Or, "fixture")
	require.NoError(t, err)
	assert.Len(t, or.Rows, 3)
}

func testFilterKeepsSourceOrder(t *testing.T) {
	tbl := filterFixture()
	spec := FilterSpec{"a": {Int(4), Int(3), Int(1)}}

	got, err := FilterTable(tbl, spec, Or, "fixture")
	require.NoError(t, err)
	assert.Equal(t, []Value{Int(1), Int(3), Int(4)}, columnOf(t, got, "a"))
}

func testFilterStringsNeverMatchNumbers(t *testing.T) {
	tbl := filterFixture()

	for _, v := range []Value{String("1"), Float(1.5), Bool(true)} {
		got, err := FilterTable(tbl, FilterSpec{"a": {v}}, And, "fixture")
		require.NoError(t, err)
		assert.Empty(t, got.Rows, "value %v of kind %s", v, v.Kind())
	}

	got, err := FilterTable(tbl, FilterSpec{"b": {Int(1)}}, And, "fixture")
	require.NoError(t, err)
	assert.Empty(t, got.Rows)
}

func testFilterNumericKinds(t *testing.T) {
	ints := filterFixture()
	got, err := FilterTable(ints, FilterSpec{"a": {Float(1), Float(4)}}, Or, "fixture")
	require.NoError(t, err)
	assert.Equal(t, []Value{Int(1), Int(4)}, columnOf(t, got, "a"))

	floats := &Table{
		Columns: []string{"price"},
		Rows:    []Row{{Float(1.5)}, {Float(2)}, {Null()}, {Float(2)}},
	}
	got, err = FilterTable(floats, FilterSpec{"price": {Int(2)}}, And, "fixture")
	require.NoError(t, err)
	assert.Len(t, got.Rows, 2)

	got, err = FilterTable(floats, FilterSpec{"price": {Float(1.5)}}, And, "fixture")
	require.NoError(t, err)
	assert.Equal(t, []Row{{Float(1.5)}}, got.Rows)
}

func testFilterUnmatchedColumn(t *testing.T) {
	tbl := filterFixture()
	spec := FilterSpec{
		"a": {Int(99)},
		"b": {String("y")},
	}

	and, err := FilterTable(tbl, spec, And, "fixture")
	require.NoError(t, err)
	assert.Empty(t, and.Rows)

	or, err := FilterTable(tbl, spec, Or, "fixture")
	require.NoError(t, err)
	assert.Equal(t, []Row{{Int(2), String("y")}}, or.Rows)
}

func testFilterMissingColumn(t *testing.T) {
	_, err := FilterTable(filterFixture(), FilterSpec{"c": {Int(1)}}, Or, "fixture.csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrColumnNotFound))

	var cerr *ColumnNotFoundError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "c", cerr.Column)
	assert.Equal(t, "fixture.csv", cerr.Path)
}

func TestParseCombinator(t *testing.T) {
	cases := map[string]Combinator{"": And, "and": And, " AND ": And, "or": Or, "Or": Or}
	for in, want := range cases {
		got, err := ParseCombinator(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	_, err := ParseCombinator("xor")
	assert.Error(t, err)
}

func TestFilterSpecActive(t *testing.T) {
	spec := FilterSpec{"z": {Int(1)}, "a": {String("x")}, "m": {}}
	assert.Equal(t, []string{"a", "z"}, spec.Active())
}
