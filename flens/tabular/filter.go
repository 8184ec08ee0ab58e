package tabular

import (
	"fmt"
	"math"
	"sort"
	"strings"

	roaring "github.com/RoaringBitmap/roaring"
	mapset "github.com/deckarep/golang-set/v2"
)

// Combinator merges per-column predicates.
type Combinator string

const (
	And Combinator = "AND"
	Or  Combinator = "OR"
)

// ParseCombinator accepts AND/OR in any case. An empty string means AND.
func ParseCombinator(s string) (Combinator, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(And):
		return And, nil
	case string(Or):
		return Or, nil
	default:
		return "", fmt.Errorf("invalid combinator %q: want AND or OR", s)
	}
}

// FilterSpec maps a column to its allowed values. A column that is absent, or
// present with no values, imposes no constraint.
type FilterSpec map[string][]Value

// Active returns the constrained columns in a stable order.
func (s FilterSpec) Active() []string {
	cols := make([]string, 0, len(s))
	for col, values := range s {
		if len(values) > 0 {
			cols = append(cols, col)
		}
	}
	sort.Strings(cols)
	return cols
}

// columnBitmaps holds one roaring bitmap of matching row ids per active column.
type columnBitmaps struct {
	rows    uint64
	columns map[string]*roaring.Bitmap
}

func newColumnBitmaps(rows int) *columnBitmaps {
	return &columnBitmaps{rows: uint64(rows), columns: make(map[string]*roaring.Bitmap)}
}

func (cb *columnBitmaps) add(column string, row uint32) {
	bm, ok := cb.columns[column]
	if !ok {
		bm = roaring.New()
		cb.columns[column] = bm
	}
	bm.Add(row)
}

// combine folds the column bitmaps in order. Columns with no matching row
// still take part: under AND they empty the result.
func (cb *columnBitmaps) combine(order []string, comb Combinator) *roaring.Bitmap {
	if len(order) == 0 {
		all := roaring.New()
		all.AddRange(0, cb.rows)
		return all
	}

	res := cb.clone(cb.columns[order[0]])
	for _, col := range order[1:] {
		other := cb.columns[col]
		if other == nil {
			other = roaring.New()
		}
		if comb == Or {
			res.Or(other)
		} else {
			res.And(other)
		}
	}
	return res
}

func (cb *columnBitmaps) clone(b *roaring.Bitmap) *roaring.Bitmap {
	if b == nil {
		return roaring.New()
	}
	return b.Clone()
}

// FilterTable keeps the rows of t that satisfy spec under comb. Int and Float
// values are compared numerically. path is only used for error reporting.
// With no active column every row is returned.
func FilterTable(t *Table, spec FilterSpec, comb Combinator, path string) (*Table, error) {
	active := spec.Active()
	if len(active) == 0 {
		return &Table{Columns: t.Columns, Rows: t.Rows}, nil
	}

	bitmaps := newColumnBitmaps(len(t.Rows))
	for _, col := range active {
		idx := t.ColumnIndex(col)
		if idx < 0 {
			return nil, &ColumnNotFoundError{Column: col, Path: path}
		}
		allowed := mapset.NewThreadUnsafeSet[Value]()
		for _, v := range spec[col] {
			allowed.Add(matchKey(v))
		}
		for r, row := range t.Rows {
			if allowed.Contains(matchKey(row[idx])) {
				bitmaps.add(col, uint32(r))
			}
		}
	}

	return t.subset(bitmaps.combine(active, comb).ToArray()), nil
}

// matchKey folds a whole-number float onto Int so the two numeric kinds
// match by value. Strings never match numbers.
func matchKey(v Value) Value {
	if v.kind != KindFloat || v.f != math.Trunc(v.f) {
		return v
	}
	if v.f < math.MinInt64 || v.f >= math.MaxInt64 {
		return v
	}
	return Int(int64(v.f))
}

// distinct collects the unique values of one column.
func distinct(t *Table, column, path string) (mapset.Set[Value], error) {
	values, ok := t.Column(column)
	if !ok {
		return nil, &ColumnNotFoundError{Column: column, Path: path}
	}
	return mapset.NewSet(values...), nil
}
