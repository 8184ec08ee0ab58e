package tabular

// Row is one record, aligned with the columns of its Table.
type Row []Value

// Table is a decoded tabular file. Tables handed out by a File may be shared
// through the row cache and must be treated as read-only.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the position of column in the header, or -1.
func (t *Table) ColumnIndex(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Column returns every cell of one column in row order.
func (t *Table) Column(column string) ([]Value, bool) {
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return nil, false
	}
	out := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, true
}

// Records renders rows as column -> native value maps, the shape JSON
// consumers expect.
func (t *Table) Records() []map[string]any {
	out := make([]map[string]any, len(t.Rows))
	for i, row := range t.Rows {
		rec := make(map[string]any, len(t.Columns))
		for j, col := range t.Columns {
			rec[col] = row[j].Native()
		}
		out[i] = rec
	}
	return out
}

// subset returns a table sharing t's header and the rows at idx, in idx order.
func (t *Table) subset(idx []uint32) *Table {
	rows := make([]Row, len(idx))
	for i, r := range idx {
		rows[i] = t.Rows[r]
	}
	return &Table{Columns: t.Columns, Rows: rows}
}
