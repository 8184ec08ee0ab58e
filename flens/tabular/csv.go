package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

var errNoColumns = errors.New("no columns to parse from file")

// CSVFile reads delimited text with a header row.
type CSVFile struct {
	fileBase
	comma rune
}

var _ File = (*CSVFile)(nil)

// NewCSVFile binds a comma separated reader to path.
func NewCSVFile(path string, cache *RowCache) File {
	return &CSVFile{fileBase: fileBase{path: path, cache: cache}, comma: ','}
}

// NewTSVFile binds a tab separated reader to path.
func NewTSVFile(path string, cache *RowCache) File {
	return &CSVFile{fileBase: fileBase{path: path, cache: cache}, comma: '\t'}
}

// DelimitedConstructor returns a Constructor for an arbitrary delimiter.
func DelimitedConstructor(comma rune) Constructor {
	return func(path string, cache *RowCache) File {
		return &CSVFile{fileBase: fileBase{path: path, cache: cache}, comma: comma}
	}
}

func (f *CSVFile) ReadAll() (*Table, error) {
	return f.load(f.decode)
}

// Columns reads only the header row, fresh on every call.
func (f *CSVFile) Columns() ([]string, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, &IOError{Path: f.path, Err: err}
	}
	defer fh.Close()

	header, err := f.newReader(fh).Read()
	if err != nil {
		return nil, f.readError(err)
	}
	return dedupeHeader(header), nil
}

func (f *CSVFile) DistinctValues(column string) (mapset.Set[Value], error) {
	t, err := f.ReadAll()
	if err != nil {
		return nil, err
	}
	return distinct(t, column, f.path)
}

func (f *CSVFile) Filter(spec FilterSpec, comb Combinator) (*Table, error) {
	t, err := f.ReadAll()
	if err != nil {
		return nil, err
	}
	return FilterTable(t, spec, comb, f.path)
}

func (f *CSVFile) newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = f.comma
	cr.LazyQuotes = true
	cr.FieldsPerRecord = 0
	return cr
}

func (f *CSVFile) decode() (*Table, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, &IOError{Path: f.path, Err: err}
	}
	defer fh.Close()

	records, err := f.newReader(fh).ReadAll()
	if err != nil {
		return nil, f.readError(err)
	}
	if len(records) == 0 {
		return nil, &ParseError{Path: f.path, Err: errNoColumns}
	}

	header := dedupeHeader(records[0])
	body := records[1:]

	kinds := make([]Kind, len(header))
	for _, rec := range body {
		for i, cell := range rec {
			kinds[i] = widen(kinds[i], inferCellKind(cell))
		}
	}

	rows := make([]Row, len(body))
	for r, rec := range body {
		row := make(Row, len(header))
		for i, cell := range rec {
			row[i] = convertCell(cell, kinds[i])
		}
		rows[r] = row
	}

	return &Table{Columns: header, Rows: rows}, nil
}

// readError classifies a csv reader failure. Syntax problems are parse
// errors; anything else came from the underlying file.
func (f *CSVFile) readError(err error) error {
	var perr *csv.ParseError
	switch {
	case errors.Is(err, io.EOF):
		return &ParseError{Path: f.path, Err: errNoColumns}
	case errors.As(err, &perr):
		return &ParseError{Path: f.path, Err: err}
	default:
		return &IOError{Path: f.path, Err: err}
	}
}

// dedupeHeader strips a UTF-8 BOM and suffixes repeated names with .1, .2, ...
// A suffixed name never collides with another column of the header.
func dedupeHeader(header []string) []string {
	out := make([]string, len(header))
	taken := make(map[string]bool, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		out[i] = name
		taken[name] = true
	}

	seen := make(map[string]bool, len(header))
	next := make(map[string]int)
	for i, name := range out {
		if !seen[name] {
			seen[name] = true
			continue
		}
		n := next[name]
		candidate := name
		for taken[candidate] {
			n++
			candidate = fmt.Sprintf("%s.%d", name, n)
		}
		next[name] = n
		taken[candidate] = true
		seen[candidate] = true
		out[i] = candidate
	}
	return out
}
