package tabular

import (
	"errors"
	"io"
	"os"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/parquet-go/parquet-go"
)

const parquetBatchSize = 1000

// ParquetFile reads Apache Parquet files. Columns are the schema's top-level
// fields in schema order.
type ParquetFile struct {
	fileBase
}

var _ File = (*ParquetFile)(nil)

// NewParquetFile binds a parquet reader to path.
func NewParquetFile(path string, cache *RowCache) File {
	return &ParquetFile{fileBase: fileBase{path: path, cache: cache}}
}

func (f *ParquetFile) ReadAll() (*Table, error) {
	return f.load(f.decode)
}

// Columns reads only the footer schema.
func (f *ParquetFile) Columns() ([]string, error) {
	fh, pf, err := f.open()
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return fieldNames(pf.Schema()), nil
}

func (f *ParquetFile) DistinctValues(column string) (mapset.Set[Value], error) {
	t, err := f.ReadAll()
	if err != nil {
		return nil, err
	}
	return distinct(t, column, f.path)
}

func (f *ParquetFile) Filter(spec FilterSpec, comb Combinator) (*Table, error) {
	t, err := f.ReadAll()
	if err != nil {
		return nil, err
	}
	return FilterTable(t, spec, comb, f.path)
}

func (f *ParquetFile) open() (*os.File, *parquet.File, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, nil, &IOError{Path: f.path, Err: err}
	}

	stat, err := fh.Stat()
	if err != nil {
		_ = fh.Close()
		return nil, nil, &IOError{Path: f.path, Err: err}
	}

	pf, err := parquet.OpenFile(fh, stat.Size())
	if err != nil {
		_ = fh.Close()
		return nil, nil, &ParseError{Path: f.path, Err: err}
	}
	return fh, pf, nil
}

func (f *ParquetFile) decode() (*Table, error) {
	fh, pf, err := f.open()
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	columns := fieldNames(pf.Schema())
	reader := parquet.NewGenericReader[map[string]any](pf, pf.Schema())
	defer func() { _ = reader.Close() }()

	rows := make([]Row, 0, pf.NumRows())
	buf := make([]map[string]any, parquetBatchSize)
	for {
		for i := range buf {
			buf[i] = make(map[string]any, len(columns))
		}

		n, err := reader.Read(buf)
		for _, rec := range buf[:n] {
			row := make(Row, len(columns))
			for i, col := range columns {
				row[i] = FromNative(rec[col])
			}
			rows = append(rows, row)
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &ParseError{Path: f.path, Err: err}
		}
		if n == 0 {
			break
		}
	}

	return &Table{Columns: columns, Rows: rows}, nil
}

func fieldNames(schema *parquet.Schema) []string {
	fields := schema.Fields()
	names := make([]string, len(fields))
	for i, field := range fields {
		names[i] = field.Name()
	}
	return names
}
