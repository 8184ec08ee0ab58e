package aggregate

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"github.com/sourcegraph/conc/pool"
)

// RowCounts holds parallel slices of directory keys and the rows read from
// the tabular files directly inside them.
type RowCounts struct {
	Directory []string `json:"directory"`
	Rows      []int    `json:"rows"`
	Files     []int    `json:"files"`
}

type fileRows struct {
	key  string
	rows int
	err  error
}

// RowCountsByDirectory reads every indexed file and sums row counts per
// directory key. A file that cannot be read is left out and reported in the
// returned error, next to the partial result. Cancellation returns ctx.Err().
func (e *Engine) RowCountsByDirectory(ctx context.Context) (RowCounts, error) {
	entries := e.idx.Entries()
	results := make([]fileRows, len(entries))

	p := pool.New().WithMaxGoroutines(e.workers)
	for i, entry := range entries {
		i, entry := i, entry
		p.Go(func() {
			key := e.idx.DirectoryKey(entry.Descriptor)
			if err := ctx.Err(); err != nil {
				results[i] = fileRows{key: key, err: err}
				return
			}
			tbl, err := entry.File.ReadAll()
			if err != nil {
				results[i] = fileRows{key: key, err: err}
				return
			}
			results[i] = fileRows{key: key, rows: tbl.Len()}
		})
	}
	p.Wait()

	if err := ctx.Err(); err != nil {
		return RowCounts{}, err
	}

	rows := make(map[string]int)
	files := make(map[string]int)
	var failed *multierror.Error
	for _, res := range results {
		if res.err != nil {
			e.logger.Warn().Err(res.err).Str("directory", res.key).Msg("Skipping unreadable file in row count")
			failed = multierror.Append(failed, res.err)
			continue
		}
		rows[res.key] += res.rows
		files[res.key]++
	}

	keys := sortedKeys(rows)
	out := RowCounts{
		Directory: keys,
		Rows:      make([]int, len(keys)),
		Files:     make([]int, len(keys)),
	}
	for i, key := range keys {
		out.Rows[i] = rows[key]
		out.Files[i] = files[key]
	}
	return out, failed.ErrorOrNil()
}
