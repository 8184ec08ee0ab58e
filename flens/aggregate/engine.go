package aggregate

import (
	"runtime"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/ZanzyTHEbar/file-lens/flens/index"
	"github.com/ZanzyTHEbar/file-lens/flens/trees"
)

// MiB is one binary mebibyte.
const MiB = 1024 * 1024

const dateLayout = "2006-01-02"

// Engine derives statistics from one index snapshot. Every method recomputes
// from the snapshot and never mutates it.
type Engine struct {
	idx     *index.Index
	loc     *time.Location
	live    bool
	workers int
	logger  zerolog.Logger
}

type Option func(*Engine)

// WithLocation sets the zone used to cut modification times into days.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithLiveNavigation makes NavigationTree re-read directories holding
// indexed files from disk.
func WithLiveNavigation(live bool) Option {
	return func(e *Engine) {
		e.live = live
	}
}

func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func New(idx *index.Index, opts ...Option) *Engine {
	e := &Engine{
		idx:     idx,
		loc:     time.Local,
		workers: runtime.GOMAXPROCS(0),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Index returns the snapshot the engine reads.
func (e *Engine) Index() *index.Index {
	return e.idx
}

// DirectoryStats holds parallel slices, one position per directory key.
type DirectoryStats struct {
	Directory []string  `json:"directory"`
	Size      []float64 `json:"size"` // MiB
	Count     []int     `json:"count"`
}

// Series is the per-date size and count of one directory, aligned with
// TimeSeries.Dates.
type Series struct {
	Size  []float64 `json:"size"` // MiB
	Count []int     `json:"count"`
}

type TimeSeries struct {
	Dates       []string          `json:"dates"`
	Directories map[string]Series `json:"directories"`
}

type NamedValue struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type dirTotals struct {
	bytes int64
	count int
}

// CountsAndSizesByDirectory groups files by their immediate parent
// directory key, sorted by key. Sizes are reported in MiB.
func (e *Engine) CountsAndSizesByDirectory() DirectoryStats {
	totals := make(map[string]*dirTotals)
	for _, d := range e.idx.Descriptors() {
		key := e.idx.DirectoryKey(d)
		t, ok := totals[key]
		if !ok {
			t = &dirTotals{}
			totals[key] = t
		}
		t.bytes += d.SizeBytes
		t.count++
	}

	keys := sortedKeys(totals)
	out := DirectoryStats{
		Directory: keys,
		Size:      make([]float64, len(keys)),
		Count:     make([]int, len(keys)),
	}
	for i, key := range keys {
		out.Size[i] = toMiB(totals[key].bytes)
		out.Count[i] = totals[key].count
	}
	return out
}

// TimeSeriesByDateAndDirectory fills the full date x directory grid. Every
// directory has one cell per date, zero when nothing was modified that day.
// The returned directory list is the order used for the grid.
func (e *Engine) TimeSeriesByDateAndDirectory() (TimeSeries, []string) {
	cells := make(map[string]map[string]*dirTotals)
	dirSet := make(map[string]struct{})

	for _, d := range e.idx.Descriptors() {
		day := d.ModifiedAt.In(e.loc).Format(dateLayout)
		key := e.idx.DirectoryKey(d)
		dirSet[key] = struct{}{}

		byDir, ok := cells[day]
		if !ok {
			byDir = make(map[string]*dirTotals)
			cells[day] = byDir
		}
		t, ok := byDir[key]
		if !ok {
			t = &dirTotals{}
			byDir[key] = t
		}
		t.bytes += d.SizeBytes
		t.count++
	}

	dates := sortedKeys(cells)
	dirs := sortedKeys(dirSet)

	ts := TimeSeries{Dates: dates, Directories: make(map[string]Series, len(dirs))}
	for _, dir := range dirs {
		s := Series{Size: make([]float64, len(dates)), Count: make([]int, len(dates))}
		for i, day := range dates {
			if t, ok := cells[day][dir]; ok {
				s.Size[i] = toMiB(t.bytes)
				s.Count[i] = t.count
			}
		}
		ts.Directories[dir] = s
	}
	return ts, dirs
}

// Hierarchy nests directory keys component by component; each file counts
// on the node of its parent directory. Children keep walk order.
func (e *Engine) Hierarchy() *trees.Node {
	h := trees.NewHierarchy()
	for _, d := range e.idx.Descriptors() {
		h.AddDirectoryKey(e.idx.DirectoryKey(d))
	}
	return h
}

func (e *Engine) HierarchyAsNamedNodes() []trees.NamedNode {
	return trees.Flatten(e.Hierarchy())
}

// SunburstCounts lists the file count of every directory key, sorted by key.
func (e *Engine) SunburstCounts() []NamedValue {
	counts := make(map[string]int)
	for _, d := range e.idx.Descriptors() {
		counts[e.idx.DirectoryKey(d)]++
	}

	keys := sortedKeys(counts)
	out := make([]NamedValue, len(keys))
	for i, key := range keys {
		out[i] = NamedValue{Name: key, Value: counts[key]}
	}
	return out
}

// NavigationTree mirrors the directories that lead to indexed files. File
// node values are absolute paths accepted by index.Lookup.
func (e *Engine) NavigationTree() []trees.NavNode {
	b := trees.NewNavBuilder(e.idx.Root(),
		trees.WithLiveListing(e.live),
		trees.WithNavLogger(e.logger),
	)
	for _, d := range e.idx.Descriptors() {
		b.AddFile(d.Path)
	}
	return b.Build()
}

func toMiB(bytes int64) float64 {
	return float64(bytes) / MiB
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
