package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ZanzyTHEbar/file-lens/flens/aggregate"
	"github.com/ZanzyTHEbar/file-lens/flens/index"
	"github.com/ZanzyTHEbar/file-lens/flens/service"
	"github.com/ZanzyTHEbar/file-lens/flens/tabular"
)

type filterRequest struct {
	Path       string                     `json:"path"`
	Filters    map[string][]tabular.Value `json:"filters"`
	Combinator string                     `json:"combinator"`
}

type filterResponse struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
	Count   int              `json:"count"`
}

type reindexResponse struct {
	ID      string    `json:"id"`
	Root    string    `json:"root"`
	Files   int       `json:"files"`
	BuiltAt time.Time `json:"builtAt"`
	Skipped []string  `json:"skipped"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	engine, err := s.store.Engine()
	if err != nil {
		s.writeError(w, err)
		return
	}
	body, err := engine.Statistic(r.Context(), chi.URLParam(r, "kind"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleDescriptor(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if dir := q.Get("dir"); dir != "" && q.Get("path") == "" {
		s.handleListing(w, dir)
		return
	}
	entry, err := s.lookup(q.Get("path"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entry.Descriptor)
}

// handleListing returns the descriptors of every file below dir.
func (s *Server) handleListing(w http.ResponseWriter, dir string) {
	idx := s.store.Current()
	if idx == nil {
		s.writeError(w, fmt.Errorf("list %s: %w", dir, service.ErrNotIndexed))
		return
	}
	entries := idx.Under(dir)
	descs := make([]index.Descriptor, len(entries))
	for i, e := range entries {
		descs[i] = e.Descriptor
	}
	s.writeJSON(w, http.StatusOK, descs)
}

func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	entry, err := s.lookup(r.URL.Query().Get("path"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	cols, err := entry.File.Columns()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cols)
}

func (s *Server) handleValues(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	column := q.Get("column")
	if column == "" {
		s.writeError(w, fmt.Errorf("column is required: %w", errBadRequest))
		return
	}
	entry, err := s.lookup(q.Get("path"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	set, err := entry.File.DistinctValues(column)
	if err != nil {
		s.writeError(w, err)
		return
	}
	values := set.ToSlice()
	tabular.SortValues(values)
	s.writeJSON(w, http.StatusOK, values)
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("decode filter request: %v: %w", err, errBadRequest))
		return
	}
	comb, err := tabular.ParseCombinator(req.Combinator)
	if err != nil {
		s.writeError(w, fmt.Errorf("%v: %w", err, errBadRequest))
		return
	}
	entry, err := s.lookup(req.Path)
	if err != nil {
		s.writeError(w, err)
		return
	}

	tbl, err := entry.File.Filter(tabular.FilterSpec(req.Filters), comb)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, filterResponse{
		Columns: tbl.Columns,
		Rows:    tbl.Records(),
		Count:   tbl.Len(),
	})
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	idx, err := s.store.Reindex(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, reindexResponse{
		ID:      idx.ID().String(),
		Root:    idx.Root(),
		Files:   idx.Len(),
		BuiltAt: idx.BuiltAt(),
		Skipped: aggregate.ErrorStrings(idx.Skipped()),
	})
}

func (s *Server) lookup(path string) (index.Entry, error) {
	if path == "" {
		return index.Entry{}, fmt.Errorf("path is required: %w", errBadRequest)
	}
	if s.store.Current() == nil {
		return index.Entry{}, fmt.Errorf("lookup %s: %w", path, service.ErrNotIndexed)
	}
	entry, ok := s.store.Lookup(path)
	if !ok {
		return index.Entry{}, fmt.Errorf("file %s: %w", path, errNotFound)
	}
	return entry, nil
}
