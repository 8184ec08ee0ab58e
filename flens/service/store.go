package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/ZanzyTHEbar/file-lens/flens/aggregate"
	"github.com/ZanzyTHEbar/file-lens/flens/index"
	"github.com/ZanzyTHEbar/file-lens/flens/tabular"
)

// ErrNotIndexed is returned while no snapshot has been published yet.
var ErrNotIndexed = errors.New("index not built")

// ReindexHook observes every successful rebuild.
type ReindexHook func(idx *index.Index, elapsed time.Duration)

// Store publishes immutable index snapshots. Readers load the current
// snapshot without locking; rebuilds are serialised and swap it wholesale.
type Store struct {
	root       string
	registry   *tabular.Registry
	indexOpts  []index.Option
	engineOpts []aggregate.Option
	logger     zerolog.Logger

	current atomic.Pointer[index.Index]
	mu      sync.Mutex
	hooks   []ReindexHook
}

type Option func(*Store)

func WithIndexOptions(opts ...index.Option) Option {
	return func(s *Store) {
		s.indexOpts = append(s.indexOpts, opts...)
	}
}

func WithEngineOptions(opts ...aggregate.Option) Option {
	return func(s *Store) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// OnReindex registers a hook run after each successful rebuild.
func OnReindex(hook ReindexHook) Option {
	return func(s *Store) {
		s.hooks = append(s.hooks, hook)
	}
}

// NewStore creates an empty store for root. Call Reindex to publish the
// first snapshot.
func NewStore(root string, registry *tabular.Registry, opts ...Option) *Store {
	s := &Store{root: root, registry: registry, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates a store and builds its first snapshot.
func Open(ctx context.Context, root string, registry *tabular.Registry, opts ...Option) (*Store, error) {
	s := NewStore(root, registry, opts...)
	if _, err := s.Reindex(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reindex builds a fresh snapshot and publishes it. On failure the previous
// snapshot stays current.
func (s *Store) Reindex(ctx context.Context) (*index.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := time.Now()
	idx, err := index.Build(ctx, s.root, s.registry, s.indexOpts...)
	if err != nil {
		s.logger.Error().Err(err).Str("root", s.root).Msg("Reindex failed, keeping previous snapshot")
		return nil, fmt.Errorf("reindex: %w", err)
	}
	elapsed := time.Since(started)

	if cache := s.registry.Cache(); cache != nil {
		cache.Purge()
	}
	s.current.Store(idx)

	s.logger.Info().
		Str("index_id", idx.ID().String()).
		Int("files", idx.Len()).
		Dur("elapsed", elapsed).
		Msg("Snapshot published")

	for _, hook := range s.hooks {
		hook(idx, elapsed)
	}
	return idx, nil
}

// Current returns the published snapshot, or nil before the first build.
func (s *Store) Current() *index.Index {
	return s.current.Load()
}

// Engine returns an aggregation engine bound to the current snapshot.
func (s *Store) Engine() (*aggregate.Engine, error) {
	idx := s.current.Load()
	if idx == nil {
		return nil, ErrNotIndexed
	}
	return aggregate.New(idx, s.engineOpts...), nil
}

// Lookup resolves path against the current snapshot.
func (s *Store) Lookup(path string) (index.Entry, bool) {
	idx := s.current.Load()
	if idx == nil {
		return index.Entry{}, false
	}
	return idx.Lookup(path)
}

// Root is the configured root directory.
func (s *Store) Root() string {
	return s.root
}
