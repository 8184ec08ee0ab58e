package index

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/sourcegraph/conc/iter"

	"github.com/ZanzyTHEbar/file-lens/flens/tabular"
)

var errNotDirectory = errors.New("not a directory")

// describeResult is the outcome of inspecting one walked path.
type describeResult struct {
	entry Entry
	err   error
	skip  bool
}

type builder struct {
	root     string
	registry *tabular.Registry
	opts     options
	ignored  *ignore.GitIgnore
	skipped  *multierror.Error
}

// Build walks root and indexes every file whose extension the registry
// knows. Under PolicyAbort the first unsupported or unreadable file fails
// the whole build and no index is returned.
func Build(ctx context.Context, root string, registry *tabular.Registry, opts ...Option) (*Index, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, &tabular.IOError{Path: root, Err: err}
	}
	abs = filepath.Clean(abs)

	info, err := os.Stat(abs)
	if err != nil {
		return nil, &tabular.IOError{Path: abs, Err: err}
	}
	if !info.IsDir() {
		return nil, &tabular.IOError{Path: abs, Err: errNotDirectory}
	}
	// WalkDir does not descend into a symlinked root.
	if linfo, err := os.Lstat(abs); err == nil && linfo.Mode()&fs.ModeSymlink != 0 {
		if abs, err = filepath.EvalSymlinks(abs); err != nil {
			return nil, &tabular.IOError{Path: root, Err: err}
		}
	}

	b := &builder{root: abs, registry: registry, opts: o}
	if err := b.loadIgnoreFile(); err != nil {
		return nil, err
	}

	started := time.Now()
	candidates, err := b.walk(ctx)
	if err != nil {
		return nil, err
	}

	mapper := iter.Mapper[string, describeResult]{MaxGoroutines: o.workers}
	results := mapper.Map(candidates, func(path *string) describeResult {
		return b.describe(*path)
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx := &Index{
		id:      uuid.New(),
		root:    abs,
		builtAt: time.Now(),
		entries: make([]Entry, 0, len(results)),
		paths:   newPathIndex(),
	}
	for _, res := range results {
		switch {
		case res.err != nil:
			if err := b.fail(res.err); err != nil {
				return nil, err
			}
		case res.skip:
			continue
		default:
			idx.paths.insert(res.entry.Path, len(idx.entries))
			idx.entries = append(idx.entries, res.entry)
		}
	}
	idx.skipped = b.skipped

	o.logger.Info().
		Str("root", abs).
		Str("index_id", idx.id.String()).
		Int("files", len(idx.entries)).
		Int("skipped", skippedCount(b.skipped)).
		Dur("elapsed", time.Since(started)).
		Msg("Index built")

	return idx, nil
}

func (b *builder) loadIgnoreFile() error {
	if b.opts.ignoreFile == "" {
		return nil
	}
	path := b.opts.ignoreFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(b.root, path)
	}

	ignored, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return &tabular.IOError{Path: path, Err: err}
	}
	b.ignored = ignored
	return nil
}

// walk collects candidate file paths in lexical walk order.
func (b *builder) walk(ctx context.Context) ([]string, error) {
	var candidates []string
	err := filepath.WalkDir(b.root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == b.root {
				return &tabular.IOError{Path: path, Err: walkErr}
			}
			if err := b.fail(&tabular.IOError{Path: path, Err: walkErr}); err != nil {
				return err
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if path != b.root && b.isIgnored(path, d.IsDir()) {
			b.opts.logger.Debug().Str("path", path).Msg("Ignored by pattern")
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.IsDir() {
			candidates = append(candidates, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

func (b *builder) isIgnored(path string, dir bool) bool {
	if b.ignored == nil {
		return false
	}
	rel, err := filepath.Rel(b.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if b.ignored.MatchesPath(rel) {
		return true
	}
	return dir && b.ignored.MatchesPath(rel+"/")
}

// describe stats path, following symlinks, and binds its format reader.
func (b *builder) describe(path string) describeResult {
	info, err := os.Stat(path)
	if err != nil {
		return describeResult{err: &tabular.IOError{Path: path, Err: err}}
	}
	if !info.Mode().IsRegular() {
		b.opts.logger.Debug().Str("path", path).Str("mode", info.Mode().String()).Msg("Skipping non-regular file")
		return describeResult{skip: true}
	}

	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)

	ctor, err := b.registry.Resolve(name, ext, path)
	if err != nil {
		return describeResult{err: err}
	}

	return describeResult{entry: Entry{
		Descriptor: Descriptor{
			Name:       name,
			Extension:  ext,
			Path:       path,
			Dir:        filepath.Dir(path),
			SizeBytes:  info.Size(),
			ModifiedAt: info.ModTime(),
		},
		File: ctor(path, b.registry.Cache()),
	}}
}

// fail applies the error policy: abort returns err, skip records it.
func (b *builder) fail(err error) error {
	if b.opts.onError == PolicyAbort {
		return fmt.Errorf("index %s: %w", b.root, err)
	}
	b.opts.logger.Warn().Err(err).Msg("Skipping file")
	b.skipped = multierror.Append(b.skipped, err)
	return nil
}

func skippedCount(m *multierror.Error) int {
	if m == nil {
		return 0
	}
	return len(m.Errors)
}
