package index

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
)

// ErrorPolicy decides what a per-file failure does to a build.
type ErrorPolicy int

const (
	// PolicyAbort stops the build at the first unsupported or unreadable file.
	PolicyAbort ErrorPolicy = iota
	// PolicySkip logs the failure, leaves the file out and keeps going.
	PolicySkip
)

func (p ErrorPolicy) String() string {
	switch p {
	case PolicyAbort:
		return "abort"
	case PolicySkip:
		return "skip"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy accepts "abort" or "skip" in any case. Empty means abort.
func ParsePolicy(s string) (ErrorPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "abort":
		return PolicyAbort, nil
	case "skip":
		return PolicySkip, nil
	default:
		return PolicyAbort, fmt.Errorf("invalid error policy %q: want abort or skip", s)
	}
}

type options struct {
	ignoreFile string
	workers    int
	onError    ErrorPolicy
	logger     zerolog.Logger
}

func defaultOptions() options {
	return options{
		workers: runtime.GOMAXPROCS(0),
		onError: PolicyAbort,
		logger:  zerolog.Nop(),
	}
}

// Option configures Build.
type Option func(*options)

// WithIgnoreFile applies gitignore-style patterns from path. A relative path
// is resolved against the indexed root.
func WithIgnoreFile(path string) Option {
	return func(o *options) {
		o.ignoreFile = path
	}
}

// WithWorkers bounds the goroutines used to stat files. Values below one are
// ignored.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

func WithOnError(p ErrorPolicy) Option {
	return func(o *options) {
		o.onError = p
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
