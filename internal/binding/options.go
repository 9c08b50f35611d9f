package binding

import (
	"log/slog"

	"github.com/roach88/listbind/internal/trace"
)

// Option configures a Binder.
type Option func(*options)

type options struct {
	name     string
	config   Config
	logger   *slog.Logger
	recorder trace.Recorder
	tokens   TokenGenerator
	clock    Sequencer
	pinned   bool
	custom   any // customMaps[A, B], checked in New
}

func defaultOptions() options {
	return options{
		name:     "binder",
		config:   DefaultConfig(),
		recorder: trace.Discard,
		tokens:   UUIDv7Generator{},
	}
}

// WithName labels the binder in logs, traces and errors.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithConfig sets the initial configuration. Default: DefaultConfig().
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRecorder sends trace events to r.
func WithRecorder(r trace.Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

// WithTokenGenerator overrides the pair token generator (tests use a
// deterministic one). Default: UUIDv7Generator.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(o *options) {
		o.tokens = g
	}
}

// WithClock sets the sequencer that stamps trace events. Default: a new
// Clock per binder.
func WithClock(c Sequencer) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithPinnedSource fixes the source of truth at construction; SetSource
// then fails with an unsupported configuration error.
func WithPinnedSource() Option {
	return func(o *options) {
		o.pinned = true
	}
}

// PropertyMap copies whatever it wants from src to dst after a property of
// src changed. Errors are returned unwrapped to whoever raised the change.
type PropertyMap[Src, Dst any] func(change PropertyChange, src Src, dst Dst) error

type customMaps[A, B any] struct {
	forward PropertyMap[A, B]
	reverse PropertyMap[B, A]
}

// WithCustomMap supplies the handlers for StrategyCustom. forward handles
// edits on list A items, reverse edits on list B items; either may be nil
// when that direction is never wired. The type parameters must match the
// binder's, otherwise New fails.
func WithCustomMap[A, B any](forward PropertyMap[A, B], reverse PropertyMap[B, A]) Option {
	return func(o *options) {
		o.custom = customMaps[A, B]{forward: forward, reverse: reverse}
	}
}
