package journal

import (
	"context"
	"log/slog"

	"github.com/roach88/listbind/internal/trace"
)

// Recorder adapts a Store to trace.Recorder.
//
// trace.Recorder cannot return errors, so write failures are logged and
// counted; the binder keeps running.
type Recorder struct {
	ctx      context.Context
	store    *Store
	logger   *slog.Logger
	failures int
}

// NewRecorder returns a Recorder writing to s with ctx. A nil logger means
// slog.Default().
func NewRecorder(ctx context.Context, s *Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{ctx: ctx, store: s, logger: logger}
}

// Record appends ev under ev.Binder.
func (r *Recorder) Record(ev trace.Event) {
	if err := r.store.Append(r.ctx, ev.Binder, ev); err != nil {
		r.failures++
		r.logger.Error("journal append failed",
			"binder", ev.Binder,
			"seq", ev.Seq,
			"kind", ev.Kind,
			"error", err,
		)
	}
}

// Failures returns how many events could not be written.
func (r *Recorder) Failures() int {
	return r.failures
}
