package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/listbind/internal/journal"
	"github.com/roach88/listbind/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Binder   string
	Kind     string // optional - filter to one event kind
}

// TraceStats summarizes a binder's journaled events.
type TraceStats struct {
	TotalEvents int `json:"total_events"`
	Observed    int `json:"observed"`
	Replayed    int `json:"replayed"`
	Suppressed  int `json:"suppressed"`
	Violations  int `json:"violations"`
	Rebinds     int `json:"rebinds"`
	Properties  int `json:"properties"`
}

// TraceResult is the output for one binder.
type TraceResult struct {
	Binder   string        `json:"binder"`
	Timeline []trace.Event `json:"timeline"`
	Stats    TraceStats    `json:"stats"`
}

// BinderList is the output when no binder is selected.
type BinderList struct {
	Binders []BinderInfo `json:"binders"`
}

// BinderInfo describes one journaled binder.
type BinderInfo struct {
	Name     string `json:"name"`
	FirstSeq int64  `json:"first_seq"`
	LastSeq  int64  `json:"last_seq"`
	Events   int    `json:"events"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show journaled binder activity",
		Long: `Query a journal written by "listbind run --db".

Without --binder, lists every journaled binder with its sequence range.
With --binder, prints the binder's timeline in sequence order plus
summary statistics.

Examples:
  listbind trace --db ./listbind.db
  listbind trace --db ./listbind.db --binder people
  listbind trace --db ./listbind.db --binder people --kind violation
  listbind trace --db ./listbind.db --binder people --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Binder, "binder", "", "binder to trace")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "filter to one event kind (observed, replayed, violation, ...)")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Open would create an empty journal; a typo in --db should fail instead.
	if _, err := os.Stat(opts.Database); err != nil {
		return WrapExitError(ExitCommandError, "journal not found", err)
	}

	st, err := journal.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.Binder == "" {
		return listBinders(ctx, st, formatter)
	}
	if opts.Kind != "" && !isKnownKind(trace.Kind(opts.Kind)) {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown event kind %q", opts.Kind))
	}

	var events []trace.Event
	if opts.Kind != "" {
		events, err = st.EventsOfKind(ctx, opts.Binder, trace.Kind(opts.Kind))
	} else {
		events, err = st.Events(ctx, opts.Binder)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	result := TraceResult{
		Binder:   opts.Binder,
		Timeline: events,
		Stats:    computeStats(events),
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	if len(events) == 0 {
		fmt.Fprintf(w, "No events found for binder: %s\n", opts.Binder)
		return nil
	}

	fmt.Fprintf(w, "Binder: %s\n\nTimeline:\n", opts.Binder)
	for _, ev := range events {
		fmt.Fprintf(w, "  %s\n", formatEvent(ev))
	}
	s := result.Stats
	fmt.Fprintf(w, "\nStats: %d events, %d observed, %d replayed, %d suppressed, %d violations, %d rebinds, %d properties\n",
		s.TotalEvents, s.Observed, s.Replayed, s.Suppressed, s.Violations, s.Rebinds, s.Properties)
	return nil
}

func listBinders(ctx context.Context, st *journal.Store, formatter *OutputFormatter) error {
	summaries, err := st.Binders(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list binders", err)
	}

	list := BinderList{Binders: make([]BinderInfo, 0, len(summaries))}
	for _, s := range summaries {
		list.Binders = append(list.Binders, BinderInfo{
			Name:     s.Name,
			FirstSeq: s.FirstSeq,
			LastSeq:  s.LastSeq,
			Events:   s.Events,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(list)
	}

	w := formatter.Writer
	if len(list.Binders) == 0 {
		fmt.Fprintln(w, "No binders journaled.")
		return nil
	}
	for _, b := range list.Binders {
		fmt.Fprintf(w, "%s\tseq %d-%d\t%d events\n", b.Name, b.FirstSeq, b.LastSeq, b.Events)
	}
	return nil
}

func computeStats(events []trace.Event) TraceStats {
	s := TraceStats{TotalEvents: len(events)}
	for _, ev := range events {
		switch ev.Kind {
		case trace.KindObserved:
			s.Observed++
		case trace.KindReplayed:
			s.Replayed++
		case trace.KindSuppressed:
			s.Suppressed++
		case trace.KindViolation:
			s.Violations++
		case trace.KindRebind:
			s.Rebinds++
		case trace.KindProperty:
			s.Properties++
		}
	}
	return s
}

func isKnownKind(k trace.Kind) bool {
	switch k {
	case trace.KindObserved, trace.KindSuppressed, trace.KindReplayed,
		trace.KindViolation, trace.KindAttach, trace.KindDetach,
		trace.KindRebind, trace.KindProperty, trace.KindClose:
		return true
	}
	return false
}
