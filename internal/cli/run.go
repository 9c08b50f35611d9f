package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/listbind/internal/binding"
	"github.com/roach88/listbind/internal/harness"
	"github.com/roach88/listbind/internal/journal"
	"github.com/roach88/listbind/internal/trace"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
}

// RunResult is the outcome of a single scenario run.
type RunResult struct {
	Scenario string   `json:"scenario"`
	Binder   string   `json:"binder"`
	Pass     bool     `json:"pass"`
	Events   int      `json:"events"`
	FinalA   []int    `json:"final_a"`
	FinalB   []string `json:"final_b"`
	Errors   []string `json:"errors,omitempty"`
	Journal  string   `json:"journal,omitempty"`
	FirstSeq int64    `json:"first_seq"`
	LastSeq  int64    `json:"last_seq"`
}

func (r RunResult) String() string {
	var b strings.Builder
	mark := "✓"
	if !r.Pass {
		mark = "✗"
	}
	fmt.Fprintf(&b, "%s %s (binder %s, %d events, seq %d-%d)\n",
		mark, r.Scenario, r.Binder, r.Events, r.FirstSeq, r.LastSeq)
	fmt.Fprintf(&b, "  A: %s\n", formatInts(r.FinalA))
	fmt.Fprintf(&b, "  B: [%s]", strings.Join(r.FinalB, " "))
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "\n  %s", e)
	}
	if r.Journal != "" {
		fmt.Fprintf(&b, "\n  journal: %s", r.Journal)
	}
	return b.String()
}

func formatInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run one binding scenario",
		Long: `Run a single scenario: bind list A (ints) to list B (strings),
apply the scenario's steps and report the final lists.

With --db every trace event is appended to a SQLite journal. Sequence
numbers continue from the binder's last journaled event, so repeated runs
build one history per binder.

Examples:
  listbind run ./scenarios/reorder.yaml
  listbind run ./scenarios/reorder.yaml --db ./listbind.db --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "append trace events to this SQLite journal")

	return cmd
}

func runScenarioFile(opts *RunOptions, path string, cmd *cobra.Command) error {
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	runOpts := []harness.RunOption{harness.WithLogger(logger)}

	var rec *journal.Recorder
	if opts.Database != "" {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		st, err := journal.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing journal", "error", closeErr)
			}
		}()

		name, err := scenario.BinderName()
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to resolve binder", err)
		}
		last, err := st.MaxSeq(ctx, name)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read journal", err)
		}
		formatter.VerboseLog("journal %s: binder %s resumes after seq %d", opts.Database, name, last)

		rec = journal.NewRecorder(ctx, st, logger)
		runOpts = append(runOpts,
			harness.WithRecorder(rec),
			harness.WithClock(binding.NewClockAt(last)),
		)
	}

	result, err := harness.Run(scenario, runOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}

	for _, ev := range result.Trace {
		formatter.VerboseLog("%s", formatEvent(ev))
	}

	out := RunResult{
		Scenario: scenario.Name,
		Binder:   result.Binder,
		Pass:     result.Pass,
		Events:   len(result.Trace),
		FinalA:   result.FinalA,
		FinalB:   result.FinalB,
		Errors:   result.Errors,
		Journal:  opts.Database,
	}
	if n := len(result.Trace); n > 0 {
		out.FirstSeq = result.Trace[0].Seq
		out.LastSeq = result.Trace[n-1].Seq
	}

	if rec != nil && rec.Failures() > 0 {
		msg := fmt.Sprintf("%d trace event(s) could not be journaled", rec.Failures())
		if err := formatter.Failure(ErrCodeJournal, msg, out); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	if !result.Pass {
		msg := fmt.Sprintf("scenario %s failed", scenario.Name)
		if err := formatter.Failure(ErrCodeScenario, msg, out); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	return formatter.Success(out)
}

// formatEvent renders one trace event on a single line.
func formatEvent(ev trace.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %s", ev.Seq, ev.Kind)
	if ev.Side != "" {
		fmt.Fprintf(&b, " %s", ev.Side)
	}
	if ev.Action != "" {
		fmt.Fprintf(&b, " %s", ev.Action)
	}
	if ev.Index >= 0 {
		fmt.Fprintf(&b, " @%d", ev.Index)
	}
	if ev.ToIndex >= 0 {
		fmt.Fprintf(&b, "->%d", ev.ToIndex)
	}
	if ev.Count > 0 {
		fmt.Fprintf(&b, " x%d", ev.Count)
	}
	if ev.Property != "" {
		fmt.Fprintf(&b, " .%s (%s)", ev.Property, ev.Strategy)
	}
	return b.String()
}
