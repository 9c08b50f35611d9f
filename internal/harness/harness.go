package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"

	"github.com/davecgh/go-spew/spew"

	"github.com/roach88/listbind/internal/binding"
	"github.com/roach88/listbind/internal/config"
	"github.com/roach88/listbind/internal/observable"
	"github.com/roach88/listbind/internal/testutil"
	"github.com/roach88/listbind/internal/trace"
)

// RunOption configures Run.
type RunOption func(*runOptions)

type runOptions struct {
	recorder trace.Recorder
	clock    binding.Sequencer
	logger   *slog.Logger
}

// WithRecorder also sends every trace event to r (the CLI passes a journal
// recorder here).
func WithRecorder(r trace.Recorder) RunOption {
	return func(o *runOptions) {
		o.recorder = r
	}
}

// WithClock overrides the sequencer. Default: a fresh testutil.StepClock,
// so sequence numbers start at 1.
func WithClock(c binding.Sequencer) RunOption {
	return func(o *runOptions) {
		o.clock = c
	}
}

// WithLogger sets the binder's logger. Default: discard.
func WithLogger(l *slog.Logger) RunOption {
	return func(o *runOptions) {
		o.logger = l
	}
}

// run holds the lists a scenario mutates. The harness keeps its own
// references so a detached list can still be edited and inspected.
type run struct {
	binder *binding.Binder[int, string]
	listA  *observable.List[int]
	listB  *observable.List[string]
}

// Run executes a scenario against a Binder[int, string].
//
// Setup failures (bad config, binder construction) are returned as errors.
// Step, expectation and assertion failures are collected in Result.
func Run(scenario *Scenario, opts ...RunOption) (*Result, error) {
	o := runOptions{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock == nil {
		o.clock = testutil.NewStepClock()
	}

	binderOpts, name, err := binderOptions(scenario)
	if err != nil {
		return nil, err
	}

	buf := &trace.Buffer{}
	var rec trace.Recorder = buf
	if o.recorder != nil {
		rec = trace.Multi(buf, o.recorder)
	}
	binderOpts = append(binderOpts,
		binding.WithLogger(o.logger),
		binding.WithRecorder(rec),
		binding.WithClock(o.clock),
		binding.WithTokenGenerator(testutil.NewSequentialTokens("")),
	)

	b, err := binding.New[int, string](itoa, strconv.Atoi, binderOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create binder: %w", err)
	}

	r := &run{
		binder: b,
		listA:  observable.NewList(scenario.InitialA...),
		listB:  observable.NewList(scenario.InitialB...),
	}

	result := NewResult()
	result.Binder = name

	if err := b.AttachA(r.listA); err != nil {
		result.AddError(fmt.Sprintf("attach A: %v", err))
	}
	if err := b.AttachB(r.listB); err != nil {
		result.AddError(fmt.Sprintf("attach B: %v", err))
	}

	for i, step := range scenario.Steps {
		err := r.apply(step)
		if msg := checkStepError(step.ExpectError, err); msg != "" {
			result.AddError(fmt.Sprintf("steps[%d] %s %s: %s", i, step.List, step.Op, msg))
		}
	}

	if err := b.Close(); err != nil {
		result.AddError(fmt.Sprintf("close: %v", err))
	}

	result.Trace = buf.Events()
	result.FinalA = r.listA.Items()
	result.FinalB = r.listB.Items()

	if scenario.Expect != nil {
		checkExpect(result, scenario.Expect)
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func itoa(v int) (string, error) {
	return strconv.Itoa(v), nil
}

// binderOptions resolves the scenario's configuration and the binder name.
func binderOptions(s *Scenario) ([]binding.Option, string, error) {
	if s.ConfigFile != "" {
		loaded, err := config.Load(s.ConfigFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		return loaded.Options(), loaded.Name, nil
	}

	name := s.inlineName()
	opts := []binding.Option{
		binding.WithName(name),
		binding.WithConfig(s.Config.BinderConfig()),
	}
	if s.Config != nil && s.Config.PinSource {
		opts = append(opts, binding.WithPinnedSource())
	}
	return opts, name, nil
}

// BinderName returns the name the scenario's binder runs under: the
// config file's name, the inline config's name, or the scenario name.
func (s *Scenario) BinderName() (string, error) {
	if s.ConfigFile != "" {
		loaded, err := config.Load(s.ConfigFile)
		if err != nil {
			return "", fmt.Errorf("failed to load config: %w", err)
		}
		return loaded.Name, nil
	}
	return s.inlineName(), nil
}

func (s *Scenario) inlineName() string {
	if s.Config != nil && s.Config.Name != "" {
		return s.Config.Name
	}
	return s.Name
}

// apply performs one step. Errors come straight from the list or binder.
func (r *run) apply(step Step) error {
	switch step.Op {
	case OpSetBidirectional:
		return r.binder.SetBidirectional(step.Value == "true")
	case OpSetSource:
		return r.binder.SetSource(binding.Side(step.Value))
	}

	if step.List == "A" {
		items, err := parseInts(step.Items)
		if err != nil {
			return err
		}
		return applyList(step, r.listA, items, strconv.Atoi, func(l *observable.List[int]) error {
			if l == nil {
				return r.binder.AttachA(nil)
			}
			r.listA = l
			return r.binder.AttachA(l)
		})
	}
	return applyList(step, r.listB, step.Items, identity, func(l *observable.List[string]) error {
		if l == nil {
			return r.binder.AttachB(nil)
		}
		r.listB = l
		return r.binder.AttachB(l)
	})
}

// applyList runs a structural op on one list. attach replaces the harness
// reference before handing it to the binder; detach keeps the old list.
func applyList[T any](
	step Step,
	list *observable.List[T],
	items []T,
	parse func(string) (T, error),
	attach func(*observable.List[T]) error,
) error {
	switch step.Op {
	case OpAdd:
		return list.Append(items...)
	case OpInsert:
		return list.InsertAll(step.Index, items...)
	case OpRemoveAt:
		return list.RemoveAt(step.Index)
	case OpRemoveRange:
		return list.RemoveRange(step.Index, step.Count)
	case OpSet:
		v, err := parse(step.Value)
		if err != nil {
			return err
		}
		return list.Set(step.Index, v)
	case OpMove:
		return list.Move(step.Index, step.To)
	case OpClear:
		return list.Clear()
	case OpReset:
		return list.Reset(items)
	case OpAttach:
		return attach(observable.NewList(items...))
	case OpDetach:
		return attach(nil)
	}
	return fmt.Errorf("unknown op %q", step.Op)
}

func identity(s string) (string, error) {
	return s, nil
}

func parseInts(items []string) ([]int, error) {
	out := make([]int, 0, len(items))
	for _, s := range items {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// checkStepError compares a step's error with its expectation and returns
// a failure message, or "" when they agree.
func checkStepError(expect string, err error) string {
	if expect == "" {
		if err != nil {
			return fmt.Sprintf("unexpected error: %v", err)
		}
		return ""
	}
	if err == nil {
		return fmt.Sprintf("expected %s error, got none", expect)
	}
	if !matchesError(expect, err) {
		return fmt.Sprintf("expected %s error, got: %v", expect, err)
	}
	return ""
}

func matchesError(expect string, err error) bool {
	switch expect {
	case ErrOneWayViolation:
		return binding.IsOneWayViolation(err)
	case ErrUnsupportedConfiguration:
		return binding.IsUnsupportedConfiguration(err)
	case ErrInvalidConfiguration:
		return binding.IsInvalidConfiguration(err)
	case ErrConversion:
		var numErr *strconv.NumError
		return errors.As(err, &numErr)
	case ErrAny:
		return true
	}
	return false
}

func checkExpect(result *Result, expect *Expect) {
	if expect.A != nil && !slices.Equal(expect.A, result.FinalA) {
		result.AddError(fmt.Sprintf("list A mismatch:\nexpected: %sactual:   %s",
			spew.Sdump(expect.A), spew.Sdump(result.FinalA)))
	}
	if expect.B != nil && !slices.Equal(expect.B, result.FinalB) {
		result.AddError(fmt.Sprintf("list B mismatch:\nexpected: %sactual:   %s",
			spew.Sdump(expect.B), spew.Sdump(result.FinalB)))
	}
}
