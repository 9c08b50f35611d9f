package harness

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/roach88/listbind/internal/trace"
)

// AssertionError is returned when an assertion fails.
// It includes the full trace for debugging context.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []trace.Event
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, ev := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s", ev.Seq, ev.Kind)
		if ev.Side != "" {
			fmt.Fprintf(&buf, " %s", ev.Side)
		}
		if ev.Action != "" {
			fmt.Fprintf(&buf, " %s", ev.Action)
		}
		if ev.Index >= 0 {
			fmt.Fprintf(&buf, " @%d", ev.Index)
		}
		buf.WriteByte('\n')
	}

	return buf.String()
}

// matches reports whether ev passes the assertion's kind/side/action filter.
// Empty filter fields match anything.
func (a Assertion) matches(ev trace.Event) bool {
	if string(ev.Kind) != a.Kind {
		return false
	}
	if a.Side != "" && ev.Side != a.Side {
		return false
	}
	if a.Action != "" && ev.Action != a.Action {
		return false
	}
	return true
}

// assertTraceCount checks how many events match the filter.
func assertTraceCount(events []trace.Event, a Assertion) error {
	count := 0
	for _, ev := range events {
		if a.matches(ev) {
			count++
		}
	}
	if count == a.Count {
		return nil
	}

	filter := a.Kind
	if a.Side != "" {
		filter += " side=" + a.Side
	}
	if a.Action != "" {
		filter += " action=" + a.Action
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%d %s events", a.Count, filter),
		Actual:   fmt.Sprintf("%d events", count),
		Trace:    events,
	}
}

// assertTraceOrder checks that the kinds appear in the given relative order.
// Events need not be consecutive; each expected kind matches the first
// event of that kind after the previous match.
func assertTraceOrder(events []trace.Event, a Assertion) error {
	pos := 0
	for _, want := range a.Kinds {
		i := slices.IndexFunc(events[pos:], func(ev trace.Event) bool {
			return string(ev.Kind) == want
		})
		if i < 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("kinds in order %v", a.Kinds),
				Actual:   fmt.Sprintf("no %s event after seq %d", want, seqBefore(events, pos)),
				Trace:    events,
			}
		}
		pos += i + 1
	}
	return nil
}

func seqBefore(events []trace.Event, pos int) int64 {
	if pos == 0 {
		return 0
	}
	return events[pos-1].Seq
}

// assertListEquals compares a final list, rendered as strings.
func assertListEquals(result *Result, a Assertion) error {
	var actual []string
	if a.List == "A" {
		actual = make([]string, len(result.FinalA))
		for i, v := range result.FinalA {
			actual[i] = strconv.Itoa(v)
		}
	} else {
		actual = result.FinalB
	}

	want := a.Items
	if want == nil {
		want = []string{}
	}
	if slices.Equal(want, actual) {
		return nil
	}
	return &AssertionError{
		Type:     AssertListEquals,
		Expected: fmt.Sprintf("list %s = %s", a.List, strings.TrimSpace(spew.Sdump(want))),
		Actual:   strings.TrimSpace(spew.Sdump(actual)),
		Trace:    result.Trace,
	}
}

// EvaluateAssertions checks every assertion against a finished result and
// returns one message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertListEquals:
			err = assertListEquals(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}
