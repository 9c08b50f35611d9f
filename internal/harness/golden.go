package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/listbind/internal/trace"
)

// Snapshot renders a result as canonical JSON: the final lists, the
// scenario name and the full trace. Identical runs give identical bytes.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	a := make([]any, len(result.FinalA))
	for i, v := range result.FinalA {
		a[i] = v
	}
	b := result.FinalB
	if b == nil {
		b = []string{}
	}
	events := result.Trace
	if events == nil {
		events = []trace.Event{}
	}
	return trace.MarshalCanonical(map[string]any{
		"scenario": scenarioName,
		"a":        a,
		"b":        b,
		"trace":    events,
	})
}

// RunWithGolden runs a scenario and compares its snapshot with
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...RunOption) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result with its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
