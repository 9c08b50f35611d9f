package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/listbind/internal/binding"
	"github.com/roach88/listbind/internal/trace"
)

func TestRun_TestdataScenariosPass(t *testing.T) {
	files, err := filepath.Glob("testdata/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_BinderNameDefaultsToScenario(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "named",
		Description: "d",
		Steps:       []Step{{List: "A", Op: OpClear}},
	})
	require.NoError(t, err)
	assert.Equal(t, "named", result.Binder)
	for _, ev := range result.Trace {
		assert.Equal(t, "named", ev.Binder)
	}
}

func TestRun_InlineConfigName(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "s",
		Description: "d",
		Config:      &InlineConfig{Name: "people"},
		Steps:       []Step{{List: "A", Op: OpClear}},
	})
	require.NoError(t, err)
	assert.Equal(t, "people", result.Binder)
}

func TestRun_ConfigFile(t *testing.T) {
	scenario, err := LoadScenario("testdata/pinned_source_b.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "pinned-b", result.Binder)
}

func TestRun_InvalidInlineConfigFailsSetup(t *testing.T) {
	_, err := Run(&Scenario{
		Name:        "s",
		Description: "d",
		Config:      &InlineConfig{Source: "C"},
		Steps:       []Step{{List: "A", Op: OpClear}},
	})
	require.Error(t, err)
	assert.True(t, binding.IsInvalidConfiguration(err))
}

func TestRun_UnexpectedStepErrorFails(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "s",
		Description: "d",
		Steps:       []Step{{List: "A", Op: OpRemoveAt, Index: 3}},
	})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "unexpected error")
}

func TestRun_MissingExpectedErrorFails(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "s",
		Description: "d",
		InitialA:    []int{1},
		Steps:       []Step{{List: "B", Op: OpAdd, Items: []string{"2"}, ExpectError: ErrOneWayViolation}},
	})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "expected one_way_violation error, got none")
}

func TestRun_ConversionErrorPropagates(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "s",
		Description: "d",
		Steps: []Step{
			{List: "B", Op: OpAdd, Items: []string{"not-a-number"}, ExpectError: ErrConversion},
		},
		Expect: &Expect{A: []int{}, B: []string{"not-a-number"}},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_ExpectMismatch(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "s",
		Description: "d",
		InitialA:    []int{1},
		Steps:       []Step{{List: "A", Op: OpAdd, Items: []string{"2"}}},
		Expect:      &Expect{A: []int{1}, B: []string{"1", "2"}},
	})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "list A mismatch")
}

func TestRun_SetBidirectionalStep(t *testing.T) {
	off := false
	result, err := Run(&Scenario{
		Name:        "s",
		Description: "d",
		Config:      &InlineConfig{Bidirectional: &off},
		InitialA:    []int{1},
		Steps: []Step{
			{Op: OpSetBidirectional, Value: "true"},
			{List: "B", Op: OpAdd, Items: []string{"2"}},
		},
		Expect: &Expect{A: []int{1, 2}, B: []string{"1", "2"}},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_ListOperations(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "s",
		Description: "d",
		InitialA:    []int{1, 2, 3, 4},
		Steps: []Step{
			{List: "A", Op: OpInsert, Index: 1, Items: []string{"10", "11"}},
			{List: "B", Op: OpRemoveRange, Index: 0, Count: 2},
			{List: "A", Op: OpMove, Index: 0, To: 3},
			{List: "B", Op: OpSet, Index: 0, Value: "42"},
			{List: "A", Op: OpReset, Items: []string{"7", "8"}},
		},
		Expect: &Expect{A: []int{7, 8}, B: []string{"7", "8"}},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_ExtraRecorderSeesEveryEvent(t *testing.T) {
	extra := &trace.Buffer{}
	result, err := Run(&Scenario{
		Name:        "s",
		Description: "d",
		InitialA:    []int{1},
		Steps:       []Step{{List: "A", Op: OpClear}},
	}, WithRecorder(extra))
	require.NoError(t, err)
	assert.Equal(t, result.Trace, extra.Events())
}

func TestRun_WithClockResumesSequence(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "s",
		Description: "d",
		Steps:       []Step{{List: "A", Op: OpClear}},
	}, WithClock(binding.NewClockAt(100)))
	require.NoError(t, err)
	require.NotEmpty(t, result.Trace)
	assert.Equal(t, int64(101), result.Trace[0].Seq)
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/end_to_end.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := Snapshot(scenario.Name, first)
	require.NoError(t, err)
	b, err := Snapshot(scenario.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestScenario_BinderName(t *testing.T) {
	fromFile, err := LoadScenario("testdata/pinned_source_b.yaml")
	require.NoError(t, err)
	name, err := fromFile.BinderName()
	require.NoError(t, err)
	assert.Equal(t, "pinned-b", name)

	inline := &Scenario{Name: "s", Config: &InlineConfig{Name: "people"}}
	name, err = inline.BinderName()
	require.NoError(t, err)
	assert.Equal(t, "people", name)

	plain := &Scenario{Name: "s"}
	name, err = plain.BinderName()
	require.NoError(t, err)
	assert.Equal(t, "s", name)
}
