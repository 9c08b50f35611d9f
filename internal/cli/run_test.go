package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/listbind/internal/journal"
	"github.com/roach88/listbind/internal/trace"
)

func TestRunCommandMissingArgs(t *testing.T) {
	_, _, err := execute(NewRunCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestRunCommandMissingScenario(t *testing.T) {
	_, _, err := execute(NewRunCommand(&RootOptions{Format: "text"}), "/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunCommandPassingScenarioText(t *testing.T) {
	path := writeFile(t, t.TempDir(), "passing.yaml", passingScenario)

	out, _, err := execute(NewRunCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ passing (binder passing")
	assert.Contains(t, out, "A: [1 2]")
	assert.Contains(t, out, "B: [1 2]")
}

func TestRunCommandPassingScenarioJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "passing.yaml", passingScenario)

	out, _, err := execute(NewRunCommand(&RootOptions{Format: "json"}), path)
	require.NoError(t, err)

	var result RunResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, result.Pass)
	assert.Equal(t, []int{1, 2}, result.FinalA)
	assert.Equal(t, []string{"1", "2"}, result.FinalB)
	assert.Equal(t, int64(1), result.FirstSeq)
	assert.Equal(t, int64(result.Events), result.LastSeq)
}

func TestRunCommandFailingScenario(t *testing.T) {
	path := writeFile(t, t.TempDir(), "failing.yaml", failingScenario)

	out, _, err := execute(NewRunCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ failing")
	assert.Contains(t, out, "list A mismatch")
}

func TestRunCommandVerboseTraceGoesToStderr(t *testing.T) {
	path := writeFile(t, t.TempDir(), "passing.yaml", passingScenario)

	out, errOut, err := execute(NewRunCommand(&RootOptions{Format: "json", Verbose: true}), path)
	require.NoError(t, err)
	assert.Contains(t, errOut, "[1] attach A x1")
	assert.Contains(t, errOut, "replayed B add @1 x1")
	decodeResponse(t, out, nil)
}

func TestRunCommandJournalsAndResumesSequence(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "passing.yaml", passingScenario)
	dbPath := filepath.Join(dir, "journal.db")

	out, _, err := execute(NewRunCommand(&RootOptions{Format: "json"}), path, "--db", dbPath)
	require.NoError(t, err)
	var first RunResult
	decodeResponse(t, out, &first)

	out, _, err = execute(NewRunCommand(&RootOptions{Format: "json"}), path, "--db", dbPath)
	require.NoError(t, err)
	var second RunResult
	decodeResponse(t, out, &second)

	assert.Equal(t, first.LastSeq+1, second.FirstSeq)
	assert.Equal(t, dbPath, second.Journal)

	st, err := journal.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	events, err := st.Events(context.Background(), "passing")
	require.NoError(t, err)
	assert.Len(t, events, first.Events+second.Events)

	closes, err := st.EventsOfKind(context.Background(), "passing", trace.KindClose)
	require.NoError(t, err)
	assert.Len(t, closes, 2)
}

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		ev   trace.Event
		want string
	}{
		{trace.Event{Seq: 3, Kind: trace.KindClose, Index: -1, ToIndex: -1}, "[3] close"},
		{trace.Event{Seq: 4, Kind: trace.KindReplayed, Side: "B", Action: "move", Index: 0, ToIndex: 2, Count: 1}, "[4] replayed B move @0->2 x1"},
		{trace.Event{Seq: 5, Kind: trace.KindProperty, Side: "A", Index: 1, ToIndex: -1, Property: "Name", Strategy: "relay"}, "[5] property A @1 .Name (relay)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatEvent(tt.ev))
	}
}
