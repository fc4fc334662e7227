package pipeline

import (
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateIdle, "idle"},
		{StateFetching, "fetching"},
		{StateDispatching, "dispatching"},
		{StateDraining, "draining"},
		{StateDone, "done"},
		{StateFailed, "failed"},
		{StateSkipped, "skipped"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.expected)
		}
	}
}

func TestSummary_Totals(t *testing.T) {
	summary := Summary{Runs: []Stats{
		{Pages: 1, Observed: 3, Dispatched: 2, Succeeded: 2, Written: 2, Elapsed: time.Second},
		{Pages: 2, Observed: 5, Skipped: 1, Duplicates: 1, Dispatched: 3, Succeeded: 2, Written: 1, Failed: 1, Elapsed: time.Second},
	}}

	got := summary.Totals()
	want := Stats{
		List: "all playlists", State: StateDone,
		Pages: 3, Observed: 8, Skipped: 1, Duplicates: 1, Dispatched: 5,
		Succeeded: 4, Written: 3, Failed: 1, Elapsed: 2 * time.Second,
	}
	if got != want {
		t.Errorf("Totals() = %+v, want %+v", got, want)
	}
}

func TestStats_MarshalLogObject(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	zap.New(core).Info("pass complete", zap.Object("stats", Stats{List: "x", State: StateDone, Written: 4}))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	fields, ok := entries[0].ContextMap()["stats"].(map[string]interface{})
	if !ok {
		t.Fatalf("stats field not encoded as object: %#v", entries[0].ContextMap())
	}
	if fields["state"] != "done" || fmt.Sprint(fields["written"]) != "4" {
		t.Errorf("unexpected encoded stats: %#v", fields)
	}
}
