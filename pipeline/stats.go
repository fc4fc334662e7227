package pipeline

import (
	"time"

	"go.uber.org/zap/zapcore"
)

// State is the orchestrator's position in a pass
type State int

const (
	StateIdle State = iota
	StateFetching
	StateDispatching
	StateDraining
	StateDone
	StateFailed
	StateSkipped
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateDispatching:
		return "dispatching"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	case StateSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Stats summarizes one pass over a source.
type Stats struct {
	List       string        `json:"list"`
	State      State         `json:"state"`
	Pages      int           `json:"pages"`
	Observed   int           `json:"observed"`   // items seen, converted or not
	Skipped    int           `json:"skipped"`    // conversion failures
	Duplicates int           `json:"duplicates"` // already claimed earlier in the run
	Dispatched int           `json:"dispatched"`
	Succeeded  int           `json:"succeeded"`
	Written    int           `json:"written"` // succeeded and produced a file
	Failed     int           `json:"failed"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Add accumulates other into s
func (s *Stats) Add(other Stats) {
	s.Pages += other.Pages
	s.Observed += other.Observed
	s.Skipped += other.Skipped
	s.Duplicates += other.Duplicates
	s.Dispatched += other.Dispatched
	s.Succeeded += other.Succeeded
	s.Written += other.Written
	s.Failed += other.Failed
	s.Elapsed += other.Elapsed
}

// MarshalLogObject implements zapcore.ObjectMarshaler
func (s Stats) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("list", s.List)
	enc.AddString("state", s.State.String())
	enc.AddInt("pages", s.Pages)
	enc.AddInt("observed", s.Observed)
	enc.AddInt("skipped", s.Skipped)
	enc.AddInt("duplicates", s.Duplicates)
	enc.AddInt("dispatched", s.Dispatched)
	enc.AddInt("succeeded", s.Succeeded)
	enc.AddInt("written", s.Written)
	enc.AddInt("failed", s.Failed)
	enc.AddDuration("elapsed", s.Elapsed)
	return nil
}

// Summary aggregates an "all playlists" run.
type Summary struct {
	Playlists        int     `json:"playlists"`
	SkippedPlaylists int     `json:"skipped_playlists"`
	FailedPlaylists  int     `json:"failed_playlists"`
	Runs             []Stats `json:"runs"`
}

// Totals sums every pass of the run
func (s Summary) Totals() Stats {
	total := Stats{List: "all playlists", State: StateDone}
	for _, run := range s.Runs {
		total.Add(run)
	}
	return total
}
