// Package refactor runs the rewrite engine over a source tree: discovery,
// per-file processing, persistence and report aggregation.
package refactor

// State is the processing state of one file.
type State int

// File states. A file moves from Unprocessed to Parsed or ParseFailed, then
// to Transformed or Unchanged, and a transformed file ends Persisted or
// DryRunSkipped.
const (
	StateUnprocessed State = iota
	StateParsed
	StateTransformed
	StateUnchanged
	StatePersisted
	StateDryRunSkipped
	StateParseFailed
)

var stateNames = [...]string{
	"unprocessed", "parsed", "transformed", "unchanged", "persisted", "dry_run_skipped", "parse_failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}

	return "unknown"
}

// Terminal reports whether no further transition leaves s.
func (s State) Terminal() bool {
	switch s {
	case StateUnchanged, StatePersisted, StateDryRunSkipped, StateParseFailed:
		return true
	case StateUnprocessed, StateParsed, StateTransformed:
	}

	return false
}

// MarshalText renders the state name in JSON and YAML reports.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
