package session

// State is the session lifecycle state. States are strictly ordered;
// transitions move upward except for the two explicit downward moves
// (unwire and full teardown) and the stop of a capture run.
type State int

// Session states, in increasing order.
const (
	// StateEmpty has no topology at all.
	StateEmpty State = iota
	// StateSkeleton has stages inserted but nothing connected.
	StateSkeleton
	// StateWired has the wanted sub-graphs functionally connected.
	StateWired
	// StateCapturing is actively writing the capture sub-graph to file.
	StateCapturing
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateSkeleton:
		return "skeleton"
	case StateWired:
		return "wired"
	case StateCapturing:
		return "capturing"
	default:
		return "unknown"
	}
}
