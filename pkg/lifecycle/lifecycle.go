package lifecycle

// RunState is the phase of an engine session.
type RunState int

const (
	Idle RunState = iota
	Starting
	Running
	Stopping
)

// String returns a human-readable representation of the state.
func (s RunState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Starting:
		return "Starting"
	case Running:
		return "Running"
	case Stopping:
		return "Stopping"
	default:
		return "Unknown"
	}
}

// Active reports whether a session exists in this state.
func (s RunState) Active() bool {
	return s == Starting || s == Running
}

// EventEmitter is called when the state changes.
type EventEmitter interface {
	OnStateChange(previous, current RunState, reason string)
}

// transitions lists the valid targets for each state.
var transitions = map[RunState][]RunState{
	Idle:     {Starting},
	Starting: {Running, Idle},
	Running:  {Stopping},
	Stopping: {Idle, Running},
}

// CanTransition reports whether from -> to is a valid edge.
func CanTransition(from, to RunState) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
