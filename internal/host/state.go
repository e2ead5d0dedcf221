package host

// State is the scheduler state of a Host.
type State int32

const (
	StateIdle State = iota
	StateRunningTopLevel
	StateWaitingForWork
	StateRunningCallback
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunningTopLevel:
		return "running-top-level"
	case StateWaitingForWork:
		return "waiting-for-work"
	case StateRunningCallback:
		return "running-callback"
	case StateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}
