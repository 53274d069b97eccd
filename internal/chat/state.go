package chat

// State is the lifecycle of one send operation
type State int

const (
	StateIdle State = iota
	StateSending
	StateStreaming
	StateFinished
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	case StateFinished:
		return "finished"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions happen for this send
func (s State) Terminal() bool {
	return s == StateFinished || s == StateFailed
}
