package session

// State of the session. ANONYMOUS -> AUTHENTICATING -> AUTHENTICATED ->
// (REFRESHING) -> AUTHENTICATED | ANONYMOUS.
type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
	Refreshing
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "ANONYMOUS"
	case Authenticating:
		return "AUTHENTICATING"
	case Authenticated:
		return "AUTHENTICATED"
	case Refreshing:
		return "REFRESHING"
	default:
		return "UNKNOWN"
	}
}
