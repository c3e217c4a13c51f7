package session

// ConnState is the connector's connection state. Exactly one live
// connector (and hence one ConnState) exists per client.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
	StateFailed
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Identity is the authenticated user of a session. Immutable once a
// session starts; cleared on disconnect.
type Identity struct {
	UserID      string
	DisplayName string
}

// DisconnectHook runs on every disconnect, after the connector state is
// cleared and before the transport is torn down.
type DisconnectHook func()
