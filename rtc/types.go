package rtc

import "context"

// AuthInfo carries the authenticated identity presented to the backend on connect.
type AuthInfo struct {
	UserID      string
	DisplayName string
	Token       string
}

// Backend is the real-time media backend the session layer talks to.
// Implementations own transport, signaling and media; callers only see
// these capabilities.
type Backend interface {
	Connect(ctx context.Context, auth AuthInfo) error
	Disconnect(ctx context.Context) error
	CreateCall(ctx context.Context, callID string, memberIDs []string) (CallHandle, error)
}

// CallHandle is a single created call on the backend.
type CallHandle interface {
	Join(ctx context.Context) error
	Leave(ctx context.Context) error

	// Events delivers remote signals for this call. The channel is closed
	// when the handle is closed or the underlying connection drops.
	Events() <-chan Event

	Camera() Camera
	Microphone() Track

	Close() error
}

// Track is an independently toggleable local media stream.
type Track interface {
	Enable(ctx context.Context) error
	Disable(ctx context.Context) error
}

type Camera interface {
	Track
	Flip(ctx context.Context) error
}

type EventKind int

const (
	EventMemberJoined EventKind = iota
	EventMemberLeft
	EventCallEnded
	EventCallRejected
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventMemberJoined:
		return "memberJoined"
	case EventMemberLeft:
		return "memberLeft"
	case EventCallEnded:
		return "callEnded"
	case EventCallRejected:
		return "callRejected"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a remote signal on a call.
type Event struct {
	Kind     EventKind
	MemberID string
	Err      error
}
