package call

import (
	"context"
	"time"

	"github.com/chatlite/callkit/rtc"
)

// Status is the call session state. Terminal statuses are final for a
// given session instance; a new call always gets a fresh session.
type Status int

const (
	StatusIdle Status = iota
	StatusCreating
	StatusJoining
	StatusJoined
	StatusLeaving
	StatusEnded
	StatusRejected
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusCreating:
		return "creating"
	case StatusJoining:
		return "joining"
	case StatusJoined:
		return "joined"
	case StatusLeaving:
		return "leaving"
	case StatusEnded:
		return "ended"
	case StatusRejected:
		return "rejected"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusEnded || s == StatusRejected || s == StatusFailed
}

// TrackState is the state of one local media track.
type TrackState int

const (
	TrackDisabled TrackState = iota
	TrackEnabled
	TrackTransitioning
)

func (t TrackState) String() string {
	switch t {
	case TrackDisabled:
		return "disabled"
	case TrackEnabled:
		return "enabled"
	case TrackTransitioning:
		return "transitioning"
	default:
		return "unknown"
	}
}

// Tracks holds the local device-enable state.
type Tracks struct {
	Camera     TrackState
	Microphone TrackState
}

// Session is an immutable snapshot of the active call session, handed to
// observers and UI consumers.
type Session struct {
	CallID    string
	Members   []string
	Status    Status
	Tracks    Tracks
	StartedAt *time.Time
}

type EventKind int

const (
	EventStatusChange EventKind = iota
	EventTrackChange
	EventMemberChange
)

func (k EventKind) String() string {
	switch k {
	case EventStatusChange:
		return "statusChange"
	case EventTrackChange:
		return "trackChange"
	case EventMemberChange:
		return "memberChange"
	default:
		return "unknown"
	}
}

// Event is one observed change of the session. Every status transition is
// delivered exactly once per subscriber, in order; track and member
// changes carry the unchanged status alongside the new snapshot.
type Event struct {
	Kind    EventKind
	Session Session
}

// Handler consumes events on a dedicated per-subscriber goroutine.
type Handler func(Event)

// Connector is the session layer as seen by the controller.
type Connector interface {
	IsReady() bool
	Backend() rtc.Backend
}

// Authorizer gates call setup on media permissions.
type Authorizer interface {
	EnsureMediaPermissions(ctx context.Context) bool
}
