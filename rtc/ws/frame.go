package ws

// frame is the single wire message for the signaling channel. Requests
// carry a txn echoed back on the matching result; server pushes carry an
// event name and no txn.
type frame struct {
	Type        string   `json:"type"`
	Txn         string   `json:"txn,omitempty"`
	CallID      string   `json:"callId,omitempty"`
	UserID      string   `json:"userId,omitempty"`
	DisplayName string   `json:"displayName,omitempty"`
	Token       string   `json:"token,omitempty"`
	Members     []string `json:"members,omitempty"`
	Device      string   `json:"device,omitempty"`
	Action      string   `json:"action,omitempty"`
	Event       string   `json:"event,omitempty"`
	MemberID    string   `json:"memberId,omitempty"`
	Error       string   `json:"error,omitempty"`
}

const (
	typeAuth       = "auth"
	typeCreateCall = "createCall"
	typeJoin       = "join"
	typeLeave      = "leave"
	typeTrack      = "track"
	typeResult     = "result"
	typeEvent      = "event"
)

const (
	deviceCamera     = "camera"
	deviceMicrophone = "microphone"

	actionEnable  = "enable"
	actionDisable = "disable"
	actionFlip    = "flip"
)

const (
	eventMemberJoined = "memberJoined"
	eventMemberLeft   = "memberLeft"
	eventCallEnded    = "callEnded"
	eventCallRejected = "callRejected"
	eventError        = "error"
)

// errRejectedCode is the server's join denial, mapped to rtc.ErrRejected.
const errRejectedCode = "rejected"
