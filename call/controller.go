package call

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/chatlite/callkit/internal/errors"
	"github.com/chatlite/callkit/internal/log"
	"github.com/chatlite/callkit/rtc"
)

const defaultSubscriberBuffer = 16

// Controller is the call session state machine. One instance manages at
// most one active session at a time; mutating operations are serialized
// so an in-flight operation always settles before the next one starts.
type Controller struct {
	connector Connector
	auth      Authorizer
	bridge    *Bridge
	clock     clockwork.Clock
	logger    *log.Logger

	// serializes mutating operations
	opMu sync.Mutex

	stateMu sync.Mutex
	cur     *callSession
}

type callSession struct {
	callID    string
	members   map[string]struct{}
	status    Status
	tracks    Tracks
	startedAt *time.Time
	handle    rtc.CallHandle
}

func NewController(connector Connector, auth Authorizer, logger *log.Logger) *Controller {
	return newControllerWithClock(connector, auth, logger, clockwork.NewRealClock())
}

func newControllerWithClock(
	connector Connector,
	auth Authorizer,
	logger *log.Logger,
	clock clockwork.Clock,
) *Controller {
	if logger == nil {
		panic("logger is required")
	}
	if clock == nil {
		panic("clock is required")
	}
	return &Controller{
		connector: connector,
		auth:      auth,
		bridge:    newBridge(logger.Module("Observer"), defaultSubscriberBuffer),
		clock:     clock,
		logger:    logger,
	}
}

// Subscribe registers an observer for session events. The returned
// function unsubscribes; it is safe to call multiple times and after the
// session reached a terminal state.
func (c *Controller) Subscribe(h Handler) func() {
	return c.bridge.Subscribe(h)
}

// Current returns a snapshot of the active session, if any.
func (c *Controller) Current() (Session, bool) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if c.cur == nil {
		return Session{}, false
	}
	return c.snapshotLocked(c.cur), true
}

// CreateOrJoin starts a new call session. Any prior active session is
// fully terminated first. The connector must be ready and media
// permissions granted before the backend is contacted.
func (c *Controller) CreateOrJoin(ctx context.Context, callID string, memberIDs []string) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if !c.connector.IsReady() {
		return errors.New(ErrNotReady, "connector is not connected")
	}
	if !c.auth.EnsureMediaPermissions(ctx) {
		return errors.New(ErrPermissionDenied, "camera or microphone permission missing")
	}

	// only a call that is actually starting terminates its predecessor
	if err := c.finishCurrent(ctx); err != nil {
		c.logger.Warn("prior call did not leave cleanly", log.Error(err))
	}

	sess := &callSession{
		callID:  callID,
		members: make(map[string]struct{}, len(memberIDs)),
		status:  StatusIdle,
	}
	for _, id := range memberIDs {
		sess.members[id] = struct{}{}
	}

	c.stateMu.Lock()
	c.cur = sess
	c.stateMu.Unlock()

	c.setStatus(sess, StatusCreating)
	callsStarted.Add(ctx, 1)

	handle, err := c.connector.Backend().CreateCall(ctx, callID, memberIDs)
	if err != nil {
		c.setStatus(sess, StatusFailed)
		return errors.Wrap(ErrBackend, err, "create call")
	}

	c.stateMu.Lock()
	sess.handle = handle
	c.stateMu.Unlock()

	c.setStatus(sess, StatusJoining)

	if err := handle.Join(ctx); err != nil {
		if errors.Is(err, rtc.ErrRejected) {
			c.setStatus(sess, StatusRejected)
		} else {
			c.setStatus(sess, StatusFailed)
		}
		handle.Close()
		return errors.Wrap(ErrBackend, err, "join call")
	}

	c.setStatus(sess, StatusJoined)
	go c.watch(sess, handle)

	c.logger.Info("call joined",
		log.String("callId", callID),
		log.Strings("members", memberIDs),
	)
	return nil
}

// Leave leaves the active call. Calling it with no active session, or on
// a session already leaving or terminal, is a no-op success.
func (c *Controller) Leave(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.stateMu.Lock()
	sess := c.cur
	c.stateMu.Unlock()
	if sess == nil {
		return nil
	}
	return c.leaveSession(ctx, sess)
}

func (c *Controller) finishCurrent(ctx context.Context) error {
	c.stateMu.Lock()
	sess := c.cur
	var st Status
	if sess != nil {
		st = sess.status
	}
	c.stateMu.Unlock()
	if sess == nil || st.Terminal() {
		return nil
	}
	c.logger.Info("terminating prior call before starting a new one",
		log.String("callId", sess.callID))
	return c.leaveSession(ctx, sess)
}

func (c *Controller) leaveSession(ctx context.Context, sess *callSession) error {
	c.stateMu.Lock()
	st := sess.status
	handle := sess.handle
	c.stateMu.Unlock()

	if st.Terminal() || st == StatusLeaving {
		return nil
	}

	var leaveErr error
	if st == StatusJoined && handle != nil {
		// setStatus re-checks under stateMu: a remote terminal event may
		// have landed since st was read, and then no leave rpc is owed
		if !c.setStatus(sess, StatusLeaving) {
			return nil
		}
		leaveErr = handle.Leave(ctx)
	}

	// the session always settles in Ended, even when the leave ack failed
	c.setStatus(sess, StatusEnded)
	if handle != nil {
		handle.Close()
	}
	if leaveErr != nil {
		return errors.Wrap(ErrBackend, leaveErr, "leave call")
	}
	return nil
}

// HandleDisconnect forces the active session to Ended. Wire it to
// Connector.OnDisconnect so a disconnect cascades into call cleanup.
func (c *Controller) HandleDisconnect() {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.stateMu.Lock()
	sess := c.cur
	var (
		st     Status
		handle rtc.CallHandle
	)
	if sess != nil {
		st = sess.status
		handle = sess.handle
	}
	c.stateMu.Unlock()

	if sess == nil || st.Terminal() {
		return
	}

	c.logger.Info("connector disconnected, ending active call",
		log.String("callId", sess.callID))
	c.setStatus(sess, StatusEnded)
	if handle != nil {
		handle.Close()
	}
}

// Close disposes the controller: the active session is forced to a
// terminal state and all subscriptions are torn down.
func (c *Controller) Close() {
	c.HandleDisconnect()
	c.bridge.Close()
}

func (c *Controller) watch(sess *callSession, handle rtc.CallHandle) {
	for ev := range handle.Events() {
		switch ev.Kind {
		case rtc.EventMemberJoined:
			c.updateMembers(sess, ev.MemberID, true)
		case rtc.EventMemberLeft:
			c.updateMembers(sess, ev.MemberID, false)
		case rtc.EventCallEnded:
			c.setStatus(sess, StatusEnded)
			handle.Close()
		case rtc.EventCallRejected:
			// a reject signal after the join settled behaves like a
			// remote hang-up
			c.setStatus(sess, StatusEnded)
			handle.Close()
		case rtc.EventError:
			c.logger.Warn("backend call error", log.Error(ev.Err))
			c.setStatus(sess, StatusFailed)
			handle.Close()
		}
	}

	// stream closed without a terminal signal: the transport dropped
	c.setStatus(sess, StatusFailed)
}

// setStatus applies a status transition and publishes it. Transitions on
// a superseded or terminal session are ignored.
func (c *Controller) setStatus(sess *callSession, st Status) bool {
	c.stateMu.Lock()
	if c.cur != sess || sess.status == st || sess.status.Terminal() {
		c.stateMu.Unlock()
		return false
	}
	sess.status = st
	if st == StatusJoined && sess.startedAt == nil {
		now := c.clock.Now()
		sess.startedAt = &now
	}
	c.publishLocked(EventStatusChange, sess)
	c.stateMu.Unlock()

	ctx := context.Background()
	statusTransitions.Add(ctx, 1)
	switch st {
	case StatusJoined:
		callsJoined.Add(ctx, 1)
	case StatusEnded:
		callsEnded.Add(ctx, 1)
	case StatusRejected:
		callsRejected.Add(ctx, 1)
	case StatusFailed:
		callsFailed.Add(ctx, 1)
	}
	return true
}

func (c *Controller) updateMembers(sess *callSession, memberID string, joined bool) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if c.cur != sess || sess.status.Terminal() {
		return
	}
	if joined {
		sess.members[memberID] = struct{}{}
	} else {
		delete(sess.members, memberID)
	}
	c.publishLocked(EventMemberChange, sess)
}

type trackKind int

const (
	trackCamera trackKind = iota
	trackMicrophone
)

func (k trackKind) String() string {
	if k == trackCamera {
		return "camera"
	}
	return "microphone"
}

func (c *Controller) EnableCamera(ctx context.Context) error {
	return c.toggleTrack(ctx, trackCamera, true)
}

func (c *Controller) DisableCamera(ctx context.Context) error {
	return c.toggleTrack(ctx, trackCamera, false)
}

func (c *Controller) EnableMicrophone(ctx context.Context) error {
	return c.toggleTrack(ctx, trackMicrophone, true)
}

func (c *Controller) DisableMicrophone(ctx context.Context) error {
	return c.toggleTrack(ctx, trackMicrophone, false)
}

// FlipCamera switches between device cameras. The camera must be enabled;
// its enablement does not change, whatever the outcome.
func (c *Controller) FlipCamera(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	sess, handle, err := c.activeForTracks()
	if err != nil {
		return err
	}
	if c.trackState(sess, trackCamera) != TrackEnabled {
		return errors.New(ErrInvalidState, "camera is not enabled")
	}

	c.setTrackState(sess, trackCamera, TrackTransitioning)
	flipErr := handle.Camera().Flip(ctx)
	c.setTrackState(sess, trackCamera, TrackEnabled)

	if flipErr != nil {
		trackToggleFailures.Add(ctx, 1)
		return errors.Wrap(ErrTrack, flipErr, "flip camera")
	}
	return nil
}

func (c *Controller) toggleTrack(ctx context.Context, kind trackKind, enable bool) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	sess, handle, err := c.activeForTracks()
	if err != nil {
		return err
	}

	prev := c.trackState(sess, kind)
	c.setTrackState(sess, kind, TrackTransitioning)

	var track rtc.Track = handle.Microphone()
	if kind == trackCamera {
		track = handle.Camera()
	}

	op := track.Disable
	if enable {
		op = track.Enable
	}

	trackToggles.Add(ctx, 1)
	if err := op(ctx); err != nil {
		// failure leaves the track at its prior stable state
		c.setTrackState(sess, kind, prev)
		trackToggleFailures.Add(ctx, 1)
		return errors.Wrapf(ErrTrack, err, "toggle %s", kind)
	}

	next := TrackDisabled
	if enable {
		next = TrackEnabled
	}
	c.setTrackState(sess, kind, next)
	return nil
}

// activeForTracks returns the active session and handle when track
// operations are allowed (Joining or Joined only).
func (c *Controller) activeForTracks() (*callSession, rtc.CallHandle, error) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	sess := c.cur
	if sess == nil || (sess.status != StatusJoining && sess.status != StatusJoined) {
		return nil, nil, errors.New(ErrInvalidState, "no joined call")
	}
	if sess.handle == nil {
		return nil, nil, errors.New(ErrInvalidState, "call has no backend handle")
	}
	return sess, sess.handle, nil
}

func (c *Controller) trackState(sess *callSession, kind trackKind) TrackState {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if kind == trackCamera {
		return sess.tracks.Camera
	}
	return sess.tracks.Microphone
}

func (c *Controller) setTrackState(sess *callSession, kind trackKind, st TrackState) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if c.cur != sess {
		return
	}
	if kind == trackCamera {
		sess.tracks.Camera = st
	} else {
		sess.tracks.Microphone = st
	}
	c.publishLocked(EventTrackChange, sess)
}

func (c *Controller) snapshotLocked(sess *callSession) Session {
	members := make([]string, 0, len(sess.members))
	for id := range sess.members {
		members = append(members, id)
	}
	sort.Strings(members)

	var startedAt *time.Time
	if sess.startedAt != nil {
		t := *sess.startedAt
		startedAt = &t
	}

	return Session{
		CallID:    sess.callID,
		Members:   members,
		Status:    sess.status,
		Tracks:    sess.tracks,
		StartedAt: startedAt,
	}
}

func (c *Controller) publishLocked(kind EventKind, sess *callSession) {
	c.bridge.Publish(Event{
		Kind:    kind,
		Session: c.snapshotLocked(sess),
	})
}
