package ws

import (
	"context"
	"sync"

	"github.com/chatlite/callkit/internal/log"
	"github.com/chatlite/callkit/rtc"
)

const eventBuffer = 16

type callHandle struct {
	backend *Backend
	callID  string

	mu     sync.Mutex
	closed bool
	events chan rtc.Event
}

func newCallHandle(b *Backend, callID string) *callHandle {
	return &callHandle{
		backend: b,
		callID:  callID,
		events:  make(chan rtc.Event, eventBuffer),
	}
}

func (h *callHandle) Join(ctx context.Context) error {
	_, err := h.backend.rpc(ctx, frame{Type: typeJoin, CallID: h.callID})
	return err
}

func (h *callHandle) Leave(ctx context.Context) error {
	_, err := h.backend.rpc(ctx, frame{Type: typeLeave, CallID: h.callID})
	return err
}

func (h *callHandle) Events() <-chan rtc.Event {
	return h.events
}

func (h *callHandle) Camera() rtc.Camera {
	return &camera{track{handle: h, device: deviceCamera}}
}

func (h *callHandle) Microphone() rtc.Track {
	return &track{handle: h, device: deviceMicrophone}
}

func (h *callHandle) Close() error {
	h.backend.calls.Delete(h.callID)

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.closed {
		h.closed = true
		close(h.events)
	}
	return nil
}

func (h *callHandle) push(ev rtc.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	select {
	case h.events <- ev:
	default:
		h.backend.logger.Warn("call event buffer full, dropping",
			log.String("callId", h.callID),
			log.String("kind", ev.Kind.String()))
	}
}

type track struct {
	handle *callHandle
	device string
}

func (t *track) Enable(ctx context.Context) error {
	return t.op(ctx, actionEnable)
}

func (t *track) Disable(ctx context.Context) error {
	return t.op(ctx, actionDisable)
}

func (t *track) op(ctx context.Context, action string) error {
	_, err := t.handle.backend.rpc(ctx, frame{
		Type:   typeTrack,
		CallID: t.handle.callID,
		Device: t.device,
		Action: action,
	})
	return err
}

type camera struct {
	track
}

func (c *camera) Flip(ctx context.Context) error {
	return c.op(ctx, actionFlip)
}
