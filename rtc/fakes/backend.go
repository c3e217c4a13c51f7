package fakes

import (
	"context"
	"sync"

	"github.com/chatlite/callkit/rtc"
)

// Backend is a scripted in-memory rtc.Backend for testing.
// Error fields, when set, are returned by the corresponding operation.
type Backend struct {
	mu sync.Mutex

	ConnectErr error
	CreateErr  error

	Handle *CallHandle

	connected       bool
	ConnectCalls    int
	DisconnectCalls int
	CreateCalls     []CreateCall
}

type CreateCall struct {
	CallID  string
	Members []string
}

func NewBackend() *Backend {
	return &Backend{
		Handle: NewCallHandle(),
	}
}

func (b *Backend) Connect(_ context.Context, _ rtc.AuthInfo) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ConnectCalls++
	if b.ConnectErr != nil {
		return b.ConnectErr
	}
	b.connected = true
	return nil
}

func (b *Backend) Disconnect(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.DisconnectCalls++
	b.connected = false
	return nil
}

func (b *Backend) CreateCall(_ context.Context, callID string, memberIDs []string) (rtc.CallHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.CreateCalls = append(b.CreateCalls, CreateCall{CallID: callID, Members: memberIDs})
	if b.CreateErr != nil {
		return nil, b.CreateErr
	}
	return b.Handle, nil
}

func (b *Backend) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}

// CallHandle is a scripted in-memory rtc.CallHandle.
type CallHandle struct {
	mu sync.Mutex

	JoinErr  error
	LeaveErr error

	CameraTrack *Track
	MicTrack    *Track

	JoinCalls  int
	LeaveCalls int

	events    chan rtc.Event
	closeOnce sync.Once
}

func NewCallHandle() *CallHandle {
	return &CallHandle{
		CameraTrack: &Track{},
		MicTrack:    &Track{},
		events:      make(chan rtc.Event, 16),
	}
}

func (h *CallHandle) Join(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.JoinCalls++
	return h.JoinErr
}

func (h *CallHandle) Leave(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.LeaveCalls++
	return h.LeaveErr
}

func (h *CallHandle) Events() <-chan rtc.Event {
	return h.events
}

func (h *CallHandle) Camera() rtc.Camera {
	return h.CameraTrack
}

func (h *CallHandle) Microphone() rtc.Track {
	return h.MicTrack
}

func (h *CallHandle) Close() error {
	h.closeOnce.Do(func() {
		close(h.events)
	})
	return nil
}

// Push delivers a remote event to the handle's event stream.
func (h *CallHandle) Push(ev rtc.Event) {
	h.events <- ev
}

// Track is a scripted local media track.
// Flip is supported so the same type serves as camera and microphone.
type Track struct {
	mu sync.Mutex

	EnableErr  error
	DisableErr error
	FlipErr    error

	EnableCalls  int
	DisableCalls int
	FlipCalls    int
}

func (t *Track) Enable(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.EnableCalls++
	return t.EnableErr
}

func (t *Track) Disable(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.DisableCalls++
	return t.DisableErr
}

func (t *Track) Flip(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.FlipCalls++
	return t.FlipErr
}
