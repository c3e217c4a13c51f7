// Package ws implements the rtc backend over a websocket signaling
// channel. Requests are correlated by txn; server pushes are routed to
// the call handle they name.
package ws

import (
	"context"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/chatlite/callkit/internal/errors"
	"github.com/chatlite/callkit/internal/log"
	isync "github.com/chatlite/callkit/internal/sync"
	"github.com/chatlite/callkit/rtc"
)

const ErrSignaling errors.Code = "signaling request failed"

type Backend struct {
	cfg    Config
	logger *log.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	cancel context.CancelFunc
	done   chan struct{}
	out    chan frame

	pending *isync.Map[string, chan frame]
	calls   *isync.Map[string, *callHandle]
}

func New(cfg Config, logger *log.Logger) *Backend {
	if logger == nil {
		panic("logger is required")
	}
	return &Backend{
		cfg:     cfg,
		logger:  logger,
		pending: isync.NewMap[string, chan frame](),
		calls:   isync.NewMap[string, *callHandle](),
	}
}

// Connect dials the signaling endpoint and authenticates. The transport
// is only reported up once the auth result arrived.
func (b *Backend) Connect(ctx context.Context, auth rtc.AuthInfo) error {
	b.mu.Lock()
	if b.conn != nil {
		b.mu.Unlock()
		return errors.New(ErrSignaling, "already connected")
	}
	b.mu.Unlock()

	dialCtx, cancel := context.WithTimeout(ctx, b.cfg.DialTimeout)
	defer cancel()
	conn, _, err := websocket.Dial(dialCtx, b.cfg.URL, nil)
	if err != nil {
		return errors.Wrap(ErrSignaling, err, "dial signaling endpoint")
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	out := make(chan frame, 64)

	b.mu.Lock()
	b.conn = conn
	b.cancel = runCancel
	b.done = done
	b.out = out
	b.mu.Unlock()

	go b.writeLoop(runCtx, conn, out)
	go b.readLoop(runCtx, conn)

	_, err = b.rpc(ctx, frame{
		Type:        typeAuth,
		UserID:      auth.UserID,
		DisplayName: auth.DisplayName,
		Token:       auth.Token,
	})
	if err != nil {
		b.teardown(websocket.StatusPolicyViolation, "auth failed")
		return errors.Wrap(ErrSignaling, err, "authenticate")
	}

	b.logger.Info("signaling connected", log.String("userId", auth.UserID))
	return nil
}

func (b *Backend) Disconnect(_ context.Context) error {
	b.teardown(websocket.StatusNormalClosure, "client disconnect")
	return nil
}

func (b *Backend) CreateCall(ctx context.Context, callID string, memberIDs []string) (rtc.CallHandle, error) {
	if _, err := b.rpc(ctx, frame{Type: typeCreateCall, CallID: callID, Members: memberIDs}); err != nil {
		return nil, err
	}

	h := newCallHandle(b, callID)
	b.calls.Store(callID, h)
	return h, nil
}

// rpc sends a request frame and waits for the matching result. A result
// carrying the rejection code maps to rtc.ErrRejected.
func (b *Backend) rpc(ctx context.Context, f frame) (frame, error) {
	b.mu.Lock()
	out := b.out
	done := b.done
	b.mu.Unlock()
	if out == nil {
		return frame{}, errors.New(rtc.ErrNotConnected, "signaling is down")
	}

	f.Txn = uuid.NewString()
	ch := make(chan frame, 1)
	b.pending.Store(f.Txn, ch)
	defer b.pending.Delete(f.Txn)

	ctx, cancel := context.WithTimeout(ctx, b.cfg.RequestTimeout)
	defer cancel()

	select {
	case out <- f:
	case <-done:
		return frame{}, errors.New(rtc.ErrConnClosed, "signaling closed")
	case <-ctx.Done():
		return frame{}, ctx.Err()
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return frame{}, errors.New(rtc.ErrConnClosed, "signaling closed")
		}
		switch resp.Error {
		case "":
			return resp, nil
		case errRejectedCode:
			return frame{}, errors.New(rtc.ErrRejected, "server rejected the request")
		default:
			return frame{}, errors.Newf(ErrSignaling, "%s request failed: %s", f.Type, resp.Error)
		}
	case <-done:
		return frame{}, errors.New(rtc.ErrConnClosed, "signaling closed")
	case <-ctx.Done():
		return frame{}, ctx.Err()
	}
}

func (b *Backend) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer b.teardown(websocket.StatusInternalError, "read loop stopped")

	for {
		var f frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			if ctx.Err() == nil {
				b.logger.Warn("signaling read failed", log.Error(err))
			}
			return
		}

		switch f.Type {
		case typeResult:
			if ch, ok := b.pending.LoadAndDelete(f.Txn); ok {
				ch <- f
			}
		case typeEvent:
			b.dispatchEvent(f)
		default:
			b.logger.Warn("unknown frame type", log.String("type", f.Type))
		}
	}
}

func (b *Backend) writeLoop(ctx context.Context, conn *websocket.Conn, out <-chan frame) {
	limiter := rate.NewLimiter(rate.Limit(b.cfg.OutboundRate), b.cfg.OutboundBurst)

	for {
		select {
		case <-ctx.Done():
			return
		case f := <-out:
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			if err := wsjson.Write(ctx, conn, f); err != nil {
				if ctx.Err() == nil {
					b.logger.Warn("signaling write failed", log.Error(err))
				}
				return
			}
		}
	}
}

func (b *Backend) dispatchEvent(f frame) {
	h, ok := b.calls.Load(f.CallID)
	if !ok {
		b.logger.Warn("event for unknown call",
			log.String("callId", f.CallID),
			log.String("event", f.Event))
		return
	}

	switch f.Event {
	case eventMemberJoined:
		h.push(rtc.Event{Kind: rtc.EventMemberJoined, MemberID: f.MemberID})
	case eventMemberLeft:
		h.push(rtc.Event{Kind: rtc.EventMemberLeft, MemberID: f.MemberID})
	case eventCallEnded:
		h.push(rtc.Event{Kind: rtc.EventCallEnded})
	case eventCallRejected:
		h.push(rtc.Event{Kind: rtc.EventCallRejected})
	case eventError:
		h.push(rtc.Event{Kind: rtc.EventError, Err: errors.New(ErrSignaling, f.Error)})
	default:
		b.logger.Warn("unknown event", log.String("event", f.Event))
	}
}

// teardown closes the transport and fails everything in flight. Call
// handles are closed so their event streams end, which the consumer reads
// as a transport drop.
func (b *Backend) teardown(code websocket.StatusCode, reason string) {
	b.mu.Lock()
	conn := b.conn
	cancel := b.cancel
	done := b.done
	b.conn, b.cancel, b.done, b.out = nil, nil, nil, nil
	b.mu.Unlock()

	if conn == nil {
		return
	}

	cancel()
	close(done)
	conn.Close(code, reason)

	b.pending.Range(func(txn string, ch chan frame) bool {
		if _, ok := b.pending.LoadAndDelete(txn); ok {
			close(ch)
		}
		return true
	})
	b.calls.Range(func(_ string, h *callHandle) bool {
		h.Close()
		return true
	})

	b.logger.Info("signaling disconnected", log.String("reason", reason))
}
