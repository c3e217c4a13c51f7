package session

import (
	"context"
	"sync"

	"github.com/chatlite/callkit/internal/errors"
	"github.com/chatlite/callkit/internal/log"
	"github.com/chatlite/callkit/rtc"
	"github.com/chatlite/callkit/token"
)

// Connector owns the single authenticated connection to the real-time
// backend. Connect is idempotent for the same identity; Disconnect always
// succeeds and cascades to registered hooks.
type Connector struct {
	backend rtc.Backend
	logger  *log.Logger

	mu       sync.Mutex
	state    ConnState
	identity *Identity

	hookMu sync.Mutex
	hooks  []DisconnectHook
}

func NewConnector(backend rtc.Backend, logger *log.Logger) *Connector {
	if logger == nil {
		panic("logger is required")
	}
	return &Connector{
		backend: backend,
		logger:  logger,
		state:   StateDisconnected,
	}
}

// OnDisconnect registers a hook invoked on every disconnect. Hooks run
// outside the connector lock, in registration order.
func (c *Connector) OnDisconnect(h DisconnectHook) {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	c.hooks = append(c.hooks, h)
}

func (c *Connector) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Connector) IsReady() bool {
	return c.State() == StateConnected
}

func (c *Connector) Identity() (Identity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identity == nil {
		return Identity{}, false
	}
	return *c.identity, true
}

// Backend exposes the underlying backend to the call layer. Call
// operations are only meaningful while IsReady.
func (c *Connector) Backend() rtc.Backend {
	return c.backend
}

// Connect authenticates against the backend. Connecting while already
// connected with the same identity is a no-op; a different identity
// forces a disconnect first.
func (c *Connector) Connect(ctx context.Context, identity Identity, cred *token.Credential) error {
	if cred == nil || cred.UserID != identity.UserID {
		return errors.Newf(ErrCredentialMismatch,
			"credential not issued for user %q", identity.UserID)
	}

	c.mu.Lock()
	switch c.state {
	case StateConnecting:
		c.mu.Unlock()
		return errors.New(ErrAlreadyConnecting, "connect already in progress")
	case StateConnected:
		if c.identity != nil && c.identity.UserID == identity.UserID {
			c.mu.Unlock()
			return nil
		}
		c.mu.Unlock()
		c.logger.Info("identity changed, reconnecting",
			log.String("userId", identity.UserID))
		if err := c.Disconnect(ctx); err != nil {
			return err
		}
		c.mu.Lock()
	}
	c.state = StateConnecting
	c.mu.Unlock()

	err := c.backend.Connect(ctx, rtc.AuthInfo{
		UserID:      identity.UserID,
		DisplayName: identity.DisplayName,
		Token:       cred.Token,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateFailed
		c.identity = nil
		return errors.Wrap(ErrTransportFailure, err, "connect to backend")
	}

	id := identity
	c.identity = &id
	c.state = StateConnected
	c.logger.Info("connected", log.String("userId", identity.UserID))
	return nil
}

// Disconnect tears the session down from any state. It clears the
// identity, runs disconnect hooks (the call layer settles its active
// session there), then drops the transport.
func (c *Connector) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	prev := c.state
	c.state = StateDisconnected
	c.identity = nil
	c.mu.Unlock()

	c.hookMu.Lock()
	hooks := make([]DisconnectHook, len(c.hooks))
	copy(hooks, c.hooks)
	c.hookMu.Unlock()

	for _, h := range hooks {
		h()
	}

	if prev != StateDisconnected {
		if err := c.backend.Disconnect(ctx); err != nil {
			// disconnect is terminal cleanup, failures are not surfaced
			c.logger.Warn("backend disconnect failed", log.Error(err))
		}
		c.logger.Info("disconnected", log.String("prevState", prev.String()))
	}
	return nil
}
