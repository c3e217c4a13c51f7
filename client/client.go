// Package client is the embedding application's entry point. It wires the
// token provider, permission gate, session connector and call controller
// together and exposes one facade for the whole call stack.
package client

import (
	"context"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/chatlite/callkit/call"
	"github.com/chatlite/callkit/internal/errors"
	"github.com/chatlite/callkit/internal/log"
	"github.com/chatlite/callkit/internal/retry"
	"github.com/chatlite/callkit/permission"
	"github.com/chatlite/callkit/rtc"
	"github.com/chatlite/callkit/session"
	"github.com/chatlite/callkit/token"
)

type Client struct {
	provider   token.Provider
	connector  *session.Connector
	controller *call.Controller
	retry      retry.Retry
	clock      clockwork.Clock
	logger     *log.Logger

	mu   sync.Mutex
	cred *token.Credential
}

func New(
	cfg Config,
	provider token.Provider,
	querier permission.Querier,
	backend rtc.Backend,
	logger *log.Logger,
) *Client {
	return newWithClock(cfg, provider, querier, backend, logger, clockwork.NewRealClock())
}

func newWithClock(
	cfg Config,
	provider token.Provider,
	querier permission.Querier,
	backend rtc.Backend,
	logger *log.Logger,
	clock clockwork.Clock,
) *Client {
	if logger == nil {
		panic("logger is required")
	}

	connector := session.NewConnector(backend, logger.Module("Session"))
	gate := permission.NewGate(querier, logger.Module("Permission"))
	controller := call.NewController(connector, gate, logger.Module("Call"))

	// a dropped session cascades into forced call teardown
	connector.OnDisconnect(controller.HandleDisconnect)

	return &Client{
		provider:   provider,
		connector:  connector,
		controller: controller,
		retry: retry.New(
			logger.Module("TokenRetry"),
			cfg.TokenRetry.InitialInterval,
			cfg.TokenRetry.MaxInterval,
			cfg.TokenRetry.MaxElapsedTime,
		),
		clock:  clock,
		logger: logger,
	}
}

// Start authenticates userID and connects the session. A cached credential
// still valid for userID is reused; otherwise a fresh one is fetched, with
// bounded retry on transient failures.
func (c *Client) Start(ctx context.Context, userID, displayName string) error {
	cred, err := c.credentialFor(ctx, userID)
	if err != nil {
		return err
	}

	identity := session.Identity{UserID: userID, DisplayName: displayName}
	if err := c.connector.Connect(ctx, identity, cred); err != nil {
		return err
	}

	c.logger.Info("session started", log.String("userId", userID))
	return nil
}

func (c *Client) credentialFor(ctx context.Context, userID string) (*token.Credential, error) {
	c.mu.Lock()
	cached := c.cred
	c.mu.Unlock()
	if cached.ValidFor(userID, c.clock.Now()) {
		return cached, nil
	}

	var cred *token.Credential
	err := c.retry.Do(ctx, func() error {
		var ferr error
		cred, ferr = c.provider.FetchToken(ctx, userID)
		if ferr == nil {
			return nil
		}
		// only transport failures are worth retrying
		if errors.Is(ferr, token.ErrNetworkFailure) {
			return ferr
		}
		return retry.Permanent(ferr)
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cred = cred
	c.mu.Unlock()
	return cred, nil
}

func (c *Client) State() session.ConnState {
	return c.connector.State()
}

func (c *Client) StartCall(ctx context.Context, callID string, memberIDs []string) error {
	return c.controller.CreateOrJoin(ctx, callID, memberIDs)
}

func (c *Client) EndCall(ctx context.Context) error {
	return c.controller.Leave(ctx)
}

func (c *Client) CurrentCall() (call.Session, bool) {
	return c.controller.Current()
}

func (c *Client) EnableCamera(ctx context.Context) error {
	return c.controller.EnableCamera(ctx)
}

func (c *Client) DisableCamera(ctx context.Context) error {
	return c.controller.DisableCamera(ctx)
}

func (c *Client) FlipCamera(ctx context.Context) error {
	return c.controller.FlipCamera(ctx)
}

func (c *Client) EnableMicrophone(ctx context.Context) error {
	return c.controller.EnableMicrophone(ctx)
}

func (c *Client) DisableMicrophone(ctx context.Context) error {
	return c.controller.DisableMicrophone(ctx)
}

// Subscribe registers an observer for call session events.
func (c *Client) Subscribe(h call.Handler) func() {
	return c.controller.Subscribe(h)
}

// Snapshots returns a channel of session events with the given buffer and
// a stop function. The channel is never closed; call stop and drop the
// channel when done.
func (c *Client) Snapshots(buffer int) (<-chan call.Event, func()) {
	ch := make(chan call.Event, buffer)
	done := make(chan struct{})

	unsub := c.controller.Subscribe(func(ev call.Event) {
		select {
		case ch <- ev:
		case <-done:
		}
	})

	var once sync.Once
	stop := func() {
		once.Do(func() {
			unsub()
			close(done)
		})
	}
	return ch, stop
}

// Shutdown tears the whole stack down: the active call is forced to a
// terminal state, subscriptions are dropped and the session disconnects.
// The cached credential is discarded.
func (c *Client) Shutdown(ctx context.Context) error {
	c.controller.Close()

	c.mu.Lock()
	c.cred = nil
	c.mu.Unlock()

	if err := c.connector.Disconnect(ctx); err != nil {
		return err
	}
	c.logger.Info("client shut down")
	return nil
}
