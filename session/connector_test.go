package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/chatlite/callkit/internal/errors"
	"github.com/chatlite/callkit/internal/log"
	"github.com/chatlite/callkit/rtc"
	"github.com/chatlite/callkit/rtc/fakes"
	"github.com/chatlite/callkit/token"
)

type ConnectorTestSuite struct {
	suite.Suite
	backend   *fakes.Backend
	connector *Connector
	ctx       context.Context
}

func TestConnectorSuite(t *testing.T) {
	suite.Run(t, new(ConnectorTestSuite))
}

func (s *ConnectorTestSuite) SetupTest() {
	s.backend = fakes.NewBackend()
	s.connector = NewConnector(s.backend, log.NewNop())
	s.ctx = context.Background()
}

func credFor(userID string) *token.Credential {
	return &token.Credential{
		Token:     "tok-" + userID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func (s *ConnectorTestSuite) connect(userID string) error {
	return s.connector.Connect(s.ctx, Identity{UserID: userID, DisplayName: userID}, credFor(userID))
}

func (s *ConnectorTestSuite) TestConnectThenDisconnect() {
	s.Require().NoError(s.connect("u1"))
	s.Equal(StateConnected, s.connector.State())
	s.True(s.connector.IsReady())

	id, ok := s.connector.Identity()
	s.True(ok)
	s.Equal("u1", id.UserID)

	s.Require().NoError(s.connector.Disconnect(s.ctx))
	s.Equal(StateDisconnected, s.connector.State())
	s.False(s.connector.IsReady())

	_, ok = s.connector.Identity()
	s.False(ok)
	s.Equal(1, s.backend.DisconnectCalls)
}

func (s *ConnectorTestSuite) TestConnectSameIdentityIsNoop() {
	s.Require().NoError(s.connect("u1"))
	s.Require().NoError(s.connect("u1"))

	s.Equal(1, s.backend.ConnectCalls)
	s.Equal(StateConnected, s.connector.State())
}

func (s *ConnectorTestSuite) TestConnectDifferentIdentityReconnects() {
	s.Require().NoError(s.connect("u1"))
	s.Require().NoError(s.connect("u2"))

	s.Equal(2, s.backend.ConnectCalls)
	s.Equal(1, s.backend.DisconnectCalls)

	id, ok := s.connector.Identity()
	s.True(ok)
	s.Equal("u2", id.UserID)
}

func (s *ConnectorTestSuite) TestConnectTransportFailure() {
	s.backend.ConnectErr = errors.PureNew("dial refused")

	err := s.connect("u1")
	s.Require().Error(err)
	s.True(errors.Is(err, ErrTransportFailure))
	s.Equal(StateFailed, s.connector.State())
	s.False(s.connector.IsReady())
}

func (s *ConnectorTestSuite) TestCredentialMismatch() {
	err := s.connector.Connect(s.ctx, Identity{UserID: "u1"}, credFor("u2"))
	s.Require().Error(err)
	s.True(errors.Is(err, ErrCredentialMismatch))
	s.Equal(StateDisconnected, s.connector.State())
	s.Equal(0, s.backend.ConnectCalls)
}

func (s *ConnectorTestSuite) TestNilCredential() {
	err := s.connector.Connect(s.ctx, Identity{UserID: "u1"}, nil)
	s.Require().Error(err)
	s.True(errors.Is(err, ErrCredentialMismatch))
}

func (s *ConnectorTestSuite) TestDisconnectFromFailedState() {
	s.backend.ConnectErr = errors.PureNew("dial refused")
	s.Require().Error(s.connect("u1"))
	s.Equal(StateFailed, s.connector.State())

	s.Require().NoError(s.connector.Disconnect(s.ctx))
	s.Equal(StateDisconnected, s.connector.State())
}

func (s *ConnectorTestSuite) TestDisconnectWhileDisconnectedIsNoop() {
	s.Require().NoError(s.connector.Disconnect(s.ctx))
	s.Equal(0, s.backend.DisconnectCalls)
}

func (s *ConnectorTestSuite) TestDisconnectHooksRun() {
	var order []string
	s.connector.OnDisconnect(func() { order = append(order, "first") })
	s.connector.OnDisconnect(func() { order = append(order, "second") })

	s.Require().NoError(s.connect("u1"))
	s.Require().NoError(s.connector.Disconnect(s.ctx))

	s.Equal([]string{"first", "second"}, order)
}

func (s *ConnectorTestSuite) TestAlreadyConnecting() {
	release := make(chan struct{})
	entered := make(chan struct{})
	slow := &slowBackend{Backend: s.backend, entered: entered, release: release}
	connector := NewConnector(slow, log.NewNop())

	done := make(chan error, 1)
	go func() {
		done <- connector.Connect(s.ctx, Identity{UserID: "u1"}, credFor("u1"))
	}()
	<-entered

	err := connector.Connect(s.ctx, Identity{UserID: "u1"}, credFor("u1"))
	s.Require().Error(err)
	s.True(errors.Is(err, ErrAlreadyConnecting))

	close(release)
	s.Require().NoError(<-done)
	s.Equal(StateConnected, connector.State())
}

type slowBackend struct {
	*fakes.Backend
	entered chan struct{}
	release chan struct{}
}

func (b *slowBackend) Connect(ctx context.Context, auth rtc.AuthInfo) error {
	close(b.entered)
	<-b.release
	return b.Backend.Connect(ctx, auth)
}
