package permission_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/chatlite/callkit/internal/log"
	"github.com/chatlite/callkit/permission"
	"github.com/chatlite/callkit/permission/mocks"
)

type GateTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	querier *mocks.MockQuerier
	gate    *permission.Gate
	ctx     context.Context
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateTestSuite))
}

func (s *GateTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.querier = mocks.NewMockQuerier(s.ctrl)
	s.gate = permission.NewGate(s.querier, log.NewNop())
	s.ctx = context.Background()
}

func (s *GateTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *GateTestSuite) TestAllGranted() {
	s.querier.EXPECT().
		Request(gomock.Any(), permission.KindCamera, permission.KindMicrophone).
		Return(map[permission.Kind]permission.Status{
			permission.KindCamera:     permission.StatusGranted,
			permission.KindMicrophone: permission.StatusGranted,
		}, nil)

	s.True(s.gate.EnsureMediaPermissions(s.ctx))
}

func (s *GateTestSuite) TestMicrophoneDenied() {
	s.querier.EXPECT().
		Request(gomock.Any(), permission.KindCamera, permission.KindMicrophone).
		Return(map[permission.Kind]permission.Status{
			permission.KindCamera:     permission.StatusGranted,
			permission.KindMicrophone: permission.StatusDenied,
		}, nil)

	s.False(s.gate.EnsureMediaPermissions(s.ctx))
}

func (s *GateTestSuite) TestCameraRestricted() {
	s.querier.EXPECT().
		Request(gomock.Any(), permission.KindCamera, permission.KindMicrophone).
		Return(map[permission.Kind]permission.Status{
			permission.KindCamera:     permission.StatusRestricted,
			permission.KindMicrophone: permission.StatusGranted,
		}, nil)

	s.False(s.gate.EnsureMediaPermissions(s.ctx))
}

func (s *GateTestSuite) TestPlatformErrorReducesToFalse() {
	s.querier.EXPECT().
		Request(gomock.Any(), permission.KindCamera, permission.KindMicrophone).
		Return(nil, errors.New("platform unavailable"))

	s.False(s.gate.EnsureMediaPermissions(s.ctx))
}

func (s *GateTestSuite) TestStaticQuerier() {
	gate := permission.NewGate(permission.AllGranted(), log.NewNop())
	s.True(gate.EnsureMediaPermissions(s.ctx))

	denied := permission.NewGate(permission.StaticQuerier{
		permission.KindCamera: permission.StatusGranted,
	}, log.NewNop())
	s.False(denied.EnsureMediaPermissions(s.ctx))
}
