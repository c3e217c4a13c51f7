package log

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zapcore"
)

type ModuleLevelTestSuite struct {
	suite.Suite
	originalEnvFunc func(string) (string, bool)
	testEnv         map[string]string
}

func TestModuleLevelTestSuite(t *testing.T) {
	suite.Run(t, new(ModuleLevelTestSuite))
}

func (s *ModuleLevelTestSuite) SetupTest() {
	s.originalEnvFunc = envFunc
	s.testEnv = make(map[string]string)
	envFunc = func(key string) (string, bool) {
		v, ok := s.testEnv[key]
		return v, ok && v != ""
	}
}

func (s *ModuleLevelTestSuite) TearDownTest() {
	envFunc = s.originalEnvFunc
}

func (s *ModuleLevelTestSuite) TestDefaultsToInfo() {
	s.Equal(zapcore.InfoLevel, moduleLevel([]string{"CallCtrl"}))
}

func (s *ModuleLevelTestSuite) TestGlobalLevel() {
	s.testEnv["LOG_LEVEL"] = "debug"
	s.Equal(zapcore.DebugLevel, moduleLevel([]string{"CallCtrl"}))
}

func (s *ModuleLevelTestSuite) TestSpecificOverridesGlobal() {
	s.testEnv["LOG_LEVEL"] = "warn"
	s.testEnv["LOG_LEVEL__CALL_CTRL"] = "debug"
	s.Equal(zapcore.DebugLevel, moduleLevel([]string{"CallCtrl"}))
}

func (s *ModuleLevelTestSuite) TestNestedModuleInheritsParent() {
	s.testEnv["LOG_LEVEL"] = "warn"
	s.testEnv["LOG_LEVEL__SESSION"] = "debug"
	s.Equal(zapcore.DebugLevel, moduleLevel([]string{"Session", "Connector"}))
}

func (s *ModuleLevelTestSuite) TestMostSpecificWins() {
	s.testEnv["LOG_LEVEL"] = "fatal"
	s.testEnv["LOG_LEVEL__SESSION"] = "error"
	s.testEnv["LOG_LEVEL__SESSION__CONNECTOR"] = "debug"
	s.Equal(zapcore.DebugLevel, moduleLevel([]string{"Session", "Connector"}))
}

func (s *ModuleLevelTestSuite) TestCamelCaseConverted() {
	s.testEnv["LOG_LEVEL__OBSERVER_BRIDGE"] = "debug"
	s.Equal(zapcore.DebugLevel, moduleLevel([]string{"ObserverBridge"}))
}

func (s *ModuleLevelTestSuite) TestInvalidLevelFallsBack() {
	s.testEnv["LOG_LEVEL__CALL_CTRL"] = "loud"
	s.testEnv["LOG_LEVEL"] = "warn"
	s.Equal(zapcore.WarnLevel, moduleLevel([]string{"CallCtrl"}))
}

func (s *ModuleLevelTestSuite) TestEmptyModuleNames() {
	s.Equal(zapcore.InfoLevel, moduleLevel(nil))
}
