package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/suite"
)

type ValidationTestSuite struct {
	suite.Suite
	validator *validator.Validate
}

func TestValidationTestSuite(t *testing.T) {
	suite.Run(t, new(ValidationTestSuite))
}

func (s *ValidationTestSuite) SetupTest() {
	s.validator = validator.New()
}

func (s *ValidationTestSuite) TestValidateCallID() {
	err := Register(s.validator, "callid", ValidateCallID)
	s.Require().NoError(err)

	tests := []struct {
		name    string
		callID  string
		wantErr bool
	}{
		{name: "valid alphanumeric", callID: "call123", wantErr: false},
		{name: "valid with hyphens", callID: "call-123", wantErr: false},
		{name: "valid with underscores", callID: "call_123", wantErr: false},
		{name: "too short", callID: "ab", wantErr: true},
		{name: "empty", callID: "", wantErr: true},
		{name: "invalid characters", callID: "call!123", wantErr: true},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			err := s.validator.Var(tt.callID, "callid")
			if tt.wantErr {
				s.Error(err)
			} else {
				s.NoError(err)
			}
		})
	}
}

func (s *ValidationTestSuite) TestStruct() {
	type cfg struct {
		CallID string `validate:"callid"`
		UserID string `validate:"userid"`
	}

	s.NoError(Struct(&cfg{CallID: "call-1x", UserID: "alice"}))
	s.Error(Struct(&cfg{CallID: "x", UserID: "alice"}))
	s.Error(Struct(&cfg{CallID: "call-1x", UserID: ""}))
}

func (s *ValidationTestSuite) TestFormatValidationError() {
	type cfg struct {
		UserID string `validate:"required"`
	}

	err := Struct(&cfg{})
	s.Require().Error(err)

	formatted := FormatValidationError(err)
	s.Require().Len(formatted, 1)
	s.Equal("UserID", formatted[0].Field)
}
