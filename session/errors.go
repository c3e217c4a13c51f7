package session

import "github.com/chatlite/callkit/internal/errors"

const (
	ErrAlreadyConnecting  errors.Code = "already connecting"
	ErrTransportFailure   errors.Code = "transport failure"
	ErrCredentialMismatch errors.Code = "credential mismatch"
)
