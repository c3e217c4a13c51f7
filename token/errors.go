package token

import "github.com/chatlite/callkit/internal/errors"

const (
	ErrNetworkFailure  errors.Code = "network failure"
	ErrInvalidResponse errors.Code = "invalid response"
	ErrEmptyToken      errors.Code = "empty token"
	ErrInvalidRequest  errors.Code = "invalid request"
)
