package rtc

import "github.com/chatlite/callkit/internal/errors"

const (
	ErrRejected     errors.Code = "call rejected"
	ErrConnClosed   errors.Code = "connection closed"
	ErrNotConnected errors.Code = "not connected"
)
