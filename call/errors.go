package call

import "github.com/chatlite/callkit/internal/errors"

const (
	ErrNotReady         errors.Code = "connector not ready"
	ErrPermissionDenied errors.Code = "media permission denied"
	ErrInvalidState     errors.Code = "invalid call state"
	ErrTrack            errors.Code = "track operation failed"
	ErrBackend          errors.Code = "backend operation failed"
)
