package permission

import (
	"context"

	"github.com/chatlite/callkit/internal/log"
)

// Gate reduces the platform's per-kind answers to a single authorization
// result for media calls. It never fails: platform errors reduce to false.
type Gate struct {
	querier Querier
	logger  *log.Logger
}

func NewGate(querier Querier, logger *log.Logger) *Gate {
	if logger == nil {
		panic("logger is required")
	}
	return &Gate{
		querier: querier,
		logger:  logger,
	}
}

// EnsureMediaPermissions requests camera and microphone as one batch and
// reports whether every one of them is granted.
func (g *Gate) EnsureMediaPermissions(ctx context.Context) bool {
	kinds := []Kind{KindCamera, KindMicrophone}

	results, err := g.querier.Request(ctx, kinds...)
	if err != nil {
		g.logger.Warn("permission request failed", log.Error(err))
		return false
	}

	for _, k := range kinds {
		if st := results[k]; st != StatusGranted {
			g.logger.Info("media permission not granted",
				log.String("kind", string(k)),
				log.String("status", string(st)),
			)
			return false
		}
	}
	return true
}
