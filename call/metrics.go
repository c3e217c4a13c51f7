package call

import (
	"go.opentelemetry.io/otel/metric"

	intotel "github.com/chatlite/callkit/internal/otel"
)

var (
	callsStarted      metric.Int64Counter
	callsJoined       metric.Int64Counter
	callsEnded        metric.Int64Counter
	callsRejected     metric.Int64Counter
	callsFailed       metric.Int64Counter
	statusTransitions metric.Int64Counter

	trackToggles        metric.Int64Counter
	trackToggleFailures metric.Int64Counter

	observerDropped metric.Int64Counter
)

func init() {
	f := intotel.NewFactory("call.controller", intotel.PrefixCall)

	f.Int64Counter(&callsStarted, "sessions.started",
		metric.WithDescription("Call sessions that entered Creating"))

	f.Int64Counter(&callsJoined, "sessions.joined",
		metric.WithDescription("Call sessions that reached Joined"))

	f.Int64Counter(&callsEnded, "sessions.ended",
		metric.WithDescription("Call sessions that settled in Ended"))

	f.Int64Counter(&callsRejected, "sessions.rejected",
		metric.WithDescription("Call sessions that settled in Rejected"))

	f.Int64Counter(&callsFailed, "sessions.failed",
		metric.WithDescription("Call sessions that settled in Failed"))

	f.Int64Counter(&statusTransitions, "status.transitions",
		metric.WithDescription("Total call status transitions"))

	f.Int64Counter(&trackToggles, "track.toggles",
		metric.WithDescription("Local track toggle operations"))

	f.Int64Counter(&trackToggleFailures, "track.toggle.failures",
		metric.WithDescription("Local track toggle operations that failed and reverted"))

	f.Int64Counter(&observerDropped, "observer.dropped",
		metric.WithDescription("Events dropped for slow observers"))
}
