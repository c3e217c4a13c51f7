package permission

import "context"

// Kind is a device capability the app may request.
type Kind string

const (
	KindCamera     Kind = "camera"
	KindMicrophone Kind = "microphone"
)

// Status is the platform's decision for one requested kind.
type Status string

const (
	StatusGranted    Status = "granted"
	StatusDenied     Status = "denied"
	StatusRestricted Status = "restricted"
)

// Querier is the platform permission layer. A single Request prompts for
// all kinds as one batch; the platform decides whether to re-prompt on
// repeated calls.
type Querier interface {
	Request(ctx context.Context, kinds ...Kind) (map[Kind]Status, error)
}

// StaticQuerier answers every request from a fixed table. Kinds absent
// from the table resolve to denied.
type StaticQuerier map[Kind]Status

func (q StaticQuerier) Request(_ context.Context, kinds ...Kind) (map[Kind]Status, error) {
	out := make(map[Kind]Status, len(kinds))
	for _, k := range kinds {
		st, ok := q[k]
		if !ok {
			st = StatusDenied
		}
		out[k] = st
	}
	return out, nil
}

// AllGranted is a Querier for platforms that settle permissions outside
// the app (e.g. desktop builds with OS-level prompts).
func AllGranted() StaticQuerier {
	return StaticQuerier{
		KindCamera:     StatusGranted,
		KindMicrophone: StatusGranted,
	}
}
