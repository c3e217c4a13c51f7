package otel

// Metric prefixes per package
const (
	PrefixCall    = "call"
	PrefixSession = "session"
	PrefixToken   = "token"
)
